// Package validation checks request inputs against declarative rules and
// reports violations per field.
//
// Inputs carry `validate` struct tags. Field keys in reports are the json
// tag names, so a client can map each error back to the field it submitted.
// Validation either passes or yields the complete list of violations;
// normalization of the input happens only after a pass.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

var (
	cnpjPattern  = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	guardPattern = regexp.MustCompile(`^[a-z0-9_-]{1,50}$`)
)

// FieldError is one violated rule of one field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// FieldErrors is the full set of violations of an input.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, " ")
}

// Err returns nil when there are no violations, otherwise a VALIDATION_ERROR
// carrying the field errors as details.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return shared.ErrValidation.WithDetails(fe)
}

// Validator runs tag-based rules plus the custom ones of this service.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with json field names and the custom rules
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v)
	return &Validator{v: v}
}

// Register installs the json tag name function and the custom rules on an
// existing engine, such as gin's binding validator.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return cnpjPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		return len(shared.DigitsOnly(fl.Field().String())) == 8
	})
	// bcrypt only reads the first 72 bytes of a password
	_ = v.RegisterValidation("bcrypt", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= identity.MaxPasswordBytes
	})
	_ = v.RegisterValidation("guard", func(fl validator.FieldLevel) bool {
		return guardPattern.MatchString(fl.Field().String())
	})
}

// Struct validates input and returns every violation, or nil.
func (val *Validator) Struct(input any) FieldErrors {
	return Translate(val.v.Struct(input))
}

// Translate converts an error of a validator engine configured by Register
// into field errors. Any other non-nil error becomes a single "invalid" entry.
func Translate(err error) FieldErrors {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{{Field: "", Rule: "invalid", Message: "Dados inválidos."}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(e),
			Rule:    e.Tag(),
			Message: message(e),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "lojas[0]" rather than "CreateUserInput.lojas[0]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// ValidateDateRange fails only when both dates are present and end is not
// strictly after start.
func ValidateDateRange(start, end *time.Time, field, after string) *FieldError {
	if start == nil || end == nil || end.After(*start) {
		return nil
	}
	return &FieldError{
		Field:   field,
		Rule:    "after",
		Message: "O campo " + humanize(field) + " deve ser uma data posterior a " + humanize(after) + ".",
	}
}

// Append adds a field error when non-nil
func (fe FieldErrors) Append(e *FieldError) FieldErrors {
	if e == nil {
		return fe
	}
	return append(fe, *e)
}
