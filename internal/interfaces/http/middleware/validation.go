package middleware

import (
	"errors"

	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ErrMalformedBody is returned when a request body or query cannot be decoded
var ErrMalformedBody = shared.NewDomainError(shared.CodeInvalidInput, "Requisição inválida.")

// SetupValidator installs json field names and the custom rules (cnpj, cep,
// guard) on gin's binding validator, so `binding` tags report the same field
// keys and messages as the service layer.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Register(v)
	}
}

// BindError converts a gin binding error into a domain error: rule
// violations become VALIDATION_ERROR with field details, decoding failures
// become INVALID_INPUT.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return validation.Translate(verrs).Err()
	}
	return ErrMalformedBody.WithCause(err)
}
