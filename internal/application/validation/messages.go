package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// message renders a pt-BR message for a failed rule
func message(e validator.FieldError) string {
	f := "O campo " + humanize(e.Field())
	switch e.Tag() {
	case "required", "required_without":
		return f + " é obrigatório."
	case "email":
		return f + " deve ser um endereço de e-mail válido."
	case "max":
		if isString(e) {
			return f + " não pode ser superior a " + e.Param() + " caracteres."
		}
		return f + " não pode ser superior a " + e.Param() + "."
	case "min":
		if isString(e) {
			return f + " deve ter pelo menos " + e.Param() + " caracteres."
		}
		return f + " deve ser pelo menos " + e.Param() + "."
	case "len":
		return f + " deve ter " + e.Param() + " caracteres."
	case "uuid", "uuid4":
		return f + " deve ser um identificador válido."
	case "oneof":
		return f + " deve ser um dos valores: " + strings.ReplaceAll(e.Param(), " ", ", ") + "."
	case "cnpj":
		return f + " deve estar no formato 00.000.000/0000-00."
	case "cep":
		return f + " deve conter 8 dígitos."
	case "bcrypt":
		return f + " não pode ser superior a 72 bytes."
	case "guard":
		return f + " contém caracteres inválidos."
	case "eqfield":
		return "A confirmação de " + humanize(e.Field()) + " não confere."
	case "datetime":
		return f + " não é uma data válida."
	case "dive":
		return f + " contém itens inválidos."
	default:
		return f + " é inválido."
	}
}

func isString(e validator.FieldError) bool {
	k := e.Kind()
	if k == reflect.Ptr {
		k = e.Type().Elem().Kind()
	}
	return k == reflect.String
}
