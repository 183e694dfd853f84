package shared

import "errors"

// Error codes shared by every bounded context.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeConflict            = "CONFLICT"
	CodeUpstream            = "UPSTREAM_ERROR"
	CodeTransactionFailed   = "TRANSACTION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeForbiddenSelfDelete = "FORBIDDEN_SELF_DELETE"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details carries structured context for the caller (field errors, the
	// offending identifier, ...). It is rendered as-is in API responses.
	Details any `json:"details,omitempty"`
	// Cause is the underlying error. It is logged server-side and never rendered.
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of the error carrying details
func (e *DomainError) WithDetails(details any) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy of the error wrapping cause
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError extracts a DomainError from err's chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Registro não encontrado")
	ErrAlreadyExists     = NewDomainError(CodeAlreadyExists, "Registro já existe")
	ErrConflict          = NewDomainError(CodeConflict, "Conflito com o estado atual do registro")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Dados inválidos")
	ErrValidation        = NewDomainError(CodeValidation, "Os dados informados são inválidos")
	ErrUpstream          = NewDomainError(CodeUpstream, "Erro ao consultar serviço externo")
	ErrTransactionFailed = NewDomainError(CodeTransactionFailed, "Não foi possível concluir a operação. Tente novamente.")
	ErrUnauthorized      = NewDomainError(CodeUnauthorized, "Não autenticado")
	ErrForbidden         = NewDomainError(CodeForbidden, "Acesso negado")
	ErrInternal          = NewDomainError(CodeInternal, "Erro interno")
)
