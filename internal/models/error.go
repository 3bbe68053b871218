package models

import "errors"

// ErrCustomerNotFound indica que el cliente referenciado no existe
var ErrCustomerNotFound = errors.New("customer not found")

// RuleError representa una violación de regla de negocio sobre una lectura
type RuleError struct {
	Message string
}

// Error implementa la interfaz error
func (e *RuleError) Error() string {
	return e.Message
}

// NewRuleError crea un error de regla de negocio
func NewRuleError(message string) *RuleError {
	return &RuleError{Message: message}
}

// ErrorCode representa el código de error
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidRule    ErrorCode = "INVALID_RULE"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// FieldErrors agrupa todos los errores de validación de un request
type FieldErrors []ErrorDetail

// Error implementa la interfaz error
func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msg := "validation failed:"
	for _, d := range e {
		msg += " " + d.Field + " " + d.Issue + ";"
	}
	return msg
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles por campo
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewInvalidRuleError crea un error de regla de negocio
func NewInvalidRuleError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRule),
			Message: message,
		},
	}
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeNotFound),
			Message: message,
		},
	}
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInternal),
			Message: message,
		},
	}
}
