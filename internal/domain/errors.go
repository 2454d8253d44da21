package domain

import "errors"

var (
	ErrNotFound     = errors.New("no encontrado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrConflict     = errors.New("versión desactualizada")
)

// ValidationError se devuelve al cliente tal cual con un 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
