package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrConstraintViolation (shipment_id, version) duplicado: dos escritores calcularon el mismo número.
	ErrConstraintViolation = errors.New("violación de unicidad en la versión del embarque")
	// ErrInvariantViolation cantidad <= 0 o precio negativo en líneas e ítems. No se reintenta.
	ErrInvariantViolation = errors.New("invariante de dominio violada")
	// ErrLockUnavailable timeout de lock, deadlock o fallo de serialización (reintentable).
	ErrLockUnavailable = errors.New("no se pudo adquirir el bloqueo")
)

// ValidationError error de validación asociado a un campo. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
