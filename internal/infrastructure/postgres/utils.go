package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/cargotrack-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeLockNotAvailable     = "55P03"
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isLockFailure lock_timeout, deadlock o fallo de serialización.
func isLockFailure(err error) bool {
	switch pgCode(err) {
	case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure:
		return true
	}
	return false
}

// wrapErr traduce errores del driver a errores de dominio conservando el original.
func wrapErr(op string, err error) error {
	switch {
	case isLockFailure(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrLockUnavailable, err)
	case pgCode(err) == codeForeignKeyViolation:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrNotFound, err)
	case pgCode(err) == codeCheckViolation:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInvariantViolation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
