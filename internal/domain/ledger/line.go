// Package ledger aritmética de líneas de transacción.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// LineValue round(quantity * unitPrice, 2).
func LineValue(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// CheckLine quantity > 0 y unitPrice >= 0.
func CheckLine(quantity, unitPrice decimal.Decimal) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvariantViolation
	}
	if unitPrice.LessThan(decimal.Zero) {
		return domain.ErrInvariantViolation
	}
	return nil
}

// Recompute fija LineValue a partir de cantidad y precio.
func Recompute(line *entity.TransactionLine) error {
	if err := CheckLine(line.Quantity, line.UnitPrice); err != nil {
		return err
	}
	line.LineValue = LineValue(line.Quantity, line.UnitPrice)
	return nil
}

// Total suma de LineValue.
func Total(lines []*entity.TransactionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineValue)
	}
	return total
}

// NextLineNumber siguiente ordinal dado el máximo actual (0 si no hay líneas).
func NextLineNumber(current int) int {
	return current + 1
}
