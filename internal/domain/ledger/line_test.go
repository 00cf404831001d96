package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineValue(t *testing.T) {
	assert.Equal(t, "7.50", ledger.LineValue(dec("3"), dec("2.50")).StringFixed(2))
	assert.Equal(t, "10.00", ledger.LineValue(dec("4"), dec("2.50")).StringFixed(2))
	assert.Equal(t, "200.00", ledger.LineValue(dec("2"), dec("100.00")).StringFixed(2))
	// redondeo a 2 decimales
	assert.True(t, dec("0.34").Equal(ledger.LineValue(dec("0.333"), dec("1.01"))))
}

func TestCheckLine(t *testing.T) {
	assert.NoError(t, ledger.CheckLine(dec("1"), dec("0")))
	assert.ErrorIs(t, ledger.CheckLine(dec("0"), dec("1")), domain.ErrInvariantViolation)
	assert.ErrorIs(t, ledger.CheckLine(dec("-1"), dec("1")), domain.ErrInvariantViolation)
	assert.ErrorIs(t, ledger.CheckLine(dec("1"), dec("-0.01")), domain.ErrInvariantViolation)
}

func TestRecomputeYTotal(t *testing.T) {
	l1 := &entity.TransactionLine{Quantity: dec("3"), UnitPrice: dec("2.50")}
	l2 := &entity.TransactionLine{Quantity: dec("2"), UnitPrice: dec("100")}
	require.NoError(t, ledger.Recompute(l1))
	require.NoError(t, ledger.Recompute(l2))

	assert.Equal(t, "207.50", ledger.Total([]*entity.TransactionLine{l1, l2}).StringFixed(2))
	assert.True(t, ledger.Total(nil).IsZero())

	bad := &entity.TransactionLine{Quantity: dec("0"), UnitPrice: dec("1")}
	assert.ErrorIs(t, ledger.Recompute(bad), domain.ErrInvariantViolation)
}

func TestNextLineNumber(t *testing.T) {
	assert.Equal(t, 1, ledger.NextLineNumber(0))
	assert.Equal(t, 2, ledger.NextLineNumber(1))
}
