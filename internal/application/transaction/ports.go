package transaction

import (
	"context"

	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

// LedgerTxRunner ejecuta fn en una transacción de BD con los repositorios de transacciones,
// líneas e ítems espejo atados a ella.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		txs repository.TransactionRepository,
		lines repository.TransactionLineRepository,
		items repository.ShipmentItemRepository,
	) error) error
}
