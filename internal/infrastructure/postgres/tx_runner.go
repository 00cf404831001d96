package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

var (
	_ shipment.TxRunner          = (*TxRunner)(nil)
	_ transaction.LedgerTxRunner = (*TxRunner)(nil)
	_ contract.ContractTxRunner  = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn y hace Commit o Rollback.
// Si ctx se cancela antes del commit, pgx revierte la transacción.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// RunShipment transacción con embarques y versiones (escritura de versión y reparación del puntero).
func (r *TxRunner) RunShipment(ctx context.Context, fn func(
	shipments repository.ShipmentRepository,
	versions repository.ShipmentVersionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewShipmentRepository(tx), NewShipmentVersionRepository(tx))
	})
}

// RunLedger transacción con transacciones, líneas e ítems espejo.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	txs repository.TransactionRepository,
	lines repository.TransactionLineRepository,
	items repository.ShipmentItemRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewTransactionRepository(tx), NewTransactionLineRepository(tx), NewShipmentItemRepository(tx))
	})
}

// RunContract transacción con blobs y contratos.
func (r *TxRunner) RunContract(ctx context.Context, fn func(
	blobs repository.BlobRepository,
	contracts repository.ContractRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewBlobRepository(tx), NewContractRepository(tx))
	})
}

// savepoint ejecuta fn en una subtransacción de q (savepoint si q ya es una tx).
func savepoint(ctx context.Context, q Querier, fn func(tx pgx.Tx) error) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("release savepoint", err)
	}
	return nil
}
