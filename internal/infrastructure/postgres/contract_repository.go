package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

var (
	_ repository.BlobRepository     = (*BlobRepo)(nil)
	_ repository.ContractRepository = (*ContractRepo)(nil)
)

// BlobRepo metadatos de archivos almacenados.
type BlobRepo struct {
	q Querier
}

// NewBlobRepository construye el adaptador de blobs.
func NewBlobRepository(q Querier) *BlobRepo {
	return &BlobRepo{q: q}
}

func (r *BlobRepo) Create(ctx context.Context, b *entity.Blob) error {
	query := `
		INSERT INTO blobs (id, disk, path, filename, mime, size, hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query, b.ID, b.Disk, b.Path, b.Filename, b.Mime, b.Size, b.Hash, b.CreatedAt); err != nil {
		return wrapErr("insert blob", err)
	}
	return nil
}

func (r *BlobRepo) GetByID(ctx context.Context, id string) (*entity.Blob, error) {
	var b entity.Blob
	err := r.q.QueryRow(ctx, `SELECT id, disk, path, filename, mime, size, hash, created_at FROM blobs WHERE id = $1`, id).Scan(
		&b.ID, &b.Disk, &b.Path, &b.Filename, &b.Mime, &b.Size, &b.Hash, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get blob", err)
	}
	return &b, nil
}

// Delete un blob todavía referenciado por un contrato devuelve domain.ErrConflict.
func (r *BlobRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM blobs WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return domain.ErrConflict
		}
		return wrapErr("delete blob", err)
	}
	return nil
}

// ContractRepo contratos; las lecturas traen el blob con JOIN.
type ContractRepo struct {
	q Querier
}

// NewContractRepository construye el adaptador de contratos.
func NewContractRepository(q Querier) *ContractRepo {
	return &ContractRepo{q: q}
}

const contractSelect = `
	SELECT c.id, c.transaction_id, c.blob_id, c.created_at,
	       b.id, b.disk, b.path, b.filename, b.mime, b.size, b.hash, b.created_at
	FROM contracts c
	JOIN blobs b ON b.id = c.blob_id`

func scanContract(row pgx.Row) (*entity.Contract, error) {
	var c entity.Contract
	var b entity.Blob
	err := row.Scan(
		&c.ID, &c.TransactionID, &c.BlobID, &c.CreatedAt,
		&b.ID, &b.Disk, &b.Path, &b.Filename, &b.Mime, &b.Size, &b.Hash, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Blob = &b
	return &c, nil
}

func (r *ContractRepo) Create(ctx context.Context, c *entity.Contract) error {
	query := `INSERT INTO contracts (id, transaction_id, blob_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.q.Exec(ctx, query, c.ID, c.TransactionID, c.BlobID, c.CreatedAt); err != nil {
		return wrapErr("insert contract", err)
	}
	return nil
}

func (r *ContractRepo) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	c, err := scanContract(r.q.QueryRow(ctx, contractSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get contract", err)
	}
	return c, nil
}

func (r *ContractRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete contract", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContractRepo) List(ctx context.Context, limit, offset int) ([]*entity.Contract, error) {
	return r.list(ctx, contractSelect+` ORDER BY c.created_at DESC, c.id DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *ContractRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Contract, error) {
	return r.list(ctx, contractSelect+` WHERE c.transaction_id = $1 ORDER BY c.created_at DESC, c.id DESC`, transactionID)
}

func (r *ContractRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.Contract, error) {
	query := contractSelect + `
	JOIN transactions t ON t.id = c.transaction_id
	WHERE t.shipment_id = $1
	ORDER BY c.created_at DESC, c.id DESC`
	return r.list(ctx, query, shipmentID)
}

func (r *ContractRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Contract, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list contracts", err)
	}
	defer rows.Close()
	var list []*entity.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
