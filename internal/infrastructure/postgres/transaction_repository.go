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
	_ repository.TransactionRepository     = (*TransactionRepo)(nil)
	_ repository.TransactionLineRepository = (*TransactionLineRepo)(nil)
	_ repository.PartyRepository           = (*PartyRepo)(nil)
)

// TransactionRepo implementación de TransactionRepository sobre PostgreSQL.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de transacciones.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const txSelect = `
	SELECT t.id, t.shipment_id, t.type, t.tx_date, t.reference, t.total_value, t.created_at, t.updated_at
	FROM transactions t`

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	if err := row.Scan(&t.ID, &t.ShipmentID, &t.Type, &t.TxDate, &t.Reference, &t.TotalValue, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, shipment_id, type, tx_date, reference, total_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, t.ID, t.ShipmentID, t.Type, t.TxDate, t.Reference, t.TotalValue, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return wrapErr("insert transaction", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.one(ctx, txSelect+` WHERE t.id = $1`, id, "get transaction")
}

func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.one(ctx, txSelect+` WHERE t.id = $1 FOR UPDATE`, id, "get transaction for update")
}

func (r *TransactionRepo) one(ctx context.Context, query, id, op string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return t, nil
}

func (r *TransactionRepo) Update(ctx context.Context, t *entity.Transaction) error {
	query := `
		UPDATE transactions SET shipment_id = $2, type = $3, tx_date = $4, reference = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, t.ID, t.ShipmentID, t.Type, t.TxDate, t.Reference, t.UpdatedAt)
	if err != nil {
		return wrapErr("update transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) SetTotal(ctx context.Context, t *entity.Transaction) error {
	tag, err := r.q.Exec(ctx, `UPDATE transactions SET total_value = $2, updated_at = $3 WHERE id = $1`, t.ID, t.TotalValue, t.UpdatedAt)
	if err != nil {
		return wrapErr("set transaction total", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete líneas, ítems espejo, partes y contratos caen en cascada.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.Transaction, error) {
	return r.list(ctx, txSelect+` WHERE t.shipment_id = $1 ORDER BY t.tx_date DESC, t.id DESC`, shipmentID)
}

func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error) {
	return r.list(ctx, txSelect+` ORDER BY t.tx_date DESC, t.id DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *TransactionRepo) ListWithoutContracts(ctx context.Context, limit, offset int) ([]*entity.Transaction, error) {
	query := txSelect + `
	WHERE NOT EXISTS (SELECT 1 FROM contracts c WHERE c.transaction_id = t.id)
	ORDER BY t.tx_date DESC, t.id DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list transactions", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// TransactionLineRepo líneas de transacción.
type TransactionLineRepo struct {
	q Querier
}

// NewTransactionLineRepository construye el adaptador de líneas.
func NewTransactionLineRepository(q Querier) *TransactionLineRepo {
	return &TransactionLineRepo{q: q}
}

const lineSelect = `
	SELECT l.id, l.transaction_id, l.product_id, l.description, l.quantity, l.unit_price, l.line_value, l.line_number, l.created_at, l.updated_at
	FROM transaction_lines l`

func (r *TransactionLineRepo) Create(ctx context.Context, l *entity.TransactionLine) error {
	query := `
		INSERT INTO transaction_lines (id, transaction_id, product_id, description, quantity, unit_price, line_value, line_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.TransactionID, l.ProductID, l.Description, l.Quantity, l.UnitPrice, l.LineValue, l.LineNumber, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert transaction line", err)
	}
	return nil
}

func (r *TransactionLineRepo) GetByID(ctx context.Context, id string) (*entity.TransactionLine, error) {
	var l entity.TransactionLine
	err := r.q.QueryRow(ctx, lineSelect+` WHERE l.id = $1`, id).Scan(
		&l.ID, &l.TransactionID, &l.ProductID, &l.Description, &l.Quantity, &l.UnitPrice, &l.LineValue, &l.LineNumber, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get transaction line", err)
	}
	return &l, nil
}

func (r *TransactionLineRepo) Update(ctx context.Context, l *entity.TransactionLine) error {
	query := `
		UPDATE transaction_lines
		SET product_id = $2, description = $3, quantity = $4, unit_price = $5, line_value = $6, line_number = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, l.ID, l.ProductID, l.Description, l.Quantity, l.UnitPrice, l.LineValue, l.LineNumber, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("update transaction line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionLineRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM transaction_lines WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete transaction line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaxLineNumber el llamador debe tener bloqueada la transacción padre.
func (r *TransactionLineRepo) MaxLineNumber(ctx context.Context, transactionID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(line_number), 0) FROM transaction_lines WHERE transaction_id = $1`, transactionID).Scan(&n)
	if err != nil {
		return 0, wrapErr("max line number", err)
	}
	return n, nil
}

func (r *TransactionLineRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.TransactionLine, error) {
	return r.list(ctx, lineSelect+` WHERE l.transaction_id = $1 ORDER BY l.line_number`, transactionID)
}

func (r *TransactionLineRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.TransactionLine, error) {
	query := lineSelect + `
	JOIN transactions t ON t.id = l.transaction_id
	WHERE t.shipment_id = $1
	ORDER BY l.transaction_id, l.line_number`
	return r.list(ctx, query, shipmentID)
}

func (r *TransactionLineRepo) list(ctx context.Context, query string, args ...any) ([]*entity.TransactionLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list transaction lines", err)
	}
	defer rows.Close()
	var list []*entity.TransactionLine
	for rows.Next() {
		var l entity.TransactionLine
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ProductID, &l.Description, &l.Quantity, &l.UnitPrice,
			&l.LineValue, &l.LineNumber, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// PartyRepo partes y vínculos transacción-parte.
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador de partes.
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	query := `INSERT INTO parties (id, name, type, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Type, p.CreatedAt, p.UpdatedAt); err != nil {
		return wrapErr("insert party", err)
	}
	return nil
}

func (r *PartyRepo) GetByID(ctx context.Context, id string) (*entity.Party, error) {
	var p entity.Party
	err := r.q.QueryRow(ctx, `SELECT id, name, type, created_at, updated_at FROM parties WHERE id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Type, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get party", err)
	}
	return &p, nil
}

func (r *PartyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Party, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, type, created_at, updated_at FROM parties ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list parties", err)
	}
	defer rows.Close()
	var list []*entity.Party
	for rows.Next() {
		var p entity.Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *PartyRepo) Attach(ctx context.Context, tp *entity.TransactionParty) error {
	query := `
		INSERT INTO transaction_parties (id, transaction_id, party_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, tp.ID, tp.TransactionID, tp.PartyID, tp.Role, tp.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("attach party", err)
	}
	return nil
}

func (r *PartyRepo) Detach(ctx context.Context, transactionID, partyID, role string) error {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM transaction_parties WHERE transaction_id = $1 AND party_id = $2 AND role = $3`,
		transactionID, partyID, role)
	if err != nil {
		return wrapErr("detach party", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PartyRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.TransactionParty, error) {
	query := `
		SELECT tp.id, tp.transaction_id, tp.party_id, p.name, tp.role, tp.created_at
		FROM transaction_parties tp
		JOIN parties p ON p.id = tp.party_id
		WHERE tp.transaction_id = $1
		ORDER BY tp.role, p.name`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, wrapErr("list transaction parties", err)
	}
	defer rows.Close()
	var list []*entity.TransactionParty
	for rows.Next() {
		var tp entity.TransactionParty
		if err := rows.Scan(&tp.ID, &tp.TransactionID, &tp.PartyID, &tp.PartyName, &tp.Role, &tp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction party: %w", err)
		}
		list = append(list, &tp)
	}
	return list, rows.Err()
}
