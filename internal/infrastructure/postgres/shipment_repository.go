package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
)

var (
	_ repository.ShipmentRepository        = (*ShipmentRepo)(nil)
	_ repository.ShipmentVersionRepository = (*ShipmentVersionRepo)(nil)
	_ repository.ShipmentItemRepository    = (*ShipmentItemRepo)(nil)
)

// ShipmentRepo implementación de ShipmentRepository sobre PostgreSQL (usable con pool o tx).
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador de embarques. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	query := `
		INSERT INTO shipments (id, latest_version_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, s.ID, s.LatestVersionID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert shipment", err)
	}
	return nil
}

func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.get(ctx, `SELECT id, latest_version_id, created_at, updated_at FROM shipments WHERE id = $1`, id, "get shipment")
}

// GetForUpdate bloquea la fila; con lock_timeout vencido devuelve domain.ErrLockUnavailable.
func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.get(ctx, `SELECT id, latest_version_id, created_at, updated_at FROM shipments WHERE id = $1 FOR UPDATE`, id, "get shipment for update")
}

func (r *ShipmentRepo) get(ctx context.Context, query, id, op string) (*entity.Shipment, error) {
	var s entity.Shipment
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.LatestVersionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return &s, nil
}

// SetLatestVersion la versión debe pertenecer al embarque.
func (r *ShipmentRepo) SetLatestVersion(ctx context.Context, shipmentID string, versionID *string) error {
	query := `
		UPDATE shipments s SET latest_version_id = $2, updated_at = now()
		WHERE s.id = $1
		  AND ($2::text IS NULL OR EXISTS (
		      SELECT 1 FROM shipment_versions v WHERE v.id = $2 AND v.shipment_id = s.id))`
	tag, err := r.q.Exec(ctx, query, shipmentID, versionID)
	if err != nil {
		return wrapErr("set latest version", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete las versiones e ítems caen en cascada; las transacciones quedan con shipment_id NULL.
func (r *ShipmentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete shipment", err)
	}
	return nil
}

const viewSelect = `
	SELECT s.id, s.latest_version_id, COALESCE(v.version, 0), COALESCE(v.status, ''),
	       v.cargo_sailing_date, v.eta,
	       v.vessel_id, vs.name, v.origin_id, o.name, v.destination_id, d.name,
	       s.created_at, s.updated_at
	FROM shipments s
	LEFT JOIN shipment_versions v ON v.id = s.latest_version_id
	LEFT JOIN vessels vs ON vs.id = v.vessel_id
	LEFT JOIN locations o ON o.id = v.origin_id
	LEFT JOIN locations d ON d.id = v.destination_id`

func scanView(row pgx.Row) (*shipment.View, error) {
	var v shipment.View
	err := row.Scan(
		&v.ShipmentID, &v.LatestVersionID, &v.Version, &v.Status,
		&v.CargoSailingDate, &v.ETA,
		&v.VesselID, &v.VesselName, &v.OriginID, &v.OriginName, &v.DestinationID, &v.DestinationName,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetView vista actual calculada con JOIN sobre la versión apuntada.
func (r *ShipmentRepo) GetView(ctx context.Context, id string) (*shipment.View, error) {
	v, err := scanView(r.q.QueryRow(ctx, viewSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get shipment view", err)
	}
	return v, nil
}

func (r *ShipmentRepo) ListViews(ctx context.Context, limit, offset int) ([]*shipment.View, error) {
	rows, err := r.q.Query(ctx, viewSelect+` ORDER BY s.created_at DESC, s.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list shipment views", err)
	}
	defer rows.Close()
	var list []*shipment.View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment view: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *ShipmentRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM shipments`).Scan(&n); err != nil {
		return 0, wrapErr("count shipments", err)
	}
	return n, nil
}

// ShipmentVersionRepo almacén append-only de versiones.
type ShipmentVersionRepo struct {
	q Querier
}

// NewShipmentVersionRepository construye el adaptador de versiones.
func NewShipmentVersionRepository(q Querier) *ShipmentVersionRepo {
	return &ShipmentVersionRepo{q: q}
}

var versionColumns = []string{
	"id", "shipment_id", "version", "status", "cargo_sailing_date", "eta",
	"vessel_id", "origin_id", "destination_id", "actor_id", "reason", "created_at",
}

const versionSelect = `
	SELECT id, shipment_id, version, status, cargo_sailing_date, eta,
	       vessel_id, origin_id, destination_id, actor_id, reason, created_at
	FROM shipment_versions`

func versionValues(v *entity.ShipmentVersion) []any {
	return []any{
		v.ID, v.ShipmentID, v.Version, v.Status, v.CargoSailingDate, v.ETA,
		v.VesselID, v.OriginID, v.DestinationID, v.ActorID, v.Reason, v.CreatedAt,
	}
}

func scanVersion(row pgx.Row) (*entity.ShipmentVersion, error) {
	var v entity.ShipmentVersion
	err := row.Scan(
		&v.ID, &v.ShipmentID, &v.Version, &v.Status, &v.CargoSailingDate, &v.ETA,
		&v.VesselID, &v.OriginID, &v.DestinationID, &v.ActorID, &v.Reason, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ShipmentVersionRepo) MaxVersion(ctx context.Context, shipmentID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM shipment_versions WHERE shipment_id = $1`, shipmentID).Scan(&n)
	if err != nil {
		return 0, wrapErr("max version", err)
	}
	return n, nil
}

// Append domain.ErrConstraintViolation si (shipment_id, version) ya existe.
func (r *ShipmentVersionRepo) Append(ctx context.Context, v *entity.ShipmentVersion) error {
	query := `
		INSERT INTO shipment_versions (id, shipment_id, version, status, cargo_sailing_date, eta,
		                               vessel_id, origin_id, destination_id, actor_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.q.Exec(ctx, query, versionValues(v)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("append version %d: %w", v.Version, domain.ErrConstraintViolation)
		}
		return wrapErr("append version", err)
	}
	return nil
}

// BulkAppend COPY de todas las versiones en una sola operación.
func (r *ShipmentVersionRepo) BulkAppend(ctx context.Context, versions []*entity.ShipmentVersion) (int64, error) {
	n, err := r.q.CopyFrom(ctx, pgx.Identifier{"shipment_versions"}, versionColumns,
		pgx.CopyFromSlice(len(versions), func(i int) ([]any, error) {
			return versionValues(versions[i]), nil
		}))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("copy versions: %w", domain.ErrConstraintViolation)
		}
		return 0, wrapErr("copy versions", err)
	}
	return n, nil
}

func (r *ShipmentVersionRepo) History(ctx context.Context, shipmentID string) ([]*entity.ShipmentVersion, error) {
	rows, err := r.q.Query(ctx, versionSelect+` WHERE shipment_id = $1 ORDER BY version DESC`, shipmentID)
	if err != nil {
		return nil, wrapErr("version history", err)
	}
	defer rows.Close()
	var list []*entity.ShipmentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *ShipmentVersionRepo) Latest(ctx context.Context, shipmentID string) (*entity.ShipmentVersion, error) {
	return r.one(ctx, versionSelect+` WHERE shipment_id = $1 ORDER BY version DESC LIMIT 1`, shipmentID, "latest version")
}

func (r *ShipmentVersionRepo) GetByID(ctx context.Context, id string) (*entity.ShipmentVersion, error) {
	return r.one(ctx, versionSelect+` WHERE id = $1`, id, "get version")
}

func (r *ShipmentVersionRepo) one(ctx context.Context, query, arg, op string) (*entity.ShipmentVersion, error) {
	v, err := scanVersion(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return v, nil
}

// Delete la FK diferida de latest_version_id permite reparar el puntero antes del commit.
func (r *ShipmentVersionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM shipment_versions WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete version", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ShipmentItemRepo ítems espejo.
type ShipmentItemRepo struct {
	q Querier
}

// NewShipmentItemRepository construye el adaptador de ítems.
func NewShipmentItemRepository(q Querier) *ShipmentItemRepo {
	return &ShipmentItemRepo{q: q}
}

func (r *ShipmentItemRepo) Upsert(ctx context.Context, item *entity.ShipmentItem) error {
	query := `
		INSERT INTO shipment_items (id, shipment_id, transaction_line_id, description, quantity, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (shipment_id, transaction_line_id)
		DO UPDATE SET description = EXCLUDED.description, quantity = EXCLUDED.quantity,
		              unit_price = EXCLUDED.unit_price, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.ShipmentID, item.TransactionLineID, item.Description,
		item.Quantity, item.UnitPrice, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return wrapErr("upsert shipment item", err)
	}
	return nil
}

func (r *ShipmentItemRepo) DeleteByLine(ctx context.Context, shipmentID, lineID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM shipment_items WHERE shipment_id = $1 AND transaction_line_id = $2`, shipmentID, lineID)
	if err != nil {
		return wrapErr("delete shipment item", err)
	}
	return nil
}

func (r *ShipmentItemRepo) DeleteByShipment(ctx context.Context, shipmentID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM shipment_items WHERE shipment_id = $1`, shipmentID)
	if err != nil {
		return wrapErr("delete shipment items", err)
	}
	return nil
}

func (r *ShipmentItemRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.ShipmentItem, error) {
	query := `
		SELECT id, shipment_id, transaction_line_id, description, quantity, unit_price, created_at, updated_at
		FROM shipment_items WHERE shipment_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, wrapErr("list shipment items", err)
	}
	defer rows.Close()
	var list []*entity.ShipmentItem
	for rows.Next() {
		var it entity.ShipmentItem
		if err := rows.Scan(&it.ID, &it.ShipmentID, &it.TransactionLineID, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shipment item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// InSavepoint SAVEPOINT / ROLLBACK TO SAVEPOINT alrededor de fn.
func (r *ShipmentItemRepo) InSavepoint(ctx context.Context, fn func(items repository.ShipmentItemRepository) error) error {
	return savepoint(ctx, r.q, func(tx pgx.Tx) error {
		return fn(NewShipmentItemRepository(tx))
	})
}
