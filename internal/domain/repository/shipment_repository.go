package repository

import (
	"context"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
)

// ShipmentRepository puerto de persistencia para la identidad del embarque y su puntero.
// GetByID y GetView devuelven (nil, nil) si no existe.
type ShipmentRepository interface {
	Create(ctx context.Context, s *entity.Shipment) error
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	// GetForUpdate bloquea la fila del embarque (SELECT ... FOR UPDATE) hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error)
	// SetLatestVersion mueve el puntero; versionID nil lo deja en NULL.
	SetLatestVersion(ctx context.Context, shipmentID string, versionID *string) error
	Delete(ctx context.Context, id string) error
	GetView(ctx context.Context, id string) (*shipment.View, error)
	ListViews(ctx context.Context, limit, offset int) ([]*shipment.View, error)
	Count(ctx context.Context) (int, error)
}

// ShipmentVersionRepository almacén append-only de versiones por embarque.
// Nunca toca el puntero del embarque.
type ShipmentVersionRepository interface {
	// MaxVersion 0 si no hay versiones. Debe llamarse en la misma tx que el Append siguiente.
	MaxVersion(ctx context.Context, shipmentID string) (int, error)
	// Append inserta la versión; domain.ErrConstraintViolation si (shipment_id, version) ya existe.
	Append(ctx context.Context, v *entity.ShipmentVersion) error
	// BulkAppend inserción masiva fuera del flujo normal (seed). Devuelve filas insertadas.
	BulkAppend(ctx context.Context, versions []*entity.ShipmentVersion) (int64, error)
	// History versiones en orden descendente por número.
	History(ctx context.Context, shipmentID string) ([]*entity.ShipmentVersion, error)
	Latest(ctx context.Context, shipmentID string) (*entity.ShipmentVersion, error)
	GetByID(ctx context.Context, id string) (*entity.ShipmentVersion, error)
	// Delete borrado correctivo; el llamador debe reparar el puntero.
	Delete(ctx context.Context, id string) error
}

// ShipmentItemRepository ítems espejo de líneas de transacción.
type ShipmentItemRepository interface {
	// Upsert por (shipment_id, transaction_line_id).
	Upsert(ctx context.Context, item *entity.ShipmentItem) error
	DeleteByLine(ctx context.Context, shipmentID, lineID string) error
	DeleteByShipment(ctx context.Context, shipmentID string) error
	ListByShipment(ctx context.Context, shipmentID string) ([]*entity.ShipmentItem, error)
	// InSavepoint ejecuta fn en un savepoint: si fn falla solo se revierte lo hecho dentro.
	InSavepoint(ctx context.Context, fn func(items ShipmentItemRepository) error) error
}
