package shipment

import (
	"context"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
)

// TxRunner ejecuta fn dentro de una transacción de BD con los repositorios de embarque atados a ella.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	RunShipment(ctx context.Context, fn func(
		shipments repository.ShipmentRepository,
		versions repository.ShipmentVersionRepository,
	) error) error
}

// EventPublisher publica eventos de versión después del commit.
type EventPublisher interface {
	PublishVersionCreated(ctx context.Context, evt VersionCreatedEvent) error
}

// VersionCreatedEvent evento emitido por cada versión escrita.
type VersionCreatedEvent struct {
	Type       string    `json:"type"`
	ShipmentID string    `json:"shipment_id"`
	VersionID  string    `json:"version_id"`
	Version    int       `json:"version"`
	Status     string    `json:"status"`
	ActorID    *string   `json:"actor_id,omitempty"`
	Reason     *string   `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventTypeVersionCreated tipo del evento.
const EventTypeVersionCreated = "shipment.version_created"

// ReportData datos del reporte PDF de un embarque.
type ReportData struct {
	View         *shipment.View
	History      []*entity.ShipmentVersion
	Items        []*entity.ShipmentItem
	Transactions []*entity.Transaction
	GeneratedAt  time.Time
}

// ReportGenerator genera el PDF del reporte de embarque.
type ReportGenerator interface {
	ShipmentReport(data *ReportData) ([]byte, error)
}
