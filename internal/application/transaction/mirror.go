package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

// ShipmentItemMirror proyecta los cambios de líneas de transacción en ítems del embarque.
// Corre dentro de la transacción de la línea pero en un savepoint: si falla, solo se revierte
// el espejo, se registra el error y la línea sigue adelante.
type ShipmentItemMirror struct {
	log *logger.Logger
	now func() time.Time
}

// NewShipmentItemMirror construye el espejo.
func NewShipmentItemMirror(log *logger.Logger) *ShipmentItemMirror {
	return &ShipmentItemMirror{log: log.Component("shipment_item_mirror"), now: time.Now}
}

// LineCreated upsert del ítem si la transacción tiene embarque.
func (m *ShipmentItemMirror) LineCreated(ctx context.Context, items repository.ShipmentItemRepository, tx *entity.Transaction, line *entity.TransactionLine) {
	if tx.ShipmentID == nil {
		return
	}
	shipmentID := *tx.ShipmentID
	m.guard(ctx, items, "line_created", line.ID, func(items repository.ShipmentItemRepository) error {
		return m.upsert(ctx, items, shipmentID, line)
	})
}

// LineUpdated upsert del ítem si cambió descripción, cantidad o precio unitario.
func (m *ShipmentItemMirror) LineUpdated(ctx context.Context, items repository.ShipmentItemRepository, tx *entity.Transaction, before, after *entity.TransactionLine) {
	if tx.ShipmentID == nil || !mirroredFieldsChanged(before, after) {
		return
	}
	shipmentID := *tx.ShipmentID
	m.guard(ctx, items, "line_updated", after.ID, func(items repository.ShipmentItemRepository) error {
		return m.upsert(ctx, items, shipmentID, after)
	})
}

// LineDeleted borra el ítem si la transacción tiene embarque.
func (m *ShipmentItemMirror) LineDeleted(ctx context.Context, items repository.ShipmentItemRepository, tx *entity.Transaction, line *entity.TransactionLine) {
	if tx.ShipmentID == nil {
		return
	}
	shipmentID := *tx.ShipmentID
	m.guard(ctx, items, "line_deleted", line.ID, func(items repository.ShipmentItemRepository) error {
		return items.DeleteByLine(ctx, shipmentID, line.ID)
	})
}

// TransactionReassigned mueve los ítems de las líneas del embarque anterior al nuevo.
func (m *ShipmentItemMirror) TransactionReassigned(
	ctx context.Context,
	items repository.ShipmentItemRepository,
	from, to *string,
	lines []*entity.TransactionLine,
) {
	if sameShipment(from, to) {
		return
	}
	m.guard(ctx, items, "transaction_reassigned", "", func(items repository.ShipmentItemRepository) error {
		for _, l := range lines {
			if from != nil {
				if err := items.DeleteByLine(ctx, *from, l.ID); err != nil {
					return err
				}
			}
			if to != nil {
				if err := m.upsert(ctx, items, *to, l); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Rebuild reconstruye todos los ítems del embarque a partir de sus líneas.
// A diferencia de los hooks, el error se devuelve al llamador.
func (m *ShipmentItemMirror) Rebuild(ctx context.Context, items repository.ShipmentItemRepository, shipmentID string, lines []*entity.TransactionLine) (int, error) {
	if err := items.DeleteByShipment(ctx, shipmentID); err != nil {
		return 0, err
	}
	n := 0
	for _, l := range lines {
		if err := m.upsert(ctx, items, shipmentID, l); err != nil {
			return n, err
		}
		n++
	}
	m.log.Info().Str("shipment_id", shipmentID).Int("items", n).Msg("ítems reconstruidos")
	return n, nil
}

func (m *ShipmentItemMirror) upsert(ctx context.Context, items repository.ShipmentItemRepository, shipmentID string, line *entity.TransactionLine) error {
	if !line.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvariantViolation
	}
	now := m.now()
	return items.Upsert(ctx, &entity.ShipmentItem{
		ID:                ulid.NewAt(now),
		ShipmentID:        shipmentID,
		TransactionLineID: line.ID,
		Description:       line.Description,
		Quantity:          line.Quantity,
		UnitPrice:         line.UnitPrice,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
}

func (m *ShipmentItemMirror) guard(ctx context.Context, items repository.ShipmentItemRepository, op, lineID string, fn func(items repository.ShipmentItemRepository) error) {
	if err := items.InSavepoint(ctx, fn); err != nil {
		m.log.Error().Err(err).
			Str("op", op).
			Str("line_id", lineID).
			Msg("espejo de ítems de embarque falló; la línea se conserva")
	}
}

func mirroredFieldsChanged(before, after *entity.TransactionLine) bool {
	return before.Description != after.Description ||
		!before.Quantity.Equal(after.Quantity) ||
		!before.UnitPrice.Equal(after.UnitPrice)
}

func sameShipment(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
