package shipment

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

// PointerRepair mantiene el puntero latest_version_id cuando se crean o borran versiones
// fuera del flujo normal de escritura (seed, borrado correctivo).
// Cada reparación bloquea la fila del embarque; los fallos de bloqueo se reintentan con backoff.
type PointerRepair struct {
	txRunner TxRunner
	maxTries uint
	log      *logger.Logger
	backoff  func() backoff.BackOff
}

// NewPointerRepair construye el reparador. maxTries 0 equivale a un intento.
func NewPointerRepair(txRunner TxRunner, maxTries uint, log *logger.Logger) *PointerRepair {
	if maxTries == 0 {
		maxTries = 1
	}
	return &PointerRepair{
		txRunner: txRunner,
		maxTries: maxTries,
		log:      log.Component("pointer_repair"),
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

// VersionCreated reapunta el embarque a la versión creada en su propia transacción.
func (r *PointerRepair) VersionCreated(ctx context.Context, shipmentID, versionID string) error {
	return r.Run(ctx, "version_created", shipmentID, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		return RepointOnCreated(ctx, shipments, versions, shipmentID, versionID)
	})
}

// VersionDeleted recalcula el puntero tras el borrado de una versión en su propia transacción.
func (r *PointerRepair) VersionDeleted(ctx context.Context, shipmentID, versionID string) error {
	return r.Run(ctx, "version_deleted", shipmentID, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		return RepointOnDeleted(ctx, shipments, versions, shipmentID, versionID)
	})
}

// Run ejecuta fn en una transacción de embarque y la repite completa si un bloqueo no está
// disponible. fn debe poder reejecutarse: cada intento parte de un rollback.
func (r *PointerRepair) Run(ctx context.Context, op, shipmentID string, fn func(repository.ShipmentRepository, repository.ShipmentVersionRepository) error) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := r.txRunner.RunShipment(ctx, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, domain.ErrLockUnavailable) {
			r.log.Warn().Err(err).
				Str("op", op).
				Str("shipment_id", shipmentID).
				Int("attempt", attempt).
				Msg("bloqueo no disponible, reintentando reparación de puntero")
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(r.backoff()), backoff.WithMaxTries(r.maxTries))
	return err
}

// RepointOnCreated variante dentro de una transacción abierta. Bloquea el embarque y lo apunta
// a versionID salvo que ya apunte a ella o a una versión con número mayor.
func RepointOnCreated(
	ctx context.Context,
	shipments repository.ShipmentRepository,
	versions repository.ShipmentVersionRepository,
	shipmentID, versionID string,
) error {
	s, err := shipments.GetForUpdate(ctx, shipmentID)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	created, err := versions.GetByID(ctx, versionID)
	if err != nil {
		return err
	}
	if created == nil || created.ShipmentID != shipmentID {
		return domain.ErrNotFound
	}
	if s.LatestVersionID != nil {
		if *s.LatestVersionID == versionID {
			return nil
		}
		current, err := versions.GetByID(ctx, *s.LatestVersionID)
		if err != nil {
			return err
		}
		if current != nil && current.ShipmentID == shipmentID && current.Version > created.Version {
			return nil
		}
	}
	return shipments.SetLatestVersion(ctx, shipmentID, &versionID)
}

// RepointOnDeleted variante dentro de una transacción abierta. Si el puntero referenciaba la
// versión borrada (o ya no resuelve), lo mueve a la versión de mayor número restante o a NULL.
func RepointOnDeleted(
	ctx context.Context,
	shipments repository.ShipmentRepository,
	versions repository.ShipmentVersionRepository,
	shipmentID, deletedVersionID string,
) error {
	s, err := shipments.GetForUpdate(ctx, shipmentID)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	if s.LatestVersionID == nil {
		return nil
	}
	if *s.LatestVersionID != deletedVersionID {
		current, err := versions.GetByID(ctx, *s.LatestVersionID)
		if err != nil {
			return err
		}
		if current != nil {
			return nil
		}
	}
	latest, err := versions.Latest(ctx, shipmentID)
	if err != nil {
		return err
	}
	var next *string
	if latest != nil {
		next = &latest.ID
	}
	return shipments.SetLatestVersion(ctx, shipmentID, next)
}
