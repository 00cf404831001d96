package shipment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

const publishTimeout = 5 * time.Second

// WriteVersionInput entrada ya validada para escribir una versión.
type WriteVersionInput struct {
	ShipmentID string
	Patch      shipment.Patch
	ActorID    *string // nil en escrituras de sistema
	Reason     *string
}

// WriteVersionResult versión creada.
type WriteVersionResult struct {
	ShipmentID string
	VersionID  string
	Version    int
	Status     string
}

// WriteVersionUseCase agregado de embarque: fusiona el parche sobre la última versión,
// agrega la nueva versión y mueve el puntero, todo en una transacción con la fila
// del embarque bloqueada (SELECT FOR UPDATE).
type WriteVersionUseCase struct {
	txRunner  TxRunner
	publisher EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewWriteVersionUseCase construye el caso de uso. publisher puede ser nil.
func NewWriteVersionUseCase(txRunner TxRunner, publisher EventPublisher, log *logger.Logger) *WriteVersionUseCase {
	return &WriteVersionUseCase{
		txRunner:  txRunner,
		publisher: publisher,
		log:       log.Component("shipment_aggregate"),
		now:       time.Now,
	}
}

// Create crea el embarque y su primera versión en la misma transacción.
// Si in.ShipmentID está vacío se genera un ULID.
func (uc *WriteVersionUseCase) Create(ctx context.Context, in WriteVersionInput) (*WriteVersionResult, error) {
	if in.ShipmentID == "" {
		in.ShipmentID = ulid.New()
	}
	var res *WriteVersionResult
	err := uc.txRunner.RunShipment(ctx, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		now := uc.now()
		if err := shipments.Create(ctx, &entity.Shipment{ID: in.ShipmentID, CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		var err error
		res, err = uc.writeInTx(ctx, shipments, versions, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, res, in)
	return res, nil
}

// WriteVersion escribe la siguiente versión de un embarque existente.
// Una violación de unicidad en (shipment_id, version) se reintenta una vez; si se repite
// se devuelve domain.ErrConflict.
func (uc *WriteVersionUseCase) WriteVersion(ctx context.Context, in WriteVersionInput) (*WriteVersionResult, error) {
	res, err := uc.writeOnce(ctx, in)
	if errors.Is(err, domain.ErrConstraintViolation) {
		uc.log.Warn().Str("shipment_id", in.ShipmentID).Msg("número de versión en conflicto, reintentando")
		res, err = uc.writeOnce(ctx, in)
		if errors.Is(err, domain.ErrConstraintViolation) {
			return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
	}
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, res, in)
	return res, nil
}

func (uc *WriteVersionUseCase) writeOnce(ctx context.Context, in WriteVersionInput) (*WriteVersionResult, error) {
	var res *WriteVersionResult
	err := uc.txRunner.RunShipment(ctx, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		var err error
		res, err = uc.writeInTx(ctx, shipments, versions, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *WriteVersionUseCase) writeInTx(
	ctx context.Context,
	shipments repository.ShipmentRepository,
	versions repository.ShipmentVersionRepository,
	in WriteVersionInput,
) (*WriteVersionResult, error) {
	s, err := shipments.GetForUpdate(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}

	prev, err := versions.Latest(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	maxVersion, err := versions.MaxVersion(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	attrs := shipment.Merge(prev, in.Patch)
	v := shipment.NewVersion(ulid.NewAt(now), s.ID, shipment.NextVersion(maxVersion), attrs, in.ActorID, in.Reason, now)
	if err := versions.Append(ctx, v); err != nil {
		return nil, err
	}
	if err := shipments.SetLatestVersion(ctx, s.ID, &v.ID); err != nil {
		return nil, err
	}

	return &WriteVersionResult{
		ShipmentID: s.ID,
		VersionID:  v.ID,
		Version:    v.Version,
		Status:     v.Status,
	}, nil
}

// publish best-effort: un fallo se registra y no afecta la escritura ya confirmada.
func (uc *WriteVersionUseCase) publish(ctx context.Context, res *WriteVersionResult, in WriteVersionInput) {
	if uc.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := VersionCreatedEvent{
		Type:       EventTypeVersionCreated,
		ShipmentID: res.ShipmentID,
		VersionID:  res.VersionID,
		Version:    res.Version,
		Status:     res.Status,
		ActorID:    in.ActorID,
		Reason:     in.Reason,
		OccurredAt: uc.now().UTC(),
	}
	if err := uc.publisher.PublishVersionCreated(pctx, evt); err != nil {
		uc.log.Error().Err(err).
			Str("shipment_id", res.ShipmentID).
			Int("version", res.Version).
			Msg("publicar evento de versión")
	}
}
