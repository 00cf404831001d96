package shipment

import (
	"context"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

// Razones por defecto cuando el cliente no envía reason.
const (
	ReasonCreated = "created"
	ReasonUpdated = "updated"
)

// ShipmentUseCase casos de uso de embarques: creación, escritura de versiones, lecturas
// y borrados administrativos.
type ShipmentUseCase struct {
	shipments repository.ShipmentRepository
	versions  repository.ShipmentVersionRepository
	items     repository.ShipmentItemRepository
	validator *Validator
	writer    *WriteVersionUseCase
	txRunner  TxRunner
	log       *logger.Logger
}

// NewShipmentUseCase construye el caso de uso.
func NewShipmentUseCase(
	shipments repository.ShipmentRepository,
	versions repository.ShipmentVersionRepository,
	items repository.ShipmentItemRepository,
	validator *Validator,
	writer *WriteVersionUseCase,
	txRunner TxRunner,
	log *logger.Logger,
) *ShipmentUseCase {
	return &ShipmentUseCase{
		shipments: shipments,
		versions:  versions,
		items:     items,
		validator: validator,
		writer:    writer,
		txRunner:  txRunner,
		log:       log.Component("shipments"),
	}
}

// Create valida y crea el embarque con su versión 1.
func (uc *ShipmentUseCase) Create(ctx context.Context, in dto.ShipmentWriteRequest, actorID string) (*dto.WriteVersionResponse, error) {
	patch := PatchFromRequest(in)
	if err := uc.validator.ValidateCreate(ctx, patch, in.Reason); err != nil {
		return nil, err
	}
	res, err := uc.writer.Create(ctx, WriteVersionInput{
		Patch:   patch,
		ActorID: optionalString(actorID),
		Reason:  reasonOrDefault(in.Reason, ReasonCreated),
	})
	if err != nil {
		return nil, err
	}
	return toWriteResponse(res), nil
}

// Update escribe una nueva versión con los campos enviados.
func (uc *ShipmentUseCase) Update(ctx context.Context, id string, in dto.ShipmentWriteRequest, actorID string) (*dto.WriteVersionResponse, error) {
	s, err := uc.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	prev, err := uc.versions.Latest(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := PatchFromRequest(in)
	if err := uc.validator.ValidateUpdate(ctx, prev, patch, in.Reason); err != nil {
		return nil, err
	}
	res, err := uc.writer.WriteVersion(ctx, WriteVersionInput{
		ShipmentID: id,
		Patch:      patch,
		ActorID:    optionalString(actorID),
		Reason:     reasonOrDefault(in.Reason, ReasonUpdated),
	})
	if err != nil {
		return nil, err
	}
	return toWriteResponse(res), nil
}

// Get vista actual + historial descendente + ítems.
func (uc *ShipmentUseCase) Get(ctx context.Context, id string) (*dto.ShipmentDetailResponse, error) {
	view, err := uc.shipments.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	history, err := uc.History(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ShipmentDetailResponse{
		Shipment: toShipmentResponse(view),
		History:  history,
		Items:    items,
	}, nil
}

// List vistas actuales paginadas.
func (uc *ShipmentUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ShipmentListResponse, error) {
	page.DefaultPage()
	views, err := uc.shipments.ListViews(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.shipments.Count(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toShipmentResponse(v))
	}
	return &dto.ShipmentListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// History versiones en orden descendente.
func (uc *ShipmentUseCase) History(ctx context.Context, id string) ([]dto.ShipmentVersionResponse, error) {
	if err := uc.mustExist(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.versions.History(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentVersionResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVersionResponse(v))
	}
	return out, nil
}

// Items ítems espejo del embarque.
func (uc *ShipmentUseCase) Items(ctx context.Context, id string) ([]dto.ShipmentItemResponse, error) {
	if err := uc.mustExist(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.items.ListByShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, ToItemResponse(it))
	}
	return out, nil
}

// DeleteVersion borrado correctivo de una versión y reparación del puntero en la misma transacción.
func (uc *ShipmentUseCase) DeleteVersion(ctx context.Context, shipmentID, versionID string) error {
	err := uc.txRunner.RunShipment(ctx, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		s, err := shipments.GetForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		v, err := versions.GetByID(ctx, versionID)
		if err != nil {
			return err
		}
		if v == nil || v.ShipmentID != shipmentID {
			return domain.ErrNotFound
		}
		if err := versions.Delete(ctx, versionID); err != nil {
			return err
		}
		return RepointOnDeleted(ctx, shipments, versions, shipmentID, versionID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("shipment_id", shipmentID).Str("version_id", versionID).Msg("versión eliminada")
	return nil
}

// Delete elimina el embarque con sus versiones e ítems; sus transacciones quedan sin asignar.
func (uc *ShipmentUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.mustExist(ctx, id); err != nil {
		return err
	}
	if err := uc.shipments.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("shipment_id", id).Msg("embarque eliminado")
	return nil
}

func (uc *ShipmentUseCase) mustExist(ctx context.Context, id string) error {
	s, err := uc.shipments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func reasonOrDefault(reason *string, def string) *string {
	if reason == nil || *reason == "" {
		return &def
	}
	return reason
}
