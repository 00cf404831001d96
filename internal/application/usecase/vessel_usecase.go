package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

// VesselUseCase casos de uso CRUD para buques.
type VesselUseCase struct {
	repo repository.VesselRepository
}

// NewVesselUseCase construye el caso de uso.
func NewVesselUseCase(repo repository.VesselRepository) *VesselUseCase {
	return &VesselUseCase{repo: repo}
}

// Create crea un buque. Devuelve domain.ErrDuplicate si el nombre ya existe.
func (uc *VesselUseCase) Create(ctx context.Context, in dto.CreateVesselRequest) (*dto.VesselResponse, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	v := &entity.Vessel{
		ID:        ulid.NewAt(now),
		Name:      name,
		IMO:       in.IMO,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return toVesselResponse(v), nil
}

// GetByID obtiene un buque por ID. nil si no existe.
func (uc *VesselUseCase) GetByID(ctx context.Context, id string) (*dto.VesselResponse, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return toVesselResponse(v), nil
}

// List lista buques con paginación.
func (uc *VesselUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.VesselResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VesselResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *toVesselResponse(v))
	}
	return &dto.ListResponse[dto.VesselResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toVesselResponse(v *entity.Vessel) *dto.VesselResponse {
	return &dto.VesselResponse{ID: v.ID, Name: v.Name, IMO: v.IMO, CreatedAt: v.CreatedAt}
}
