package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

// PartyUseCase casos de uso para partes (compradores, vendedores, transportistas...).
type PartyUseCase struct {
	repo repository.PartyRepository
}

// NewPartyUseCase construye el caso de uso.
func NewPartyUseCase(repo repository.PartyRepository) *PartyUseCase {
	return &PartyUseCase{repo: repo}
}

// Create crea una parte.
func (uc *PartyUseCase) Create(ctx context.Context, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.Type != nil && !entity.ValidPartyType(*in.Type) {
		return nil, domain.NewValidationError("type", "debe ser COMPANY o INDIVIDUAL")
	}
	now := time.Now()
	p := &entity.Party{
		ID:        ulid.NewAt(now),
		Name:      name,
		Type:      in.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toPartyResponse(p), nil
}

// GetByID obtiene una parte por ID. nil si no existe.
func (uc *PartyUseCase) GetByID(ctx context.Context, id string) (*dto.PartyResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return toPartyResponse(p), nil
}

// List lista partes con paginación.
func (uc *PartyUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.PartyResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PartyResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPartyResponse(p))
	}
	return &dto.ListResponse[dto.PartyResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toPartyResponse(p *entity.Party) *dto.PartyResponse {
	return &dto.PartyResponse{ID: p.ID, Name: p.Name, Type: p.Type, CreatedAt: p.CreatedAt}
}
