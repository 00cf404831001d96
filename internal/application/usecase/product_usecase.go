package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

const maxCodeLength = 64

// ProductUseCase catálogo de productos referenciable desde las líneas de transacción.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto. domain.ErrDuplicate si el SKU ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, domain.NewValidationError("sku", "es requerido")
	}
	if len(sku) > maxCodeLength {
		return nil, domain.NewValidationError("sku", "máximo 64 caracteres")
	}
	var material *string
	if in.MaterialCode != nil {
		if m := strings.TrimSpace(*in.MaterialCode); m != "" {
			if len(m) > maxCodeLength {
				return nil, domain.NewValidationError("material_code", "máximo 64 caracteres")
			}
			material = &m
		}
	}

	now := time.Now()
	p := &entity.Product{
		ID:           ulid.NewAt(now),
		Name:         name,
		SKU:          sku,
		MaterialCode: material,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetByID nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List productos ordenados por SKU.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.ProductResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ListResponse[dto.ProductResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{ID: p.ID, Name: p.Name, SKU: p.SKU, MaterialCode: p.MaterialCode, CreatedAt: p.CreatedAt}
}
