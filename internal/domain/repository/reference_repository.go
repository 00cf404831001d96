package repository

import (
	"context"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// LocationRepository ubicaciones (orígenes y destinos).
type LocationRepository interface {
	// Create domain.ErrDuplicate si el nombre ya existe.
	Create(ctx context.Context, l *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	// UpsertByName devuelve la ubicación existente con ese nombre o la crea.
	UpsertByName(ctx context.Context, name string) (*entity.Location, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)
}

// VesselRepository buques.
type VesselRepository interface {
	Create(ctx context.Context, v *entity.Vessel) error
	GetByID(ctx context.Context, id string) (*entity.Vessel, error)
	UpsertByName(ctx context.Context, name string) (*entity.Vessel, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Vessel, error)
}

// ProductRepository catálogo de productos.
type ProductRepository interface {
	// Create domain.ErrDuplicate si el SKU ya existe.
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// UpsertBySKU inserta o actualiza nombre y código de material del SKU; devuelve la fila final.
	UpsertBySKU(ctx context.Context, p *entity.Product) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
