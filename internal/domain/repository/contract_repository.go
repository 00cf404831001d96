package repository

import (
	"context"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// BlobRepository metadatos de archivos almacenados.
type BlobRepository interface {
	Create(ctx context.Context, b *entity.Blob) error
	GetByID(ctx context.Context, id string) (*entity.Blob, error)
	Delete(ctx context.Context, id string) error
}

// ContractRepository contratos; las lecturas incluyen el Blob.
type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	GetByID(ctx context.Context, id string) (*entity.Contract, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Contract, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Contract, error)
	// ListByShipment contratos de las transacciones del embarque.
	ListByShipment(ctx context.Context, shipmentID string) ([]*entity.Contract, error)
}
