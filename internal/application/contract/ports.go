package contract

import (
	"context"

	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

// BlobStorage almacenamiento de objetos binarios (disco local o bucket).
type BlobStorage interface {
	// Driver nombre del driver; se guarda como disk del Blob.
	Driver() string
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ContractTxRunner ejecuta fn en una transacción con los repositorios de blobs y contratos.
type ContractTxRunner interface {
	RunContract(ctx context.Context, fn func(
		blobs repository.BlobRepository,
		contracts repository.ContractRepository,
	) error) error
}
