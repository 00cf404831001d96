package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

var (
	_ repository.BlobRepository     = (*BlobRepo)(nil)
	_ repository.ContractRepository = (*ContractRepo)(nil)
)

// BlobRepo metadatos de archivos en memoria.
type BlobRepo struct{ db db }

func (r *BlobRepo) Create(ctx context.Context, b *entity.Blob) error {
	return r.db.write(ctx, func(st *state) error {
		st.blobs[b.ID] = *b
		return nil
	})
}

func (r *BlobRepo) GetByID(ctx context.Context, id string) (*entity.Blob, error) {
	var out *entity.Blob
	err := r.db.read(ctx, func(st *state) error {
		if b, ok := st.blobs[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *BlobRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state) error {
		for _, c := range st.contracts {
			if c.BlobID == id {
				return domain.ErrConflict
			}
		}
		delete(st.blobs, id)
		return nil
	})
}

// ContractRepo contratos en memoria.
type ContractRepo struct{ db db }

func (r *ContractRepo) Create(ctx context.Context, c *entity.Contract) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.txs[c.TransactionID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.blobs[c.BlobID]; !ok {
			return domain.ErrNotFound
		}
		stored := *c
		stored.Blob = nil
		st.contracts[c.ID] = stored
		return nil
	})
}

func (r *ContractRepo) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	var out *entity.Contract
	err := r.db.read(ctx, func(st *state) error {
		if c, ok := st.contracts[id]; ok {
			out = st.withBlob(c)
		}
		return nil
	})
	return out, err
}

func (r *ContractRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.contracts[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.contracts, id)
		return nil
	})
}

func (r *ContractRepo) List(ctx context.Context, limit, offset int) ([]*entity.Contract, error) {
	out, err := r.filter(ctx, func(*state, entity.Contract) bool { return true })
	if err != nil {
		return nil, err
	}
	return paginate(out, limit, offset), nil
}

func (r *ContractRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Contract, error) {
	return r.filter(ctx, func(_ *state, c entity.Contract) bool {
		return c.TransactionID == transactionID
	})
}

func (r *ContractRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.Contract, error) {
	return r.filter(ctx, func(st *state, c entity.Contract) bool {
		t, ok := st.txs[c.TransactionID]
		return ok && t.ShipmentID != nil && *t.ShipmentID == shipmentID
	})
}

func (r *ContractRepo) filter(ctx context.Context, keep func(st *state, c entity.Contract) bool) ([]*entity.Contract, error) {
	var out []*entity.Contract
	err := r.db.read(ctx, func(st *state) error {
		for _, c := range st.contracts {
			if keep(st, c) {
				out = append(out, st.withBlob(c))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (st *state) withBlob(c entity.Contract) *entity.Contract {
	if b, ok := st.blobs[c.BlobID]; ok {
		c.Blob = &b
	}
	return &c
}
