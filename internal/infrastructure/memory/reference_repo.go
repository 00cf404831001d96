package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.VesselRepository   = (*VesselRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ db db }

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	return r.db.write(ctx, func(st *state) error {
		for _, existing := range st.locations {
			if strings.EqualFold(existing.Name, l.Name) {
				return domain.ErrDuplicate
			}
		}
		st.locations[l.ID] = *l
		return nil
	})
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.db.read(ctx, func(st *state) error {
		if l, ok := st.locations[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) UpsertByName(ctx context.Context, name string) (*entity.Location, error) {
	var out *entity.Location
	err := r.db.write(ctx, func(st *state) error {
		for _, existing := range st.locations {
			if strings.EqualFold(existing.Name, name) {
				out = &existing
				return nil
			}
		}
		now := time.Now()
		l := entity.Location{ID: ulid.NewAt(now), Name: name, CreatedAt: now, UpdatedAt: now}
		st.locations[l.ID] = l
		out = &l
		return nil
	})
	return out, err
}

func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	var list []entity.Location
	err := r.db.read(ctx, func(st *state) error {
		for _, l := range st.locations {
			list = append(list, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	list = paginate(list, limit, offset)
	out := make([]*entity.Location, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

// VesselRepo buques en memoria.
type VesselRepo struct{ db db }

func (r *VesselRepo) Create(ctx context.Context, v *entity.Vessel) error {
	return r.db.write(ctx, func(st *state) error {
		for _, existing := range st.vessels {
			if strings.EqualFold(existing.Name, v.Name) {
				return domain.ErrDuplicate
			}
		}
		st.vessels[v.ID] = *v
		return nil
	})
}

func (r *VesselRepo) GetByID(ctx context.Context, id string) (*entity.Vessel, error) {
	var out *entity.Vessel
	err := r.db.read(ctx, func(st *state) error {
		if v, ok := st.vessels[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (r *VesselRepo) UpsertByName(ctx context.Context, name string) (*entity.Vessel, error) {
	var out *entity.Vessel
	err := r.db.write(ctx, func(st *state) error {
		for _, existing := range st.vessels {
			if strings.EqualFold(existing.Name, name) {
				out = &existing
				return nil
			}
		}
		now := time.Now()
		v := entity.Vessel{ID: ulid.NewAt(now), Name: name, CreatedAt: now, UpdatedAt: now}
		st.vessels[v.ID] = v
		out = &v
		return nil
	})
	return out, err
}

func (r *VesselRepo) List(ctx context.Context, limit, offset int) ([]*entity.Vessel, error) {
	var list []entity.Vessel
	err := r.db.read(ctx, func(st *state) error {
		for _, v := range st.vessels {
			list = append(list, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	list = paginate(list, limit, offset)
	out := make([]*entity.Vessel, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

// ProductRepo productos en memoria; SKU único sin distinguir mayúsculas.
type ProductRepo struct{ db db }

func (st *state) productBySKU(sku string) (entity.Product, bool) {
	for _, p := range st.products {
		if strings.EqualFold(p.SKU, sku) {
			return p, true
		}
	}
	return entity.Product{}, false
}

func (st *state) productExists(id *string) bool {
	if id == nil {
		return true
	}
	_, ok := st.products[*id]
	return ok
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.productBySKU(p.SKU); ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.db.read(ctx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) UpsertBySKU(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	var out entity.Product
	err := r.db.write(ctx, func(st *state) error {
		if existing, ok := st.productBySKU(p.SKU); ok {
			existing.Name = p.Name
			existing.MaterialCode = p.MaterialCode
			existing.UpdatedAt = p.UpdatedAt
			st.products[existing.ID] = existing
			out = existing
			return nil
		}
		st.products[p.ID] = *p
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var list []entity.Product
	err := r.db.read(ctx, func(st *state) error {
		for _, p := range st.products {
			list = append(list, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	list = paginate(list, limit, offset)
	out := make([]*entity.Product, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

// UserRepo usuarios en memoria.
type UserRepo struct{ db db }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.db.write(ctx, func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(ctx, func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}
