package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
)

var (
	_ repository.ShipmentRepository        = (*ShipmentRepo)(nil)
	_ repository.ShipmentVersionRepository = (*ShipmentVersionRepo)(nil)
	_ repository.ShipmentItemRepository    = (*ShipmentItemRepo)(nil)
)

// ShipmentRepo embarques en memoria.
type ShipmentRepo struct{ db db }

func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.shipments[s.ID]; ok {
			return domain.ErrDuplicate
		}
		st.shipments[s.ID] = *s
		return nil
	})
}

func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	var out *entity.Shipment
	err := r.db.read(ctx, func(st *state) error {
		if s, ok := st.shipments[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// GetForUpdate bloquea solo este embarque hasta el fin de la tx.
func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	if err := r.db.lock(ctx, "shipment:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ShipmentRepo) SetLatestVersion(ctx context.Context, shipmentID string, versionID *string) error {
	return r.db.write(ctx, func(st *state) error {
		s, ok := st.shipments[shipmentID]
		if !ok {
			return domain.ErrNotFound
		}
		if versionID != nil {
			v, ok := st.versions[*versionID]
			if !ok || v.ShipmentID != shipmentID {
				return domain.ErrNotFound
			}
			id := *versionID
			versionID = &id
		}
		s.LatestVersionID = versionID
		st.shipments[shipmentID] = s
		return nil
	})
}

// Delete cascada a versiones e ítems; las transacciones quedan sin asignar.
func (r *ShipmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state) error {
		delete(st.shipments, id)
		for k, v := range st.versions {
			if v.ShipmentID == id {
				delete(st.versions, k)
			}
		}
		for k, it := range st.items {
			if it.ShipmentID == id {
				delete(st.items, k)
			}
		}
		for k, t := range st.txs {
			if t.ShipmentID != nil && *t.ShipmentID == id {
				t.ShipmentID = nil
				st.txs[k] = t
			}
		}
		return nil
	})
}

func (r *ShipmentRepo) GetView(ctx context.Context, id string) (*shipment.View, error) {
	var out *shipment.View
	err := r.db.read(ctx, func(st *state) error {
		s, ok := st.shipments[id]
		if !ok {
			return nil
		}
		out = st.view(s)
		return nil
	})
	return out, err
}

func (r *ShipmentRepo) ListViews(ctx context.Context, limit, offset int) ([]*shipment.View, error) {
	var out []*shipment.View
	err := r.db.read(ctx, func(st *state) error {
		list := make([]entity.Shipment, 0, len(st.shipments))
		for _, s := range st.shipments {
			list = append(list, s)
		}
		sort.Slice(list, func(i, j int) bool {
			if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].CreatedAt.After(list[j].CreatedAt)
			}
			return list[i].ID > list[j].ID
		})
		for _, s := range paginate(list, limit, offset) {
			out = append(out, st.view(s))
		}
		return nil
	})
	return out, err
}

func (r *ShipmentRepo) Count(ctx context.Context) (int, error) {
	n := 0
	err := r.db.read(ctx, func(st *state) error {
		n = len(st.shipments)
		return nil
	})
	return n, err
}

func (st *state) view(s entity.Shipment) *shipment.View {
	var current *entity.ShipmentVersion
	if s.LatestVersionID != nil {
		if v, ok := st.versions[*s.LatestVersionID]; ok {
			current = &v
		}
	}
	view := shipment.Project(&s, current)
	if view.VesselID != nil {
		if v, ok := st.vessels[*view.VesselID]; ok {
			view.VesselName = &v.Name
		}
	}
	if view.OriginID != nil {
		if l, ok := st.locations[*view.OriginID]; ok {
			view.OriginName = &l.Name
		}
	}
	if view.DestinationID != nil {
		if l, ok := st.locations[*view.DestinationID]; ok {
			view.DestinationName = &l.Name
		}
	}
	return view
}

// ShipmentVersionRepo versiones en memoria.
type ShipmentVersionRepo struct{ db db }

func (r *ShipmentVersionRepo) MaxVersion(ctx context.Context, shipmentID string) (int, error) {
	maxVersion := 0
	err := r.db.read(ctx, func(st *state) error {
		for _, v := range st.versions {
			if v.ShipmentID == shipmentID && v.Version > maxVersion {
				maxVersion = v.Version
			}
		}
		return nil
	})
	return maxVersion, err
}

func (r *ShipmentVersionRepo) Append(ctx context.Context, v *entity.ShipmentVersion) error {
	return r.db.write(ctx, func(st *state) error {
		return st.appendVersion(v)
	})
}

func (st *state) appendVersion(v *entity.ShipmentVersion) error {
	if _, ok := st.shipments[v.ShipmentID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range st.versions {
		if existing.ShipmentID == v.ShipmentID && existing.Version == v.Version {
			return domain.ErrConstraintViolation
		}
	}
	st.versions[v.ID] = *v
	return nil
}

func (r *ShipmentVersionRepo) BulkAppend(ctx context.Context, versions []*entity.ShipmentVersion) (int64, error) {
	var n int64
	err := r.db.savepoint(ctx, func(d db) error {
		return d.write(ctx, func(st *state) error {
			for _, v := range versions {
				if err := st.appendVersion(v); err != nil {
					return err
				}
				n++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ShipmentVersionRepo) History(ctx context.Context, shipmentID string) ([]*entity.ShipmentVersion, error) {
	var out []*entity.ShipmentVersion
	err := r.db.read(ctx, func(st *state) error {
		for _, v := range st.versions {
			if v.ShipmentID == shipmentID {
				v := v
				out = append(out, &v)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, err
}

func (r *ShipmentVersionRepo) Latest(ctx context.Context, shipmentID string) (*entity.ShipmentVersion, error) {
	list, err := r.History(ctx, shipmentID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *ShipmentVersionRepo) GetByID(ctx context.Context, id string) (*entity.ShipmentVersion, error) {
	var out *entity.ShipmentVersion
	err := r.db.read(ctx, func(st *state) error {
		if v, ok := st.versions[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (r *ShipmentVersionRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.versions[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.versions, id)
		return nil
	})
}

// ShipmentItemRepo ítems espejo en memoria.
type ShipmentItemRepo struct{ db db }

func (r *ShipmentItemRepo) Upsert(ctx context.Context, item *entity.ShipmentItem) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.shipments[item.ShipmentID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.lines[item.TransactionLineID]; !ok {
			return domain.ErrNotFound
		}
		for k, existing := range st.items {
			if existing.ShipmentID == item.ShipmentID && existing.TransactionLineID == item.TransactionLineID {
				existing.Description = item.Description
				existing.Quantity = item.Quantity
				existing.UnitPrice = item.UnitPrice
				existing.UpdatedAt = item.UpdatedAt
				st.items[k] = existing
				return nil
			}
		}
		st.items[item.ID] = *item
		return nil
	})
}

func (r *ShipmentItemRepo) DeleteByLine(ctx context.Context, shipmentID, lineID string) error {
	return r.db.write(ctx, func(st *state) error {
		for k, it := range st.items {
			if it.ShipmentID == shipmentID && it.TransactionLineID == lineID {
				delete(st.items, k)
			}
		}
		return nil
	})
}

func (r *ShipmentItemRepo) DeleteByShipment(ctx context.Context, shipmentID string) error {
	return r.db.write(ctx, func(st *state) error {
		for k, it := range st.items {
			if it.ShipmentID == shipmentID {
				delete(st.items, k)
			}
		}
		return nil
	})
}

func (r *ShipmentItemRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.ShipmentItem, error) {
	var out []*entity.ShipmentItem
	err := r.db.read(ctx, func(st *state) error {
		for _, it := range st.items {
			if it.ShipmentID == shipmentID {
				it := it
				out = append(out, &it)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *ShipmentItemRepo) InSavepoint(ctx context.Context, fn func(items repository.ShipmentItemRepository) error) error {
	return r.db.savepoint(ctx, func(d db) error {
		return fn(&ShipmentItemRepo{db: d})
	})
}
