package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

var (
	_ repository.TransactionRepository     = (*TransactionRepo)(nil)
	_ repository.TransactionLineRepository = (*TransactionLineRepo)(nil)
	_ repository.PartyRepository           = (*PartyRepo)(nil)
)

// TransactionRepo transacciones en memoria.
type TransactionRepo struct{ db db }

func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	return r.db.write(ctx, func(st *state) error {
		if t.ShipmentID != nil {
			if _, ok := st.shipments[*t.ShipmentID]; !ok {
				return domain.ErrNotFound
			}
		}
		st.txs[t.ID] = *t
		return nil
	})
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.db.read(ctx, func(st *state) error {
		if t, ok := st.txs[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	if err := r.db.lock(ctx, "transaction:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *TransactionRepo) Update(ctx context.Context, t *entity.Transaction) error {
	return r.db.write(ctx, func(st *state) error {
		cur, ok := st.txs[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if t.ShipmentID != nil {
			if _, ok := st.shipments[*t.ShipmentID]; !ok {
				return domain.ErrNotFound
			}
		}
		cur.ShipmentID = t.ShipmentID
		cur.Type = t.Type
		cur.TxDate = t.TxDate
		cur.Reference = t.Reference
		cur.UpdatedAt = t.UpdatedAt
		st.txs[t.ID] = cur
		return nil
	})
}

func (r *TransactionRepo) SetTotal(ctx context.Context, t *entity.Transaction) error {
	return r.db.write(ctx, func(st *state) error {
		cur, ok := st.txs[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.TotalValue = t.TotalValue
		cur.UpdatedAt = t.UpdatedAt
		st.txs[t.ID] = cur
		return nil
	})
}

// Delete cascada a líneas (y sus ítems), partes vinculadas y contratos.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.txs[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.txs, id)
		for k, l := range st.lines {
			if l.TransactionID == id {
				st.deleteLine(k)
			}
		}
		for k, tp := range st.txParties {
			if tp.TransactionID == id {
				delete(st.txParties, k)
			}
		}
		for k, c := range st.contracts {
			if c.TransactionID == id {
				delete(st.contracts, k)
			}
		}
		return nil
	})
}

func (r *TransactionRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.Transaction, error) {
	return r.filter(ctx, 0, 0, func(st *state, t entity.Transaction) bool {
		return t.ShipmentID != nil && *t.ShipmentID == shipmentID
	})
}

func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error) {
	return r.filter(ctx, limit, offset, func(*state, entity.Transaction) bool { return true })
}

func (r *TransactionRepo) ListWithoutContracts(ctx context.Context, limit, offset int) ([]*entity.Transaction, error) {
	return r.filter(ctx, limit, offset, func(st *state, t entity.Transaction) bool {
		for _, c := range st.contracts {
			if c.TransactionID == t.ID {
				return false
			}
		}
		return true
	})
}

func (r *TransactionRepo) filter(ctx context.Context, limit, offset int, keep func(st *state, t entity.Transaction) bool) ([]*entity.Transaction, error) {
	var list []entity.Transaction
	err := r.db.read(ctx, func(st *state) error {
		for _, t := range st.txs {
			if keep(st, t) {
				list = append(list, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].TxDate.Equal(list[j].TxDate) {
			return list[i].TxDate.After(list[j].TxDate)
		}
		return list[i].ID > list[j].ID
	})
	if limit > 0 {
		list = paginate(list, limit, offset)
	}
	out := make([]*entity.Transaction, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

// TransactionLineRepo líneas en memoria.
type TransactionLineRepo struct{ db db }

func (r *TransactionLineRepo) Create(ctx context.Context, l *entity.TransactionLine) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.txs[l.TransactionID]; !ok {
			return domain.ErrNotFound
		}
		if st.lineNumberTaken(l.TransactionID, l.LineNumber, "") {
			return domain.ErrDuplicate
		}
		if !st.productExists(l.ProductID) {
			return domain.ErrNotFound
		}
		st.lines[l.ID] = *l
		return nil
	})
}

func (r *TransactionLineRepo) GetByID(ctx context.Context, id string) (*entity.TransactionLine, error) {
	var out *entity.TransactionLine
	err := r.db.read(ctx, func(st *state) error {
		if l, ok := st.lines[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *TransactionLineRepo) Update(ctx context.Context, l *entity.TransactionLine) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.lines[l.ID]; !ok {
			return domain.ErrNotFound
		}
		if st.lineNumberTaken(l.TransactionID, l.LineNumber, l.ID) {
			return domain.ErrDuplicate
		}
		if !st.productExists(l.ProductID) {
			return domain.ErrNotFound
		}
		st.lines[l.ID] = *l
		return nil
	})
}

func (r *TransactionLineRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.lines[id]; !ok {
			return domain.ErrNotFound
		}
		st.deleteLine(id)
		return nil
	})
}

func (r *TransactionLineRepo) MaxLineNumber(ctx context.Context, transactionID string) (int, error) {
	maxNumber := 0
	err := r.db.read(ctx, func(st *state) error {
		for _, l := range st.lines {
			if l.TransactionID == transactionID && l.LineNumber > maxNumber {
				maxNumber = l.LineNumber
			}
		}
		return nil
	})
	return maxNumber, err
}

func (r *TransactionLineRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.TransactionLine, error) {
	return r.filter(ctx, func(st *state, l entity.TransactionLine) bool {
		return l.TransactionID == transactionID
	})
}

func (r *TransactionLineRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*entity.TransactionLine, error) {
	return r.filter(ctx, func(st *state, l entity.TransactionLine) bool {
		t, ok := st.txs[l.TransactionID]
		return ok && t.ShipmentID != nil && *t.ShipmentID == shipmentID
	})
}

func (r *TransactionLineRepo) filter(ctx context.Context, keep func(st *state, l entity.TransactionLine) bool) ([]*entity.TransactionLine, error) {
	var out []*entity.TransactionLine
	err := r.db.read(ctx, func(st *state) error {
		for _, l := range st.lines {
			if keep(st, l) {
				l := l
				out = append(out, &l)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].TransactionID != out[j].TransactionID {
			return out[i].TransactionID < out[j].TransactionID
		}
		return out[i].LineNumber < out[j].LineNumber
	})
	return out, err
}

func (st *state) lineNumberTaken(transactionID string, number int, exceptID string) bool {
	for _, l := range st.lines {
		if l.TransactionID == transactionID && l.LineNumber == number && l.ID != exceptID {
			return true
		}
	}
	return false
}

// deleteLine borra la línea y su ítem espejo (cascada).
func (st *state) deleteLine(id string) {
	delete(st.lines, id)
	for k, it := range st.items {
		if it.TransactionLineID == id {
			delete(st.items, k)
		}
	}
}

// PartyRepo partes en memoria.
type PartyRepo struct{ db db }

func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	return r.db.write(ctx, func(st *state) error {
		st.parties[p.ID] = *p
		return nil
	})
}

func (r *PartyRepo) GetByID(ctx context.Context, id string) (*entity.Party, error) {
	var out *entity.Party
	err := r.db.read(ctx, func(st *state) error {
		if p, ok := st.parties[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *PartyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Party, error) {
	var list []entity.Party
	err := r.db.read(ctx, func(st *state) error {
		for _, p := range st.parties {
			list = append(list, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	list = paginate(list, limit, offset)
	out := make([]*entity.Party, 0, len(list))
	for i := range list {
		out = append(out, &list[i])
	}
	return out, nil
}

func (r *PartyRepo) Attach(ctx context.Context, tp *entity.TransactionParty) error {
	return r.db.write(ctx, func(st *state) error {
		for _, existing := range st.txParties {
			if existing.TransactionID == tp.TransactionID && existing.PartyID == tp.PartyID && existing.Role == tp.Role {
				return domain.ErrDuplicate
			}
		}
		st.txParties[tp.ID] = *tp
		return nil
	})
}

func (r *PartyRepo) Detach(ctx context.Context, transactionID, partyID, role string) error {
	return r.db.write(ctx, func(st *state) error {
		for k, tp := range st.txParties {
			if tp.TransactionID == transactionID && tp.PartyID == partyID && tp.Role == role {
				delete(st.txParties, k)
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *PartyRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.TransactionParty, error) {
	var out []*entity.TransactionParty
	err := r.db.read(ctx, func(st *state) error {
		for _, tp := range st.txParties {
			if tp.TransactionID == transactionID {
				tp := tp
				if p, ok := st.parties[tp.PartyID]; ok {
					tp.PartyName = p.Name
				}
				out = append(out, &tp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].PartyName < out[j].PartyName
	})
	return out, err
}
