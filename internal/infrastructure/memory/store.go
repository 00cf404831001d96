// Package memory implementa los puertos de persistencia en memoria (STORE_DRIVER=memory y tests).
// Cada transacción trabaja sobre una copia del estado y publica sus diferencias en el commit;
// GetForUpdate bloquea solo la fila pedida, de modo que embarques distintos no se esperan.
package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

var (
	_ shipment.TxRunner          = (*Store)(nil)
	_ transaction.LedgerTxRunner = (*Store)(nil)
	_ contract.ContractTxRunner  = (*Store)(nil)
)

type state struct {
	shipments map[string]entity.Shipment
	versions  map[string]entity.ShipmentVersion
	items     map[string]entity.ShipmentItem
	txs       map[string]entity.Transaction
	lines     map[string]entity.TransactionLine
	parties   map[string]entity.Party
	txParties map[string]entity.TransactionParty
	locations map[string]entity.Location
	vessels   map[string]entity.Vessel
	products  map[string]entity.Product
	users     map[string]entity.User
	blobs     map[string]entity.Blob
	contracts map[string]entity.Contract
}

func newState() *state {
	return &state{
		shipments: map[string]entity.Shipment{},
		versions:  map[string]entity.ShipmentVersion{},
		items:     map[string]entity.ShipmentItem{},
		txs:       map[string]entity.Transaction{},
		lines:     map[string]entity.TransactionLine{},
		parties:   map[string]entity.Party{},
		txParties: map[string]entity.TransactionParty{},
		locations: map[string]entity.Location{},
		vessels:   map[string]entity.Vessel{},
		products:  map[string]entity.Product{},
		users:     map[string]entity.User{},
		blobs:     map[string]entity.Blob{},
		contracts: map[string]entity.Contract{},
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *state) clone() *state {
	return &state{
		shipments: cloneMap(st.shipments),
		versions:  cloneMap(st.versions),
		items:     cloneMap(st.items),
		txs:       cloneMap(st.txs),
		lines:     cloneMap(st.lines),
		parties:   cloneMap(st.parties),
		txParties: cloneMap(st.txParties),
		locations: cloneMap(st.locations),
		vessels:   cloneMap(st.vessels),
		products:  cloneMap(st.products),
		users:     cloneMap(st.users),
		blobs:     cloneMap(st.blobs),
		contracts: cloneMap(st.contracts),
	}
}

// applyMap lleva a dst los cambios de work respecto de base.
func applyMap[V any](dst, base, work map[string]V) {
	for k, v := range work {
		if b, ok := base[k]; !ok || !reflect.DeepEqual(b, v) {
			dst[k] = v
		}
	}
	for k := range base {
		if _, ok := work[k]; !ok {
			delete(dst, k)
		}
	}
}

func (st *state) apply(base, work *state) {
	applyMap(st.shipments, base.shipments, work.shipments)
	applyMap(st.versions, base.versions, work.versions)
	applyMap(st.items, base.items, work.items)
	applyMap(st.txs, base.txs, work.txs)
	applyMap(st.lines, base.lines, work.lines)
	applyMap(st.parties, base.parties, work.parties)
	applyMap(st.txParties, base.txParties, work.txParties)
	applyMap(st.locations, base.locations, work.locations)
	applyMap(st.vessels, base.vessels, work.vessels)
	applyMap(st.products, base.products, work.products)
	applyMap(st.users, base.users, work.users)
	applyMap(st.blobs, base.blobs, work.blobs)
	applyMap(st.contracts, base.contracts, work.contracts)
}

// added filas nuevas de work que base no tenía.
func added[V any](base, work map[string]V) []V {
	var out []V
	for k, v := range work {
		if _, ok := base[k]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// dropped indica que la tx elimina la fila id.
func dropped[V any](base, work map[string]V, id string) bool {
	_, inBase := base[id]
	_, inWork := work[id]
	return inBase && !inWork
}

// checkUnique índices únicos: (shipment_id, version), (transaction_id, line_number) y
// (transaction_id, party_id, role), evaluados contra el estado confirmado.
func (st *state) checkUnique(base, work *state) error {
	for _, v := range added(base.versions, work.versions) {
		for id, existing := range st.versions {
			if id != v.ID && !dropped(base.versions, work.versions, id) && existing.ShipmentID == v.ShipmentID && existing.Version == v.Version {
				return domain.ErrConstraintViolation
			}
		}
	}
	for _, l := range added(base.lines, work.lines) {
		for id, existing := range st.lines {
			if id != l.ID && !dropped(base.lines, work.lines, id) && existing.TransactionID == l.TransactionID && existing.LineNumber == l.LineNumber {
				return domain.ErrDuplicate
			}
		}
	}
	for _, tp := range added(base.txParties, work.txParties) {
		for id, existing := range st.txParties {
			if id != tp.ID && !dropped(base.txParties, work.txParties, id) && existing.TransactionID == tp.TransactionID && existing.PartyID == tp.PartyID && existing.Role == tp.Role {
				return domain.ErrDuplicate
			}
		}
	}
	return nil
}

// db acceso al estado: directo sobre el Store (con lock por operación) o dentro de una tx.
type db interface {
	read(ctx context.Context, fn func(st *state) error) error
	write(ctx context.Context, fn func(st *state) error) error
	savepoint(ctx context.Context, fn func(d db) error) error
	// lock toma el bloqueo de fila key hasta el fin de la tx. Fuera de tx no bloquea.
	lock(ctx context.Context, key string) error
}

// Store estado compartido en memoria.
// mu protege solo lecturas/escrituras puntuales y el commit; los bloqueos de fila viven en rows.
type Store struct {
	mu sync.RWMutex
	st *state

	rowsMu sync.Mutex
	rows   map[string]chan struct{}
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), rows: map[string]chan struct{}{}}
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.clone()
}

func (s *Store) rowLock(key string) chan struct{} {
	s.rowsMu.Lock()
	defer s.rowsMu.Unlock()
	ch, ok := s.rows[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rows[key] = ch
	}
	return ch
}

type storeDB struct{ s *Store }

func (d storeDB) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return fn(d.s.st)
}

func (d storeDB) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return fn(d.s.st)
}

func (d storeDB) savepoint(ctx context.Context, fn func(d db) error) error {
	return d.s.run(ctx, fn)
}

func (d storeDB) lock(ctx context.Context, _ string) error {
	return ctx.Err()
}

// memTx transacción en curso: base es el estado confirmado sobre el que trabaja, work su copia.
type memTx struct {
	s    *Store
	base *state
	work *state
	held map[string]chan struct{}
}

type txDB struct{ tx *memTx }

func (d txDB) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(d.tx.work)
}

func (d txDB) write(ctx context.Context, fn func(st *state) error) error {
	return d.read(ctx, fn)
}

// savepoint restaura el contenido del estado de la tx si fn falla.
func (d txDB) savepoint(ctx context.Context, fn func(d db) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snapBase, snap := d.tx.base, d.tx.work.clone()
	if err := fn(d); err != nil {
		restored := d.tx.base.clone()
		restored.apply(snapBase, snap)
		*d.tx.work = *restored
		return err
	}
	return nil
}

// lock espera el bloqueo de la fila y rebasa la tx sobre el último estado confirmado,
// como hace SELECT ... FOR UPDATE en READ COMMITTED.
func (d txDB) lock(ctx context.Context, key string) error {
	t := d.tx
	if _, ok := t.held[key]; ok {
		return ctx.Err()
	}
	ch := t.s.rowLock(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	t.held[key] = ch

	base := t.s.snapshot()
	work := base.clone()
	work.apply(t.base, t.work)
	t.base = base
	*t.work = *work
	return nil
}

func (t *memTx) release() {
	for _, ch := range t.held {
		<-ch
	}
}

// run ejecuta fn como una transacción sobre una copia del estado. El commit aplica solo las
// diferencias y comprueba las restricciones de unicidad contra lo confirmado mientras tanto.
// La cancelación del contexto antes del commit descarta los cambios.
func (s *Store) run(ctx context.Context, fn func(d db) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := s.snapshot()
	t := &memTx{s: s, base: base, work: base.clone(), held: map[string]chan struct{}{}}
	defer t.release()

	if err := fn(txDB{tx: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.checkUnique(t.base, t.work); err != nil {
		return err
	}
	s.st.apply(t.base, t.work)
	return nil
}

// RunShipment implementa shipment.TxRunner.
func (s *Store) RunShipment(ctx context.Context, fn func(
	shipments repository.ShipmentRepository,
	versions repository.ShipmentVersionRepository,
) error) error {
	return s.run(ctx, func(d db) error {
		return fn(&ShipmentRepo{db: d}, &ShipmentVersionRepo{db: d})
	})
}

// RunLedger implementa transaction.LedgerTxRunner.
func (s *Store) RunLedger(ctx context.Context, fn func(
	txs repository.TransactionRepository,
	lines repository.TransactionLineRepository,
	items repository.ShipmentItemRepository,
) error) error {
	return s.run(ctx, func(d db) error {
		return fn(&TransactionRepo{db: d}, &TransactionLineRepo{db: d}, &ShipmentItemRepo{db: d})
	})
}

// RunContract implementa contract.ContractTxRunner.
func (s *Store) RunContract(ctx context.Context, fn func(
	blobs repository.BlobRepository,
	contracts repository.ContractRepository,
) error) error {
	return s.run(ctx, func(d db) error {
		return fn(&BlobRepo{db: d}, &ContractRepo{db: d})
	})
}

// Repositorios fuera de transacción.

func (s *Store) Shipments() *ShipmentRepo       { return &ShipmentRepo{db: storeDB{s}} }
func (s *Store) Versions() *ShipmentVersionRepo { return &ShipmentVersionRepo{db: storeDB{s}} }
func (s *Store) Items() *ShipmentItemRepo       { return &ShipmentItemRepo{db: storeDB{s}} }
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{db: storeDB{s}} }
func (s *Store) Lines() *TransactionLineRepo    { return &TransactionLineRepo{db: storeDB{s}} }
func (s *Store) Parties() *PartyRepo            { return &PartyRepo{db: storeDB{s}} }
func (s *Store) Locations() *LocationRepo       { return &LocationRepo{db: storeDB{s}} }
func (s *Store) Vessels() *VesselRepo           { return &VesselRepo{db: storeDB{s}} }
func (s *Store) Products() *ProductRepo         { return &ProductRepo{db: storeDB{s}} }
func (s *Store) Users() *UserRepo               { return &UserRepo{db: storeDB{s}} }
func (s *Store) Blobs() *BlobRepo               { return &BlobRepo{db: storeDB{s}} }
func (s *Store) Contracts() *ContractRepo       { return &ContractRepo{db: storeDB{s}} }
func (s *Store) Analytics() *AnalyticsRepo      { return &AnalyticsRepo{db: storeDB{s}} }

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
