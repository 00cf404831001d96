package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/memory"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type ledgerFixture struct {
	store  *memory.Store
	lines  *transaction.TransactionLineService
	txs    *transaction.TransactionUseCase
	mirror *transaction.ShipmentItemMirror
}

func newLedgerFixture(runner transaction.LedgerTxRunner) *ledgerFixture {
	s := memory.New()
	if runner == nil {
		runner = s
	}
	mirror := transaction.NewShipmentItemMirror(logger.Nop())
	lines := transaction.NewTransactionLineService(runner, s.Products(), mirror)
	return &ledgerFixture{
		store:  s,
		mirror: mirror,
		lines:  lines,
		txs: transaction.NewTransactionUseCase(
			s.Transactions(), s.Lines(), s.Parties(), s.Contracts(), s.Shipments(), runner, mirror, lines, logger.Nop(),
		),
	}
}

func (f *ledgerFixture) shipment(t *testing.T) string {
	t.Helper()
	id := ulid.New()
	now := time.Now()
	require.NoError(t, f.store.Shipments().Create(context.Background(), &entity.Shipment{ID: id, CreatedAt: now, UpdatedAt: now}))
	return id
}

func (f *ledgerFixture) transaction(t *testing.T, shipmentID *string) string {
	t.Helper()
	out, err := f.txs.Create(context.Background(), dto.CreateTransactionRequest{
		ShipmentID: shipmentID,
		Type:       entity.TxTypePurchase,
		TxDate:     "2025-03-01",
	})
	require.NoError(t, err)
	return out.ID
}

func (f *ledgerFixture) items(t *testing.T, shipmentID string) []*entity.ShipmentItem {
	t.Helper()
	list, err := f.store.Items().ListByShipment(context.Background(), shipmentID)
	require.NoError(t, err)
	return list
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(desc, qty, price string) transaction.LineInput {
	return transaction.LineInput{Description: desc, Quantity: dec(qty), UnitPrice: dec(price)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Líneas
// ──────────────────────────────────────────────────────────────────────────────

func TestLineService_NumeraYTotaliza(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	txID := f.transaction(t, nil)

	l1, err := f.lines.Create(ctx, txID, line("Café verde", "3", "2.50"))
	require.NoError(t, err)
	assert.Equal(t, 1, l1.LineNumber)
	assert.True(t, dec("7.50").Equal(l1.LineValue))

	l2, err := f.lines.Create(ctx, txID, line("Muestras", "0.333", "3.00"))
	require.NoError(t, err)
	assert.Equal(t, 2, l2.LineNumber)
	assert.Equal(t, "1.00", l2.LineValue.StringFixed(2), "line_value redondeado a 2 decimales")

	tx, err := f.store.Transactions().GetByID(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, "8.50", tx.TotalValue.StringFixed(2))

	qty := dec("4")
	upd, err := f.lines.Update(ctx, txID, l1.ID, transaction.LinePatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "10.00", upd.LineValue.StringFixed(2))

	require.NoError(t, f.lines.Delete(ctx, txID, l2.ID))
	tx, err = f.store.Transactions().GetByID(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", tx.TotalValue.StringFixed(2))
}

func TestLineService_Validaciones(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	txID := f.transaction(t, nil)

	_, err := f.lines.Create(ctx, txID, line("x", "0", "1"))
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	_, err = f.lines.Create(ctx, txID, line("x", "1", "-1"))
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	_, err = f.lines.Create(ctx, txID, line("x", "1", "1.001"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.lines.Create(ctx, txID, line("   ", "1", "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.lines.Create(ctx, "NOPE", line("x", "1", "1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	other := f.transaction(t, nil)
	l, err := f.lines.Create(ctx, other, line("x", "1", "1"))
	require.NoError(t, err)
	err = f.lines.Delete(ctx, txID, l.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la línea pertenece a otra transacción")
}

// ──────────────────────────────────────────────────────────────────────────────
// Espejo de ítems
// ──────────────────────────────────────────────────────────────────────────────

func TestMirror_SigueLasLineas(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	shipmentID := f.shipment(t)
	txID := f.transaction(t, &shipmentID)

	l, err := f.lines.Create(ctx, txID, line("Café verde", "3", "2.50"))
	require.NoError(t, err)
	items := f.items(t, shipmentID)
	require.Len(t, items, 1)
	assert.Equal(t, l.ID, items[0].TransactionLineID)
	assert.Equal(t, "Café verde", items[0].Description)

	desc := "Café pergamino"
	_, err = f.lines.Update(ctx, txID, l.ID, transaction.LinePatch{Description: &desc})
	require.NoError(t, err)
	items = f.items(t, shipmentID)
	require.Len(t, items, 1)
	assert.Equal(t, desc, items[0].Description)

	require.NoError(t, f.lines.Delete(ctx, txID, l.ID))
	assert.Empty(t, f.items(t, shipmentID))
}

func TestMirror_TransaccionSinEmbarqueNoProyecta(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	shipmentID := f.shipment(t)
	txID := f.transaction(t, nil)

	_, err := f.lines.Create(ctx, txID, line("x", "1", "1"))
	require.NoError(t, err)
	assert.Empty(t, f.items(t, shipmentID))
}

func TestMirror_ReasignacionMueveItems(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	a, b := f.shipment(t), f.shipment(t)
	txID := f.transaction(t, &a)

	_, err := f.lines.Create(ctx, txID, line("uno", "1", "1"))
	require.NoError(t, err)
	_, err = f.lines.Create(ctx, txID, line("dos", "2", "1"))
	require.NoError(t, err)
	require.Len(t, f.items(t, a), 2)

	out, err := f.txs.Assign(ctx, txID, &b)
	require.NoError(t, err)
	require.NotNil(t, out.ShipmentID)
	assert.Equal(t, b, *out.ShipmentID)
	assert.Empty(t, f.items(t, a))
	assert.Len(t, f.items(t, b), 2)

	_, err = f.txs.Assign(ctx, txID, nil)
	require.NoError(t, err)
	assert.Empty(t, f.items(t, b))

	missing := ulid.New()
	_, err = f.txs.Assign(ctx, txID, &missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMirror_Rebuild(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	shipmentID := f.shipment(t)
	txID := f.transaction(t, &shipmentID)
	for _, d := range []string{"a", "b", "c"} {
		_, err := f.lines.Create(ctx, txID, line(d, "1", "1"))
		require.NoError(t, err)
	}
	require.NoError(t, f.store.Items().DeleteByShipment(ctx, shipmentID))
	require.Empty(t, f.items(t, shipmentID))

	n, err := f.txs.RebuildItems(ctx, shipmentID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, f.items(t, shipmentID), 3)
}

// brokenItems ítems cuyo savepoint siempre falla.
type brokenItems struct {
	repository.ShipmentItemRepository
}

func (brokenItems) InSavepoint(context.Context, func(repository.ShipmentItemRepository) error) error {
	return errors.New("savepoint roto")
}

type brokenMirrorRunner struct {
	store *memory.Store
}

func (r *brokenMirrorRunner) RunLedger(ctx context.Context, fn func(repository.TransactionRepository, repository.TransactionLineRepository, repository.ShipmentItemRepository) error) error {
	return r.store.RunLedger(ctx, func(txs repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		return fn(txs, lines, brokenItems{items})
	})
}

func TestMirror_FalloNoRevierteLaLinea(t *testing.T) {
	s := memory.New()
	mirror := transaction.NewShipmentItemMirror(logger.Nop())
	runner := &brokenMirrorRunner{store: s}
	lines := transaction.NewTransactionLineService(runner, s.Products(), mirror)
	txs := transaction.NewTransactionUseCase(s.Transactions(), s.Lines(), s.Parties(), s.Contracts(), s.Shipments(), runner, mirror, lines, logger.Nop())
	ctx := context.Background()

	shipmentID := ulid.New()
	require.NoError(t, s.Shipments().Create(ctx, &entity.Shipment{ID: shipmentID}))
	tx, err := txs.Create(ctx, dto.CreateTransactionRequest{ShipmentID: &shipmentID, Type: entity.TxTypeSale, TxDate: "2025-03-01"})
	require.NoError(t, err)

	l, err := lines.Create(ctx, tx.ID, line("x", "2", "5"))
	require.NoError(t, err)

	stored, err := s.Lines().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored, "la línea se confirma aunque el espejo falle")

	items, err := s.Items().ListByShipment(ctx, shipmentID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTransaction_CreateValida(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()

	_, err := f.txs.Create(ctx, dto.CreateTransactionRequest{Type: "GIFT", TxDate: "2025-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.txs.Create(ctx, dto.CreateTransactionRequest{Type: entity.TxTypeFreight, TxDate: "01/03/2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := "no-ulid"
	_, err = f.txs.Create(ctx, dto.CreateTransactionRequest{ShipmentID: &bad, Type: entity.TxTypeFreight, TxDate: "2025-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.txs.Create(ctx, dto.CreateTransactionRequest{Type: entity.TxTypeInsurance, TxDate: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", out.TxDate)
	assert.Equal(t, "0.00", out.TotalValue)
}

func TestTransaction_BorradoEnCascada(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	shipmentID := f.shipment(t)
	txID := f.transaction(t, &shipmentID)
	l, err := f.lines.Create(ctx, txID, line("x", "1", "1"))
	require.NoError(t, err)

	require.NoError(t, f.txs.Delete(ctx, txID))

	stored, err := f.store.Lines().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Empty(t, f.items(t, shipmentID))

	_, err = f.txs.Get(ctx, txID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta con líneas y productos
// ──────────────────────────────────────────────────────────────────────────────

func createLine(desc, qty, price string) dto.CreateLineRequest {
	return dto.CreateLineRequest{Description: desc, Quantity: dec(qty), UnitPrice: dec(price)}
}

func (f *ledgerFixture) product(t *testing.T, sku string) string {
	t.Helper()
	now := time.Now()
	p := &entity.Product{ID: ulid.New(), Name: "Cobre " + sku, SKU: sku, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p.ID
}

func TestTransaction_CreateConLineasNumeraYRefleja(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	shipmentID := f.shipment(t)
	productID := f.product(t, "CU-01")

	first := createLine("Cátodos", "2", "100.00")
	first.ProductID = &productID
	out, err := f.txs.Create(ctx, dto.CreateTransactionRequest{
		ShipmentID: &shipmentID,
		Type:       entity.TxTypeSale,
		TxDate:     "2025-03-01",
		Lines:      []dto.CreateLineRequest{first, createLine("Flete interno", "1", "25.50")},
	})
	require.NoError(t, err)
	assert.Equal(t, "225.50", out.TotalValue)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, 1, out.Lines[0].LineNumber)
	assert.Equal(t, 2, out.Lines[1].LineNumber)
	assert.Equal(t, &productID, out.Lines[0].ProductID)
	assert.Nil(t, out.Lines[1].ProductID)

	stored, err := f.store.Transactions().GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "225.50", stored.TotalValue.StringFixed(2))
	assert.Len(t, f.items(t, shipmentID), 2)

	// las siguientes líneas continúan la numeración
	l3, err := f.lines.Create(ctx, out.ID, line("Seguro", "1", "1"))
	require.NoError(t, err)
	assert.Equal(t, 3, l3.LineNumber)
}

func TestTransaction_CreateConLineaInvalidaNoDejaCabecera(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()

	one := 1
	a, b := createLine("a", "1", "1"), createLine("b", "1", "1")
	a.LineNumber, b.LineNumber = &one, &one
	_, err := f.txs.Create(ctx, dto.CreateTransactionRequest{
		Type:   entity.TxTypePurchase,
		TxDate: "2025-03-01",
		Lines:  []dto.CreateLineRequest{a, b},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := f.store.Transactions().List(ctx, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "la cabecera se descarta con sus líneas")
}

func TestTransaction_CreateConLineasValida(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	base := dto.CreateTransactionRequest{Type: entity.TxTypePurchase, TxDate: "2025-03-01"}

	cases := []struct {
		name  string
		lines []dto.CreateLineRequest
		field string
	}{
		{name: "lista vacía", lines: []dto.CreateLineRequest{}, field: "lines"},
		{name: "line_value enviado", lines: func() []dto.CreateLineRequest {
			l := createLine("x", "1", "1")
			l.LineValue = "1.00"
			return []dto.CreateLineRequest{l}
		}(), field: "lines[0].line_value"},
		{name: "producto inexistente", lines: func() []dto.CreateLineRequest {
			missing := ulid.New()
			l := createLine("x", "1", "1")
			l.ProductID = &missing
			return []dto.CreateLineRequest{createLine("ok", "1", "1"), l}
		}(), field: "lines[1].product_id"},
		{name: "descripción vacía", lines: []dto.CreateLineRequest{createLine(" ", "1", "1")}, field: "lines[0].description"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			in.Lines = tc.lines
			_, err := f.txs.Create(ctx, in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	list, err := f.store.Transactions().List(ctx, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLineService_ProductoDeLaLinea(t *testing.T) {
	f := newLedgerFixture(nil)
	ctx := context.Background()
	txID := f.transaction(t, nil)
	productID := f.product(t, "CU-02")

	missing := ulid.New()
	in := line("x", "1", "1")
	in.ProductID = &missing
	_, err := f.lines.Create(ctx, txID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	l, err := f.lines.Create(ctx, txID, line("x", "1", "1"))
	require.NoError(t, err)
	assert.Nil(t, l.ProductID)

	upd, err := f.lines.Update(ctx, txID, l.ID, transaction.LinePatch{ProductID: &productID})
	require.NoError(t, err)
	assert.Equal(t, &productID, upd.ProductID)

	_, err = f.lines.Update(ctx, txID, l.ID, transaction.LinePatch{ProductID: &missing})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestToLinePatch_RechazaLineValue(t *testing.T) {
	_, err := transaction.ToLinePatch(dto.UpdateLineRequest{LineValue: 10})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	desc := "x"
	patch, err := transaction.ToLinePatch(dto.UpdateLineRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, &desc, patch.Description)
}
