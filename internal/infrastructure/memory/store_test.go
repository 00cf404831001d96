package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/memory"
)

func strp(s string) *string { return &s }

var day = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// seedShipment crea embarque + v1 y deja el puntero apuntando a v1.
func seedShipment(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	ctx := context.Background()
	err := s.RunShipment(ctx, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		if err := shipments.Create(ctx, &entity.Shipment{ID: id, CreatedAt: day, UpdatedAt: day}); err != nil {
			return err
		}
		v := &entity.ShipmentVersion{ID: id + "-v1", ShipmentID: id, Version: 1, Status: entity.StatusPlanned, CreatedAt: day}
		if err := versions.Append(ctx, v); err != nil {
			return err
		}
		return shipments.SetLatestVersion(ctx, id, &v.ID)
	})
	require.NoError(t, err)
}

func seedTx(t *testing.T, s *memory.Store, id string, shipmentID *string, typ string, date time.Time, lines ...entity.TransactionLine) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Transactions().Create(ctx, &entity.Transaction{
		ID: id, ShipmentID: shipmentID, Type: typ, TxDate: date, CreatedAt: date, UpdatedAt: date,
	}))
	for i := range lines {
		l := lines[i]
		l.TransactionID = id
		require.NoError(t, s.Lines().Create(ctx, &l))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones y savepoints
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_RollbackDescartaCambios(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunShipment(ctx, func(shipments repository.ShipmentRepository, _ repository.ShipmentVersionRepository) error {
		require.NoError(t, shipments.Create(ctx, &entity.Shipment{ID: "S1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Shipments().GetByID(ctx, "S1")
	require.NoError(t, err)
	assert.Nil(t, got, "el embarque no debe existir tras el rollback")
}

func TestStore_ContextoCanceladoNoHaceCommit(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.RunShipment(ctx, func(shipments repository.ShipmentRepository, _ repository.ShipmentVersionRepository) error {
		require.NoError(t, shipments.Create(ctx, &entity.Shipment{ID: "S1"}))
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	n, err := s.Shipments().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_SavepointRestauraSoloSuParte(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "S1")
	seedTx(t, s, "T1", strp("S1"), entity.TxTypePurchase, day)

	err := s.RunLedger(ctx, func(txs repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		require.NoError(t, lines.Create(ctx, &entity.TransactionLine{ID: "L1", TransactionID: "T1", Description: "acero", LineNumber: 1}))
		spErr := items.InSavepoint(ctx, func(items repository.ShipmentItemRepository) error {
			require.NoError(t, items.Upsert(ctx, &entity.ShipmentItem{ID: "I1", ShipmentID: "S1", TransactionLineID: "L1"}))
			return errors.New("falla del espejo")
		})
		assert.Error(t, spErr)
		return nil
	})
	require.NoError(t, err)

	line, err := s.Lines().GetByID(ctx, "L1")
	require.NoError(t, err)
	assert.NotNil(t, line, "la línea se confirma aunque el savepoint falle")

	list, err := s.Items().ListByShipment(ctx, "S1")
	require.NoError(t, err)
	assert.Empty(t, list, "el ítem del savepoint fallido no debe persistir")
}

func TestStore_BulkAppendEsAtomico(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "S1")

	n, err := s.Versions().BulkAppend(ctx, []*entity.ShipmentVersion{
		{ID: "S1-v2", ShipmentID: "S1", Version: 2, Status: entity.StatusInTransit},
		{ID: "S1-v1b", ShipmentID: "S1", Version: 1, Status: entity.StatusArrived},
	})
	require.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Zero(t, n)

	maxVersion, err := s.Versions().MaxVersion(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, 1, maxVersion, "ninguna versión del lote debe quedar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Bloqueos de fila
// ──────────────────────────────────────────────────────────────────────────────

// holdShipment abre una tx que bloquea el embarque id hasta que se cierre release.
func holdShipment(t *testing.T, s *memory.Store, id string) (release chan struct{}, done chan error) {
	t.Helper()
	locked := make(chan struct{})
	release = make(chan struct{})
	done = make(chan error, 1)
	go func() {
		done <- s.RunShipment(context.Background(), func(shipments repository.ShipmentRepository, _ repository.ShipmentVersionRepository) error {
			if _, err := shipments.GetForUpdate(context.Background(), id); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	select {
	case <-locked:
	case <-time.After(2 * time.Second):
		t.Fatal("no se obtuvo el bloqueo inicial")
	}
	return release, done
}

func appendNext(ctx context.Context, s *memory.Store, id string) error {
	return s.RunShipment(ctx, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		if _, err := shipments.GetForUpdate(ctx, id); err != nil {
			return err
		}
		maxVersion, err := versions.MaxVersion(ctx, id)
		if err != nil {
			return err
		}
		v := &entity.ShipmentVersion{ID: id + "-next", ShipmentID: id, Version: maxVersion + 1, Status: entity.StatusInTransit, CreatedAt: day}
		if err := versions.Append(ctx, v); err != nil {
			return err
		}
		return shipments.SetLatestVersion(ctx, id, &v.ID)
	})
}

func TestStore_BloqueoDeUnEmbarqueNoFrenaAOtro(t *testing.T) {
	s := memory.New()
	seedShipment(t, s, "A")
	seedShipment(t, s, "B")

	release, done := holdShipment(t, s, "A")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, appendNext(ctx, s, "B"), "B no debe esperar al bloqueo de A")

	close(release)
	require.NoError(t, <-done)

	maxVersion, err := s.Versions().MaxVersion(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, 2, maxVersion, "el commit de la tx de A no pisa la versión escrita en B")
}

func TestStore_MismoEmbarqueEsperaAlBloqueo(t *testing.T) {
	s := memory.New()
	seedShipment(t, s, "A")

	release, done := holdShipment(t, s, "A")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, appendNext(ctx, s, "A"), context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, appendNext(context.Background(), s, "A"))

	got, err := s.Shipments().GetByID(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, got.LatestVersionID)
	assert.Equal(t, "A-next", *got.LatestVersionID)
}

func TestStore_UnicidadSeCompruebaEnElCommit(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "A")

	// Sin GetForUpdate dos tx leen el mismo MaxVersion; la segunda en confirmar choca.
	first := make(chan struct{})
	errs := make(chan error, 1)
	go func() {
		errs <- s.RunShipment(ctx, func(_ repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
			<-first
			return versions.Append(ctx, &entity.ShipmentVersion{ID: "A-x", ShipmentID: "A", Version: 2, Status: entity.StatusArrived})
		})
	}()
	require.NoError(t, s.RunShipment(ctx, func(_ repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		return versions.Append(ctx, &entity.ShipmentVersion{ID: "A-y", ShipmentID: "A", Version: 2, Status: entity.StatusClosed})
	}))
	close(first)
	assert.ErrorIs(t, <-errs, domain.ErrConstraintViolation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Restricciones y cascadas
// ──────────────────────────────────────────────────────────────────────────────

func TestVersions_NumeroDuplicadoEsViolacion(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "S1")

	err := s.Versions().Append(ctx, &entity.ShipmentVersion{ID: "X", ShipmentID: "S1", Version: 1})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestShipments_PunteroDebePertenecerAlEmbarque(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "S1")
	seedShipment(t, s, "S2")

	err := s.Shipments().SetLatestVersion(ctx, "S1", strp("S2-v1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShipments_DeleteDesasignaTransacciones(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "S1")
	seedTx(t, s, "T1", strp("S1"), entity.TxTypeSale, day,
		entity.TransactionLine{ID: "L1", Description: "maíz", LineNumber: 1, Quantity: decimal.NewFromInt(1)})
	require.NoError(t, s.Items().Upsert(ctx, &entity.ShipmentItem{ID: "I1", ShipmentID: "S1", TransactionLineID: "L1"}))

	require.NoError(t, s.Shipments().Delete(ctx, "S1"))

	tx, err := s.Transactions().GetByID(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Nil(t, tx.ShipmentID)

	history, err := s.Versions().History(ctx, "S1")
	require.NoError(t, err)
	assert.Empty(t, history)
	items, err := s.Items().ListByShipment(ctx, "S1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTransactions_DeleteEnCascada(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "S1")
	seedTx(t, s, "T1", strp("S1"), entity.TxTypePurchase, day,
		entity.TransactionLine{ID: "L1", Description: "a", LineNumber: 1},
		entity.TransactionLine{ID: "L2", Description: "b", LineNumber: 2})
	require.NoError(t, s.Items().Upsert(ctx, &entity.ShipmentItem{ID: "I1", ShipmentID: "S1", TransactionLineID: "L1"}))
	require.NoError(t, s.Parties().Create(ctx, &entity.Party{ID: "P1", Name: "Naviera Sur"}))
	require.NoError(t, s.Parties().Attach(ctx, &entity.TransactionParty{ID: "TP1", TransactionID: "T1", PartyID: "P1", Role: entity.PartyRoleCarrier}))

	require.NoError(t, s.Transactions().Delete(ctx, "T1"))

	lines, err := s.Lines().ListByTransaction(ctx, "T1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	items, err := s.Items().ListByShipment(ctx, "S1")
	require.NoError(t, err)
	assert.Empty(t, items)
	parties, err := s.Parties().ListByTransaction(ctx, "T1")
	require.NoError(t, err)
	assert.Empty(t, parties)
}

func TestLines_NumeroDeLineaUnicoPorTransaccion(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedTx(t, s, "T1", nil, entity.TxTypePurchase, day,
		entity.TransactionLine{ID: "L1", Description: "a", LineNumber: 1})

	err := s.Lines().Create(ctx, &entity.TransactionLine{ID: "L2", TransactionID: "T1", Description: "b", LineNumber: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	maxNumber, err := s.Lines().MaxLineNumber(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, 1, maxNumber)
}

func TestParties_AttachDuplicadoYDetachInexistente(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedTx(t, s, "T1", nil, entity.TxTypeSale, day)
	require.NoError(t, s.Parties().Create(ctx, &entity.Party{ID: "P1", Name: "Acme"}))
	tp := &entity.TransactionParty{ID: "TP1", TransactionID: "T1", PartyID: "P1", Role: entity.PartyRoleBuyer}
	require.NoError(t, s.Parties().Attach(ctx, tp))

	dup := *tp
	dup.ID = "TP2"
	assert.ErrorIs(t, s.Parties().Attach(ctx, &dup), domain.ErrDuplicate)

	list, err := s.Parties().ListByTransaction(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].PartyName)

	assert.ErrorIs(t, s.Parties().Detach(ctx, "T1", "P1", entity.PartyRoleSeller), domain.ErrNotFound)
	assert.NoError(t, s.Parties().Detach(ctx, "T1", "P1", entity.PartyRoleBuyer))
}

func TestReferences_NombreUnicoYUpsert(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Locations().Create(ctx, &entity.Location{ID: "L1", Name: "Cartagena"}))
	assert.ErrorIs(t, s.Locations().Create(ctx, &entity.Location{ID: "L2", Name: "cartagena"}), domain.ErrDuplicate)

	got, err := s.Locations().UpsertByName(ctx, "Cartagena")
	require.NoError(t, err)
	assert.Equal(t, "L1", got.ID, "upsert debe reutilizar la ubicación existente")

	v, err := s.Vessels().UpsertByName(ctx, "MSC Aurora")
	require.NoError(t, err)
	again, err := s.Vessels().UpsertByName(ctx, "MSC Aurora")
	require.NoError(t, err)
	assert.Equal(t, v.ID, again.ID)
}

func TestUsers_EmailDuplicado(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: "U1", Email: "ana@example.com"}))
	err := s.Users().Create(ctx, &entity.User{ID: "U2", Email: "ANA@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	u, err := s.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "U1", u.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vista y analítica
// ──────────────────────────────────────────────────────────────────────────────

func TestShipments_VistaIncluyeNombres(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Locations().Create(ctx, &entity.Location{ID: "O1", Name: "Shanghai"}))
	require.NoError(t, s.Vessels().Create(ctx, &entity.Vessel{ID: "VS1", Name: "Ever Given"}))
	err := s.RunShipment(ctx, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		require.NoError(t, shipments.Create(ctx, &entity.Shipment{ID: "S1", CreatedAt: day}))
		v := &entity.ShipmentVersion{ID: "V1", ShipmentID: "S1", Version: 1, Status: entity.StatusPlanned, OriginID: strp("O1"), VesselID: strp("VS1")}
		require.NoError(t, versions.Append(ctx, v))
		return shipments.SetLatestVersion(ctx, "S1", &v.ID)
	})
	require.NoError(t, err)

	view, err := s.Shipments().GetView(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, view)
	require.NotNil(t, view.OriginName)
	assert.Equal(t, "Shanghai", *view.OriginName)
	require.NotNil(t, view.VesselName)
	assert.Equal(t, "Ever Given", *view.VesselName)
	assert.Nil(t, view.DestinationName)
}

func TestAnalytics_Agregados(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedShipment(t, s, "S1")
	seedShipment(t, s, "S2")
	d1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	seedTx(t, s, "T1", strp("S1"), entity.TxTypePurchase, d1,
		entity.TransactionLine{ID: "L1", Description: "a", LineNumber: 1, LineValue: decimal.RequireFromString("100.00")})
	seedTx(t, s, "T2", strp("S2"), entity.TxTypeSale, d2,
		entity.TransactionLine{ID: "L2", Description: "b", LineNumber: 1, LineValue: decimal.RequireFromString("250.50")})
	seedTx(t, s, "T3", nil, entity.TxTypePurchase, d2)
	seedTx(t, s, "T4", strp("S1"), entity.TxTypePurchase, out,
		entity.TransactionLine{ID: "L4", Description: "c", LineNumber: 1, LineValue: decimal.RequireFromString("999.00")})

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	repo := s.Analytics()

	kpis, err := repo.GetKPIs(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 3, kpis.TransactionCount, "las transacciones sin líneas cuentan")
	assert.True(t, kpis.TotalValue.Equal(decimal.RequireFromString("350.50")))

	series, err := repo.GetDailySeries(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.True(t, series[0].Day.Equal(d1))
	assert.Equal(t, 2, series[1].TransactionCount)

	byType, err := repo.GetTotalsByType(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, byType, 2)
	assert.Equal(t, entity.TxTypeSale, byType[0].Type)

	top, err := repo.GetTopShipments(ctx, from, to, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "S2", top[0].ShipmentID)
}
