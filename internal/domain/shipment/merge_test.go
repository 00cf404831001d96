package shipment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
)

func strp(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func priorVersion() *entity.ShipmentVersion {
	sail := date(2025, 3, 1)
	eta := date(2025, 3, 20)
	return &entity.ShipmentVersion{
		ID:               "V1",
		ShipmentID:       "S1",
		Version:          1,
		Status:           entity.StatusPlanned,
		CargoSailingDate: &sail,
		ETA:              &eta,
		VesselID:         strp("VS1"),
		OriginID:         strp("O1"),
		DestinationID:    strp("D1"),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Merge
// ──────────────────────────────────────────────────────────────────────────────

func TestMerge_PrimeraVersionUsaDefectos(t *testing.T) {
	attrs := shipment.Merge(nil, shipment.Patch{
		OriginID:      shipment.Some("O1"),
		DestinationID: shipment.Some("D1"),
	})

	assert.Equal(t, entity.StatusPlanned, attrs.Status, "status por defecto debe ser PLANNED")
	require.NotNil(t, attrs.OriginID)
	assert.Equal(t, "O1", *attrs.OriginID)
	assert.Nil(t, attrs.ETA)
	assert.Nil(t, attrs.VesselID)
}

func TestMerge_CamposOmitidosSeCopianDeLaVersionPrevia(t *testing.T) {
	prev := priorVersion()
	attrs := shipment.Merge(prev, shipment.Patch{Status: shipment.Some(entity.StatusInTransit)})

	assert.Equal(t, entity.StatusInTransit, attrs.Status)
	assert.Equal(t, prev.CargoSailingDate, attrs.CargoSailingDate)
	assert.Equal(t, prev.ETA, attrs.ETA)
	assert.Equal(t, prev.VesselID, attrs.VesselID)
	assert.Equal(t, prev.OriginID, attrs.OriginID)
	assert.Equal(t, prev.DestinationID, attrs.DestinationID)
}

func TestMerge_NullExplicitoLimpiaElCampo(t *testing.T) {
	attrs := shipment.Merge(priorVersion(), shipment.Patch{
		VesselID: shipment.Null[string](),
		ETA:      shipment.Null[time.Time](),
	})

	assert.Nil(t, attrs.VesselID, "null explícito debe limpiar el buque")
	assert.Nil(t, attrs.ETA, "null explícito debe limpiar la ETA")
	require.NotNil(t, attrs.OriginID)
	assert.Equal(t, "O1", *attrs.OriginID, "origen no enviado se conserva")
}

func TestMerge_StatusNullConservaElPrevio(t *testing.T) {
	attrs := shipment.Merge(priorVersion(), shipment.Patch{Status: shipment.Null[string]()})
	assert.Equal(t, entity.StatusPlanned, attrs.Status)
}

func TestMerge_TransicionesLibres(t *testing.T) {
	prev := priorVersion()
	prev.Status = entity.StatusClosed
	attrs := shipment.Merge(prev, shipment.Patch{Status: shipment.Some(entity.StatusPlanned)})
	assert.Equal(t, entity.StatusPlanned, attrs.Status, "no hay restricción de transición")
}

func TestMerge_NoValidaOrigenIgualDestino(t *testing.T) {
	attrs := shipment.Merge(priorVersion(), shipment.Patch{DestinationID: shipment.Some("O1")})
	assert.Equal(t, *attrs.OriginID, *attrs.DestinationID, "la fusión persiste lo que recibe")
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func TestNextVersion(t *testing.T) {
	assert.Equal(t, 1, shipment.NextVersion(0))
	assert.Equal(t, 8, shipment.NextVersion(7))
}

func TestLatest(t *testing.T) {
	assert.Nil(t, shipment.Latest(nil))
	vs := []*entity.ShipmentVersion{{Version: 2}, {Version: 5}, {Version: 3}}
	assert.Equal(t, 5, shipment.Latest(vs).Version)
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, shipment.Patch{}.Empty())
	assert.False(t, shipment.Patch{ETA: shipment.Null[time.Time]()}.Empty())
}

func TestProject(t *testing.T) {
	s := &entity.Shipment{ID: "S1", LatestVersionID: strp("V1")}
	v := shipment.Project(s, priorVersion())
	assert.Equal(t, "S1", v.ShipmentID)
	assert.Equal(t, 1, v.Version)
	assert.Equal(t, entity.StatusPlanned, v.Status)

	empty := shipment.Project(&entity.Shipment{ID: "S2"}, nil)
	assert.Equal(t, 0, empty.Version)
	assert.Equal(t, "", empty.Status)
}
