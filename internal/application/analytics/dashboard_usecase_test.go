package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargotrack-api/internal/application/analytics"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/cache"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/memory"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// addTx transacción con una línea de valor value fechada daysAgo días atrás.
func addTx(t *testing.T, s *memory.Store, shipmentID *string, txType string, daysAgo int, value string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	tx := &entity.Transaction{
		ID:         ulid.New(),
		ShipmentID: shipmentID,
		Type:       txType,
		TxDate:     today().AddDate(0, 0, -daysAgo),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Transactions().Create(ctx, tx))
	v := decimal.RequireFromString(value)
	require.NoError(t, s.Lines().Create(ctx, &entity.TransactionLine{
		ID:            ulid.New(),
		TransactionID: tx.ID,
		Description:   "línea",
		Quantity:      decimal.NewFromInt(1),
		UnitPrice:     v,
		LineValue:     v,
		LineNumber:    1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func TestDashboard_Agregados(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	a, b := ulid.New(), ulid.New()
	require.NoError(t, s.Shipments().Create(ctx, &entity.Shipment{ID: a}))
	require.NoError(t, s.Shipments().Create(ctx, &entity.Shipment{ID: b}))

	addTx(t, s, &a, entity.TxTypePurchase, 0, "100.00")
	addTx(t, s, &a, entity.TxTypeSale, 1, "50.50")
	addTx(t, s, &b, entity.TxTypePurchase, 2, "10.00")
	addTx(t, s, nil, entity.TxTypeFreight, 40, "999.00")

	uc := analytics.NewDashboardUseCase(s.Analytics(), nil, 0, logger.Nop())
	out, err := uc.GetDashboard(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, analytics.DefaultDays, out.Days)
	assert.Equal(t, today().Format("2006-01-02"), out.To)
	assert.Equal(t, "160.50", out.KPIs.TotalValue, "la transacción de hace 40 días queda fuera")
	assert.Equal(t, 3, out.KPIs.TransactionCount)
	assert.Equal(t, "53.50", out.KPIs.AvgValuePerTx)

	require.Len(t, out.TopShipments, 2)
	assert.Equal(t, a, out.TopShipments[0].ShipmentID)
	assert.Equal(t, "150.50", out.TopShipments[0].Value)

	byType := map[string]string{}
	for _, tt := range out.ByType {
		byType[tt.Type] = tt.Value
	}
	assert.Equal(t, "110.00", byType[entity.TxTypePurchase])
	assert.Equal(t, "50.50", byType[entity.TxTypeSale])
	assert.NotContains(t, byType, entity.TxTypeFreight)

	wide, err := uc.GetDashboard(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, "1159.50", wide.KPIs.TotalValue)
}

func TestDashboard_RangoDeDias(t *testing.T) {
	uc := analytics.NewDashboardUseCase(memory.New().Analytics(), nil, 0, logger.Nop())
	for _, days := range []int{-1, analytics.MaxDays + 1} {
		_, err := uc.GetDashboard(context.Background(), days)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "days=%d", days)
	}
	out, err := uc.GetDashboard(context.Background(), analytics.MaxDays)
	require.NoError(t, err)
	assert.Equal(t, "0.00", out.KPIs.TotalValue)
	assert.Equal(t, "0.00", out.KPIs.AvgValuePerTx)
}

func TestDashboard_UsaCache(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	addTx(t, s, nil, entity.TxTypeSale, 0, "10.00")

	uc := analytics.NewDashboardUseCase(s.Analytics(), cache.NewMemoryCache(), time.Minute, logger.Nop())
	first, err := uc.GetDashboard(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "10.00", first.KPIs.TotalValue)

	addTx(t, s, nil, entity.TxTypeSale, 0, "5.00")
	cached, err := uc.GetDashboard(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "10.00", cached.KPIs.TotalValue, "segunda lectura desde caché")

	other, err := uc.GetDashboard(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "15.00", other.KPIs.TotalValue, "otra ventana, otra clave")
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis caído")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis caído")
}

func TestDashboard_CacheCaidaNoFalla(t *testing.T) {
	s := memory.New()
	addTx(t, s, nil, entity.TxTypeInsurance, 0, "3.00")
	uc := analytics.NewDashboardUseCase(s.Analytics(), brokenCache{}, time.Minute, logger.Nop())

	out, err := uc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "3.00", out.KPIs.TotalValue)
}
