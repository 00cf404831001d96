// Package analytics contiene el dashboard de analítica sobre transacciones y líneas.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

const (
	// DefaultDays ventana por defecto del dashboard.
	DefaultDays = 30
	// MaxDays ventana máxima aceptada.
	MaxDays         = 365
	topShipments    = 10
	cacheKeyPattern = "analytics:dashboard:%d:%s"
)

// Cache caché de respuestas serializadas. Get devuelve ok=false si no hay entrada.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DashboardUseCase KPIs, serie diaria, totales por tipo y top de embarques.
//
// Fuente de datos: AnalyticsRepository (consultas read-only), cacheado por ventana y día.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	cache         Cache
	ttl           time.Duration
	log           *logger.Logger
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, cache Cache, ttl time.Duration, log *logger.Logger) *DashboardUseCase {
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		cache:         cache,
		ttl:           ttl,
		log:           log.Component("analytics"),
		now:           time.Now,
	}
}

// GetDashboard calcula el dashboard de los últimos days días (0 = DefaultDays).
//
// Cuatro consultas en paralelo:
//  1. GetKPIs
//  2. GetDailySeries
//  3. GetTotalsByType
//  4. GetTopShipments (top 10)
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, days int) (*dto.DashboardResponse, error) {
	if days == 0 {
		days = DefaultDays
	}
	if days < 1 || days > MaxDays {
		return nil, domain.NewValidationError("days", fmt.Sprintf("debe estar entre 1 y %d", MaxDays))
	}

	now := uc.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	from := to.AddDate(0, 0, -days).Add(time.Nanosecond)

	key := fmt.Sprintf(cacheKeyPattern, days, now.Format(dto.DateLayout))
	if cached := uc.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	var (
		kpis   *entity.AnalyticsKPIs
		series []entity.DailyValue
		byType []entity.TypeTotal
		top    []entity.ShipmentTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kpis, err = uc.analyticsRepo.GetKPIs(gctx, from, to)
		if err != nil {
			return fmt.Errorf("dashboard: kpis: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		series, err = uc.analyticsRepo.GetDailySeries(gctx, from, to)
		if err != nil {
			return fmt.Errorf("dashboard: serie diaria: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		byType, err = uc.analyticsRepo.GetTotalsByType(gctx, from, to)
		if err != nil {
			return fmt.Errorf("dashboard: por tipo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		top, err = uc.analyticsRepo.GetTopShipments(gctx, from, to, topShipments)
		if err != nil {
			return fmt.Errorf("dashboard: top embarques: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := buildResponse(days, from, to, kpis, series, byType, top)
	uc.toCache(ctx, key, out)
	return out, nil
}

func buildResponse(
	days int,
	from, to time.Time,
	kpis *entity.AnalyticsKPIs,
	series []entity.DailyValue,
	byType []entity.TypeTotal,
	top []entity.ShipmentTotal,
) *dto.DashboardResponse {
	avg := decimal.Zero
	if kpis.TransactionCount > 0 {
		avg = kpis.TotalValue.Div(decimal.NewFromInt(int64(kpis.TransactionCount))).Round(2)
	}
	out := &dto.DashboardResponse{
		Days: days,
		From: from.Format(dto.DateLayout),
		To:   to.Format(dto.DateLayout),
		KPIs: dto.DashboardKPIs{
			TotalValue:       kpis.TotalValue.StringFixed(2),
			TransactionCount: kpis.TransactionCount,
			ContractCount:    kpis.ContractCount,
			AvgValuePerTx:    avg.StringFixed(2),
		},
		TimeSeries:   make([]dto.DashboardPoint, 0, len(series)),
		ByType:       make([]dto.DashboardTypeTotal, 0, len(byType)),
		TopShipments: make([]dto.DashboardShipment, 0, len(top)),
	}
	for _, p := range series {
		out.TimeSeries = append(out.TimeSeries, dto.DashboardPoint{
			Date:             p.Day.Format(dto.DateLayout),
			Value:            p.Value.StringFixed(2),
			TransactionCount: p.TransactionCount,
		})
	}
	for _, t := range byType {
		out.ByType = append(out.ByType, dto.DashboardTypeTotal{
			Type:             t.Type,
			Value:            t.Value.StringFixed(2),
			TransactionCount: t.TransactionCount,
		})
	}
	for _, s := range top {
		out.TopShipments = append(out.TopShipments, dto.DashboardShipment{
			ShipmentID: s.ShipmentID,
			Value:      s.Value.StringFixed(2),
		})
	}
	return out
}

// fromCache un fallo de caché se registra y se calcula de nuevo.
func (uc *DashboardUseCase) fromCache(ctx context.Context, key string) *dto.DashboardResponse {
	if uc.cache == nil {
		return nil
	}
	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("leer caché de analítica")
		return nil
	}
	if !ok {
		return nil
	}
	var out dto.DashboardResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("entrada de caché corrupta")
		return nil
	}
	return &out
}

func (uc *DashboardUseCase) toCache(ctx context.Context, key string, out *dto.DashboardResponse) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escribir caché de analítica")
	}
}
