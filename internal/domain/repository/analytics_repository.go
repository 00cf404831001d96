package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// AnalyticsRepository consultas de solo lectura sobre transactions y transaction_lines.
// El rango es [from, to] sobre tx_date.
type AnalyticsRepository interface {
	GetKPIs(ctx context.Context, from, to time.Time) (*entity.AnalyticsKPIs, error)
	// GetDailySeries un punto por día con movimiento, ascendente.
	GetDailySeries(ctx context.Context, from, to time.Time) ([]entity.DailyValue, error)
	GetTotalsByType(ctx context.Context, from, to time.Time) ([]entity.TypeTotal, error)
	// GetTopShipments embarques ordenados por valor descendente.
	GetTopShipments(ctx context.Context, from, to time.Time, limit int) ([]entity.ShipmentTotal, error)
}
