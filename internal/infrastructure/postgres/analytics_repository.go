package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
// El valor de una transacción es SUM(line_value) de sus líneas (LEFT JOIN: sin líneas vale 0).
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// txValues CTE con el valor por transacción dentro del rango [$1, $2] (fechas).
const txValues = `
	WITH tx AS (
	    SELECT t.id, t.type, t.tx_date, t.shipment_id,
	           COALESCE(SUM(l.line_value), 0) AS value
	    FROM transactions t
	    LEFT JOIN transaction_lines l ON l.transaction_id = t.id
	    WHERE t.tx_date BETWEEN $1::date AND $2::date
	    GROUP BY t.id, t.type, t.tx_date, t.shipment_id
	)`

func dateArgs(from, to time.Time) (string, string) {
	return from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02")
}

// GetKPIs valor total, cantidad de transacciones y contratos del período.
func (r *AnalyticsRepo) GetKPIs(ctx context.Context, from, to time.Time) (*entity.AnalyticsKPIs, error) {
	query := txValues + `
	SELECT COALESCE(SUM(tx.value), 0),
	       COUNT(*),
	       (SELECT COUNT(*) FROM contracts c JOIN tx t2 ON t2.id = c.transaction_id)
	FROM tx`
	f, t := dateArgs(from, to)
	var k entity.AnalyticsKPIs
	if err := r.q.QueryRow(ctx, query, f, t).Scan(&k.TotalValue, &k.TransactionCount, &k.ContractCount); err != nil {
		return nil, fmt.Errorf("analytics.GetKPIs: %w", err)
	}
	return &k, nil
}

// GetDailySeries un punto por día con transacciones.
func (r *AnalyticsRepo) GetDailySeries(ctx context.Context, from, to time.Time) ([]entity.DailyValue, error) {
	query := txValues + `
	SELECT tx_date, SUM(value), COUNT(*)
	FROM tx
	GROUP BY tx_date
	ORDER BY tx_date`
	f, t := dateArgs(from, to)
	rows, err := r.q.Query(ctx, query, f, t)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetDailySeries: %w", err)
	}
	defer rows.Close()
	var out []entity.DailyValue
	for rows.Next() {
		var p entity.DailyValue
		if err := rows.Scan(&p.Day, &p.Value, &p.TransactionCount); err != nil {
			return nil, fmt.Errorf("analytics.GetDailySeries scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetTotalsByType valor por tipo de transacción, mayor primero.
func (r *AnalyticsRepo) GetTotalsByType(ctx context.Context, from, to time.Time) ([]entity.TypeTotal, error) {
	query := txValues + `
	SELECT type, SUM(value) AS total, COUNT(*)
	FROM tx
	GROUP BY type
	ORDER BY total DESC, type`
	f, t := dateArgs(from, to)
	rows, err := r.q.Query(ctx, query, f, t)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTotalsByType: %w", err)
	}
	defer rows.Close()
	var out []entity.TypeTotal
	for rows.Next() {
		var tt entity.TypeTotal
		if err := rows.Scan(&tt.Type, &tt.Value, &tt.TransactionCount); err != nil {
			return nil, fmt.Errorf("analytics.GetTotalsByType scan: %w", err)
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

// GetTopShipments embarques con mayor valor en el período.
func (r *AnalyticsRepo) GetTopShipments(ctx context.Context, from, to time.Time, limit int) ([]entity.ShipmentTotal, error) {
	query := txValues + `
	SELECT shipment_id, SUM(value) AS total
	FROM tx
	WHERE shipment_id IS NOT NULL
	GROUP BY shipment_id
	ORDER BY total DESC, shipment_id
	LIMIT $3`
	f, t := dateArgs(from, to)
	rows, err := r.q.Query(ctx, query, f, t, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopShipments: %w", err)
	}
	defer rows.Close()
	var out []entity.ShipmentTotal
	for rows.Next() {
		var s entity.ShipmentTotal
		if err := rows.Scan(&s.ShipmentID, &s.Value); err != nil {
			return nil, fmt.Errorf("analytics.GetTopShipments scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
