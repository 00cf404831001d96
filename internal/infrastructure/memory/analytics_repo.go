package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados calculados sobre el estado en memoria.
// El valor de una transacción es la suma de line_value de sus líneas (0 si no tiene).
type AnalyticsRepo struct{ db db }

type txValue struct {
	tx    entity.Transaction
	value decimal.Decimal
}

func (r *AnalyticsRepo) inRange(ctx context.Context, from, to time.Time, fn func(st *state, rows []txValue)) error {
	return r.db.read(ctx, func(st *state) error {
		values := map[string]decimal.Decimal{}
		for _, l := range st.lines {
			values[l.TransactionID] = values[l.TransactionID].Add(l.LineValue)
		}
		var rows []txValue
		for _, t := range st.txs {
			if t.TxDate.Before(from) || t.TxDate.After(to) {
				continue
			}
			rows = append(rows, txValue{tx: t, value: values[t.ID]})
		}
		fn(st, rows)
		return nil
	})
}

func (r *AnalyticsRepo) GetKPIs(ctx context.Context, from, to time.Time) (*entity.AnalyticsKPIs, error) {
	out := &entity.AnalyticsKPIs{TotalValue: decimal.Zero}
	err := r.inRange(ctx, from, to, func(st *state, rows []txValue) {
		ids := make(map[string]bool, len(rows))
		for _, row := range rows {
			out.TotalValue = out.TotalValue.Add(row.value)
			out.TransactionCount++
			ids[row.tx.ID] = true
		}
		for _, c := range st.contracts {
			if ids[c.TransactionID] {
				out.ContractCount++
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AnalyticsRepo) GetDailySeries(ctx context.Context, from, to time.Time) ([]entity.DailyValue, error) {
	byDay := map[time.Time]*entity.DailyValue{}
	err := r.inRange(ctx, from, to, func(_ *state, rows []txValue) {
		for _, row := range rows {
			d := row.tx.TxDate.UTC()
			day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			p, ok := byDay[day]
			if !ok {
				p = &entity.DailyValue{Day: day, Value: decimal.Zero}
				byDay[day] = p
			}
			p.Value = p.Value.Add(row.value)
			p.TransactionCount++
		}
	})
	if err != nil {
		return nil, err
	}
	out := make([]entity.DailyValue, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *AnalyticsRepo) GetTotalsByType(ctx context.Context, from, to time.Time) ([]entity.TypeTotal, error) {
	byType := map[string]*entity.TypeTotal{}
	err := r.inRange(ctx, from, to, func(_ *state, rows []txValue) {
		for _, row := range rows {
			t, ok := byType[row.tx.Type]
			if !ok {
				t = &entity.TypeTotal{Type: row.tx.Type, Value: decimal.Zero}
				byType[row.tx.Type] = t
			}
			t.Value = t.Value.Add(row.value)
			t.TransactionCount++
		}
	})
	if err != nil {
		return nil, err
	}
	out := make([]entity.TypeTotal, 0, len(byType))
	for _, t := range byType {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (r *AnalyticsRepo) GetTopShipments(ctx context.Context, from, to time.Time, limit int) ([]entity.ShipmentTotal, error) {
	byShipment := map[string]decimal.Decimal{}
	err := r.inRange(ctx, from, to, func(_ *state, rows []txValue) {
		for _, row := range rows {
			if row.tx.ShipmentID == nil {
				continue
			}
			id := *row.tx.ShipmentID
			byShipment[id] = byShipment[id].Add(row.value)
		}
	})
	if err != nil {
		return nil, err
	}
	out := make([]entity.ShipmentTotal, 0, len(byShipment))
	for id, v := range byShipment {
		out = append(out, entity.ShipmentTotal{ShipmentID: id, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].ShipmentID < out[j].ShipmentID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
