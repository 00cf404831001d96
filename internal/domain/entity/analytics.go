package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsKPIs totales del período.
type AnalyticsKPIs struct {
	TotalValue       decimal.Decimal
	TransactionCount int
	ContractCount    int
}

// DailyValue punto de la serie diaria.
type DailyValue struct {
	Day              time.Time
	Value            decimal.Decimal
	TransactionCount int
}

// TypeTotal total por tipo de transacción.
type TypeTotal struct {
	Type             string
	Value            decimal.Decimal
	TransactionCount int
}

// ShipmentTotal valor acumulado de un embarque.
type ShipmentTotal struct {
	ShipmentID string
	Value      decimal.Decimal
}
