package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	TxTypePurchase  = "PURCHASE"
	TxTypeSale      = "SALE"
	TxTypeFreight   = "FREIGHT"
	TxTypeInsurance = "INSURANCE"
)

// TransactionTypes lista los tipos válidos.
var TransactionTypes = []string{TxTypePurchase, TxTypeSale, TxTypeFreight, TxTypeInsurance}

// ValidTransactionType indica si t es un tipo de transacción conocido.
func ValidTransactionType(t string) bool {
	for _, tt := range TransactionTypes {
		if tt == t {
			return true
		}
	}
	return false
}

// Transaction evento financiero, opcionalmente asociado a un embarque (ShipmentID nil = sin asignar).
type Transaction struct {
	ID         string
	ShipmentID *string
	Type       string
	TxDate     time.Time
	Reference  *string
	TotalValue decimal.Decimal // suma de line_value de sus líneas
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TransactionLine línea con precio. LineValue = round(Quantity * UnitPrice, 2).
type TransactionLine struct {
	ID            string
	TransactionID string
	ProductID     *string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	LineValue     decimal.Decimal
	LineNumber    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
