package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del embarque. Cualquier estado puede seguir a cualquier otro.
const (
	StatusPlanned   = "PLANNED"
	StatusInTransit = "IN_TRANSIT"
	StatusArrived   = "ARRIVED"
	StatusClosed    = "CLOSED"
)

// ShipmentStatuses lista los estados en orden de ciclo de vida.
var ShipmentStatuses = []string{StatusPlanned, StatusInTransit, StatusArrived, StatusClosed}

// ValidStatus indica si s pertenece al enumerado de estados.
func ValidStatus(s string) bool {
	for _, st := range ShipmentStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Shipment identidad del embarque. Los atributos versionados viven en ShipmentVersion;
// LatestVersionID apunta a la última versión (nil solo antes de la primera).
type Shipment struct {
	ID              string
	LatestVersionID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ShipmentVersion snapshot inmutable de los atributos del embarque.
type ShipmentVersion struct {
	ID               string
	ShipmentID       string
	Version          int
	Status           string
	CargoSailingDate *time.Time
	ETA              *time.Time
	VesselID         *string
	OriginID         *string
	DestinationID    *string
	ActorID          *string // nil en escrituras de sistema o seed
	Reason           *string
	CreatedAt        time.Time
}

// ShipmentItem espejo de una línea de transacción en el embarque, clave (ShipmentID, TransactionLineID).
type ShipmentItem struct {
	ID                string
	ShipmentID        string
	TransactionLineID string
	Description       string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
