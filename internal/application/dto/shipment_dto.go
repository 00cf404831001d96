package dto

import "time"

// ShipmentWriteRequest atributos versionados; los campos ausentes se conservan de la versión previa,
// null explícito limpia el valor. Se usa para crear (POST) y para escribir versión (PATCH).
type ShipmentWriteRequest struct {
	Status           Optional[string] `json:"status" swaggertype:"string" enums:"PLANNED,IN_TRANSIT,ARRIVED,CLOSED"`
	CargoSailingDate Optional[Date]   `json:"cargo_sailing_date" swaggertype:"string" example:"2025-03-01"`
	ETA              Optional[Date]   `json:"eta" swaggertype:"string" example:"2025-03-20"`
	VesselID         Optional[string] `json:"vessel_id" swaggertype:"string"`
	OriginID         Optional[string] `json:"origin_id" swaggertype:"string"`
	DestinationID    Optional[string] `json:"destination_id" swaggertype:"string"`
	Reason           *string          `json:"reason,omitempty"`
}

// WriteVersionResponse resultado de escribir una versión.
type WriteVersionResponse struct {
	ShipmentID string `json:"shipment_id"`
	VersionID  string `json:"version_id"`
	Version    int    `json:"version"`
	Status     string `json:"status"`
}

// ShipmentResponse vista actual del embarque.
type ShipmentResponse struct {
	ID               string    `json:"id"`
	LatestVersionID  *string   `json:"latest_version_id"`
	Version          int       `json:"version"`
	Status           string    `json:"status"`
	CargoSailingDate *string   `json:"cargo_sailing_date"`
	ETA              *string   `json:"eta"`
	VesselID         *string   `json:"vessel_id"`
	VesselName       *string   `json:"vessel_name"`
	OriginID         *string   `json:"origin_id"`
	OriginName       *string   `json:"origin_name"`
	DestinationID    *string   `json:"destination_id"`
	DestinationName  *string   `json:"destination_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ShipmentVersionResponse fila del historial.
type ShipmentVersionResponse struct {
	ID               string    `json:"id"`
	ShipmentID       string    `json:"shipment_id"`
	Version          int       `json:"version"`
	Status           string    `json:"status"`
	CargoSailingDate *string   `json:"cargo_sailing_date"`
	ETA              *string   `json:"eta"`
	VesselID         *string   `json:"vessel_id"`
	OriginID         *string   `json:"origin_id"`
	DestinationID    *string   `json:"destination_id"`
	ActorID          *string   `json:"actor_id"`
	Reason           *string   `json:"reason"`
	CreatedAt        time.Time `json:"created_at"`
}

// ShipmentItemResponse ítem espejo.
type ShipmentItemResponse struct {
	ID                string    `json:"id"`
	ShipmentID        string    `json:"shipment_id"`
	TransactionLineID string    `json:"transaction_line_id"`
	Description       string    `json:"description"`
	Quantity          string    `json:"quantity"`
	UnitPrice         string    `json:"unit_price"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ShipmentDetailResponse vista actual + historial + ítems.
type ShipmentDetailResponse struct {
	Shipment ShipmentResponse          `json:"shipment"`
	History  []ShipmentVersionResponse `json:"history"`
	Items    []ShipmentItemResponse    `json:"items"`
}

// ShipmentListResponse listado paginado.
type ShipmentListResponse struct {
	Items []ShipmentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
