package dto

import "time"

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// LocationResponse ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateVesselRequest entrada para crear un buque.
type CreateVesselRequest struct {
	Name string  `json:"name" validate:"required,max=255"`
	IMO  *string `json:"imo,omitempty"`
}

// VesselResponse buque.
type VesselResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IMO       *string   `json:"imo"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePartyRequest entrada para crear una parte.
type CreatePartyRequest struct {
	Name string  `json:"name" validate:"required,max=255"`
	Type *string `json:"type,omitempty" validate:"omitempty,oneof=COMPANY INDIVIDUAL"`
}

// PartyResponse parte.
type PartyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      *string   `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProductRequest entrada para crear un producto del catálogo.
type CreateProductRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	SKU          string  `json:"sku" validate:"required,max=64" example:"CU-CATH-01"`
	MaterialCode *string `json:"material_code,omitempty" validate:"omitempty,max=64"`
}

// ProductResponse producto.
type ProductResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	MaterialCode *string   `json:"material_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListResponse listado genérico paginado.
type ListResponse[T any] struct {
	Items []T          `json:"items"`
	Page  PageResponse `json:"page"`
}
