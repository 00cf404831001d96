package entity

import "time"

// Location puerto u origen/destino; nombre único.
type Location struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vessel buque; nombre único, IMO opcional.
type Vessel struct {
	ID        string
	Name      string
	IMO       *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product catálogo de mercancías; SKU único. Las líneas pueden referenciarlo.
type Product struct {
	ID           string
	Name         string
	SKU          string
	MaterialCode *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
