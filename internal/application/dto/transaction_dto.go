package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest entrada para crear una transacción.
type CreateTransactionRequest struct {
	ShipmentID *string `json:"shipment_id,omitempty"`
	Type       string  `json:"type" validate:"required,oneof=PURCHASE SALE FREIGHT INSURANCE"`
	TxDate     string  `json:"tx_date" validate:"required" example:"2025-03-01"`
	Reference  *string `json:"reference,omitempty"`
	// Lines líneas iniciales, creadas en la misma transacción de BD que la cabecera.
	Lines []CreateLineRequest `json:"lines,omitempty"`
}

// UpdateTransactionRequest actualización parcial de cabecera.
type UpdateTransactionRequest struct {
	Type      *string          `json:"type,omitempty"`
	TxDate    *string          `json:"tx_date,omitempty"`
	Reference Optional[string] `json:"reference" swaggertype:"string"`
}

// AssignShipmentRequest asigna (o desasigna con null) el embarque de una transacción.
type AssignShipmentRequest struct {
	ShipmentID *string `json:"shipment_id"`
}

// CreateLineRequest entrada para crear una línea. line_value nunca se acepta del cliente.
type CreateLineRequest struct {
	ProductID   *string         `json:"product_id,omitempty"`
	Description string          `json:"description" validate:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string" example:"2"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string" example:"100.00"`
	LineNumber  *int            `json:"line_number,omitempty"`
	LineValue   any             `json:"line_value,omitempty" swaggerignore:"true"`
}

// UpdateLineRequest actualización parcial de una línea.
type UpdateLineRequest struct {
	ProductID   *string          `json:"product_id,omitempty"`
	Description *string          `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty" swaggertype:"string"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string"`
	LineNumber  *int             `json:"line_number,omitempty"`
	LineValue   any              `json:"line_value,omitempty" swaggerignore:"true"`
}

// AttachPartyRequest vincula una parte con un rol.
type AttachPartyRequest struct {
	PartyID string `json:"party_id" validate:"required"`
	Role    string `json:"role" validate:"required,oneof=BUYER SELLER CARRIER INSURER BROKER"`
}

// TransactionResponse cabecera.
type TransactionResponse struct {
	ID         string    `json:"id"`
	ShipmentID *string   `json:"shipment_id"`
	Type       string    `json:"type"`
	TxDate     string    `json:"tx_date"`
	Reference  *string   `json:"reference"`
	TotalValue string    `json:"total_value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Lines []TransactionLineResponse `json:"lines,omitempty"`
}

// TransactionLineResponse línea.
type TransactionLineResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	ProductID     *string   `json:"product_id"`
	LineNumber    int       `json:"line_number"`
	Description   string    `json:"description"`
	Quantity      string    `json:"quantity"`
	UnitPrice     string    `json:"unit_price"`
	LineValue     string    `json:"line_value"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TransactionPartyResponse parte vinculada.
type TransactionPartyResponse struct {
	PartyID   string `json:"party_id"`
	PartyName string `json:"party_name"`
	Role      string `json:"role"`
}

// TransactionDetailResponse cabecera + líneas + partes + contratos.
type TransactionDetailResponse struct {
	Transaction TransactionResponse        `json:"transaction"`
	Lines       []TransactionLineResponse  `json:"lines"`
	Parties     []TransactionPartyResponse `json:"parties"`
	Contracts   []ContractResponse         `json:"contracts"`
}

// TransactionListResponse listado.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
