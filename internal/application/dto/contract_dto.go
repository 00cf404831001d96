package dto

import "time"

// UploadContractRequest carga en JSON: pdf_base64 acepta base64 crudo o data URL.
type UploadContractRequest struct {
	PDFBase64 string `json:"pdf_base64"`
	Filename  string `json:"filename,omitempty"`
}

// ContractResponse contrato con metadatos del blob.
type ContractResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	BlobID        string    `json:"blob_id"`
	Filename      string    `json:"filename"`
	Mime          string    `json:"mime"`
	Size          int64     `json:"size"`
	Hash          string    `json:"hash"`
	Disk          string    `json:"disk"`
	CreatedAt     time.Time `json:"created_at"`
}

// ContractIndexResponse contratos y transacciones que aún no tienen contrato.
type ContractIndexResponse struct {
	Contracts           []ContractResponse    `json:"contracts"`
	TransactionsWithout []TransactionResponse `json:"transactions_without_contract"`
	Page                PageResponse          `json:"page"`
}
