package transaction

import (
	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// errLineValueProvided line_value lo calcula el servidor; el cliente no puede enviarlo.
var errLineValueProvided = domain.NewValidationError("line_value", "se calcula automáticamente y no se acepta")

// ToLineInput traduce la petición de alta de línea.
func ToLineInput(in dto.CreateLineRequest) (LineInput, error) {
	if in.LineValue != nil {
		return LineInput{}, errLineValueProvided
	}
	return LineInput{
		ProductID:   in.ProductID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		LineNumber:  in.LineNumber,
	}, nil
}

// ToLinePatch traduce la petición de cambio de línea.
func ToLinePatch(in dto.UpdateLineRequest) (LinePatch, error) {
	if in.LineValue != nil {
		return LinePatch{}, errLineValueProvided
	}
	return LinePatch{
		ProductID:   in.ProductID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		LineNumber:  in.LineNumber,
	}, nil
}

// ToTransactionResponse cabecera a DTO.
func ToTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:         t.ID,
		ShipmentID: t.ShipmentID,
		Type:       t.Type,
		TxDate:     t.TxDate.Format(dto.DateLayout),
		Reference:  t.Reference,
		TotalValue: t.TotalValue.StringFixed(2),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// ToLineResponse línea a DTO.
func ToLineResponse(l *entity.TransactionLine) dto.TransactionLineResponse {
	return dto.TransactionLineResponse{
		ID:            l.ID,
		TransactionID: l.TransactionID,
		ProductID:     l.ProductID,
		LineNumber:    l.LineNumber,
		Description:   l.Description,
		Quantity:      l.Quantity.String(),
		UnitPrice:     l.UnitPrice.StringFixed(2),
		LineValue:     l.LineValue.StringFixed(2),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// ToContractResponse contrato con su blob a DTO.
func ToContractResponse(c *entity.Contract) dto.ContractResponse {
	out := dto.ContractResponse{
		ID:            c.ID,
		TransactionID: c.TransactionID,
		BlobID:        c.BlobID,
		CreatedAt:     c.CreatedAt,
	}
	if c.Blob != nil {
		out.Filename = c.Blob.Filename
		out.Mime = c.Blob.Mime
		out.Size = c.Blob.Size
		out.Hash = c.Blob.Hash
		out.Disk = c.Blob.Disk
	}
	return out
}

// ToTransactionResponses lista de cabeceras a DTO.
func ToTransactionResponses(list []*entity.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, ToTransactionResponse(t))
	}
	return out
}
