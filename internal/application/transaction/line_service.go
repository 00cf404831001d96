package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/ledger"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

// MaxDescriptionLength longitud máxima de la descripción de una línea.
const MaxDescriptionLength = 255

// LineInput datos de una línea nueva. LineNumber nil = siguiente número libre.
type LineInput struct {
	ProductID   *string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineNumber  *int
}

// LinePatch cambios parciales de una línea.
type LinePatch struct {
	ProductID   *string
	Description *string
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
	LineNumber  *int
}

// TransactionLineService escribe líneas de transacción: numera, calcula line_value,
// recalcula el total de la transacción e invoca explícitamente al espejo de ítems.
// Todo ocurre con la fila de la transacción bloqueada.
type TransactionLineService struct {
	txRunner LedgerTxRunner
	products repository.ProductRepository
	mirror   *ShipmentItemMirror
	now      func() time.Time
}

// NewTransactionLineService construye el servicio.
func NewTransactionLineService(txRunner LedgerTxRunner, products repository.ProductRepository, mirror *ShipmentItemMirror) *TransactionLineService {
	return &TransactionLineService{txRunner: txRunner, products: products, mirror: mirror, now: time.Now}
}

// Create agrega una línea a la transacción.
func (s *TransactionLineService) Create(ctx context.Context, transactionID string, in LineInput) (*entity.TransactionLine, error) {
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}

	var out *entity.TransactionLine
	err := s.txRunner.RunLedger(ctx, func(txs repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		tx, err := txs.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		line, err := s.addLine(ctx, lines, items, tx, in)
		if err != nil {
			return err
		}
		if err := s.recomputeTotal(ctx, txs, lines, tx); err != nil {
			return err
		}
		out = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWithTransaction inserta la cabecera t y sus líneas iniciales en una sola transacción de BD.
// Un error en cualquier línea descarta también la cabecera.
func (s *TransactionLineService) CreateWithTransaction(ctx context.Context, t *entity.Transaction, inputs []LineInput) ([]*entity.TransactionLine, error) {
	for i, in := range inputs {
		if err := s.checkInput(ctx, in); err != nil {
			return nil, lineFieldError(i, err)
		}
	}

	var out []*entity.TransactionLine
	err := s.txRunner.RunLedger(ctx, func(txs repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		if err := txs.Create(ctx, t); err != nil {
			return err
		}
		tx, err := txs.GetForUpdate(ctx, t.ID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		out = make([]*entity.TransactionLine, 0, len(inputs))
		for i, in := range inputs {
			line, err := s.addLine(ctx, lines, items, tx, in)
			if err != nil {
				return lineFieldError(i, err)
			}
			out = append(out, line)
		}
		if err := s.recomputeTotal(ctx, txs, lines, tx); err != nil {
			return err
		}
		*t = *tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// addLine numera, calcula line_value, inserta y refleja la línea. El total lo recalcula quien llama.
func (s *TransactionLineService) addLine(ctx context.Context, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository, tx *entity.Transaction, in LineInput) (*entity.TransactionLine, error) {
	number := 0
	if in.LineNumber != nil {
		number = *in.LineNumber
	} else {
		current, err := lines.MaxLineNumber(ctx, tx.ID)
		if err != nil {
			return nil, err
		}
		number = ledger.NextLineNumber(current)
	}

	now := s.now()
	line := &entity.TransactionLine{
		ID:            ulid.NewAt(now),
		TransactionID: tx.ID,
		ProductID:     in.ProductID,
		Description:   strings.TrimSpace(in.Description),
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		LineNumber:    number,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := ledger.Recompute(line); err != nil {
		return nil, err
	}
	if err := lines.Create(ctx, line); err != nil {
		return nil, err
	}
	s.mirror.LineCreated(ctx, items, tx, line)
	return line, nil
}

func (s *TransactionLineService) checkInput(ctx context.Context, in LineInput) error {
	if err := validateLine(&in.Description, &in.UnitPrice, in.LineNumber); err != nil {
		return err
	}
	if err := ledger.CheckLine(in.Quantity, in.UnitPrice); err != nil {
		return err
	}
	return s.checkProduct(ctx, in.ProductID)
}

func (s *TransactionLineService) checkProduct(ctx context.Context, productID *string) error {
	if productID == nil {
		return nil
	}
	p, err := s.products.GetByID(ctx, *productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NewValidationError("product_id", "no existe")
	}
	return nil
}

// lineFieldError prefija el campo con la posición de la línea en la petición.
func lineFieldError(i int, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return domain.NewValidationError(fmt.Sprintf("lines[%d].%s", i, ve.Field), ve.Message)
	}
	return err
}

// Update modifica una línea; line_value se recalcula siempre.
func (s *TransactionLineService) Update(ctx context.Context, transactionID, lineID string, in LinePatch) (*entity.TransactionLine, error) {
	if err := validateLine(in.Description, in.UnitPrice, in.LineNumber); err != nil {
		return nil, err
	}
	if err := s.checkProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}

	var out *entity.TransactionLine
	err := s.txRunner.RunLedger(ctx, func(txs repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		tx, err := txs.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		line, err := lines.GetByID(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil || line.TransactionID != transactionID {
			return domain.ErrNotFound
		}

		before := *line
		if in.ProductID != nil {
			line.ProductID = in.ProductID
		}
		if in.Description != nil {
			line.Description = strings.TrimSpace(*in.Description)
		}
		if in.Quantity != nil {
			line.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if in.LineNumber != nil {
			line.LineNumber = *in.LineNumber
		}
		if err := ledger.Recompute(line); err != nil {
			return err
		}
		line.UpdatedAt = s.now()
		if err := lines.Update(ctx, line); err != nil {
			return err
		}
		if err := s.recomputeTotal(ctx, txs, lines, tx); err != nil {
			return err
		}
		s.mirror.LineUpdated(ctx, items, tx, &before, line)
		out = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete elimina una línea y su ítem espejo.
func (s *TransactionLineService) Delete(ctx context.Context, transactionID, lineID string) error {
	return s.txRunner.RunLedger(ctx, func(txs repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		tx, err := txs.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		line, err := lines.GetByID(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil || line.TransactionID != transactionID {
			return domain.ErrNotFound
		}
		s.mirror.LineDeleted(ctx, items, tx, line)
		if err := lines.Delete(ctx, lineID); err != nil {
			return err
		}
		return s.recomputeTotal(ctx, txs, lines, tx)
	})
}

func (s *TransactionLineService) recomputeTotal(ctx context.Context, txs repository.TransactionRepository, lines repository.TransactionLineRepository, tx *entity.Transaction) error {
	all, err := lines.ListByTransaction(ctx, tx.ID)
	if err != nil {
		return err
	}
	tx.TotalValue = ledger.Total(all)
	tx.UpdatedAt = s.now()
	return txs.SetTotal(ctx, tx)
}

// validateLine reglas de formato; cantidad y precio se verifican como invariantes en ledger.
func validateLine(description *string, unitPrice *decimal.Decimal, lineNumber *int) error {
	if description != nil {
		d := strings.TrimSpace(*description)
		if d == "" {
			return domain.NewValidationError("description", "es requerida")
		}
		if utf8.RuneCountInString(d) > MaxDescriptionLength {
			return domain.NewValidationError("description", "máximo 255 caracteres")
		}
	}
	if unitPrice != nil && unitPrice.Exponent() < -2 && !unitPrice.Equal(unitPrice.Round(2)) {
		return domain.NewValidationError("unit_price", "máximo 2 decimales")
	}
	if lineNumber != nil && *lineNumber < 1 {
		return domain.NewValidationError("line_number", "debe ser mayor o igual a 1")
	}
	return nil
}
