package repository

import (
	"context"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// TransactionRepository puerto de persistencia para Transaction.
type TransactionRepository interface {
	Create(ctx context.Context, t *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// GetForUpdate bloquea la fila; serializa la numeración de líneas.
	GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error)
	// Update actualiza cabecera (shipment_id, type, tx_date, reference).
	Update(ctx context.Context, t *entity.Transaction) error
	SetTotal(ctx context.Context, t *entity.Transaction) error
	Delete(ctx context.Context, id string) error
	ListByShipment(ctx context.Context, shipmentID string) ([]*entity.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error)
	ListWithoutContracts(ctx context.Context, limit, offset int) ([]*entity.Transaction, error)
}

// TransactionLineRepository puerto de persistencia para TransactionLine.
type TransactionLineRepository interface {
	Create(ctx context.Context, l *entity.TransactionLine) error
	GetByID(ctx context.Context, id string) (*entity.TransactionLine, error)
	Update(ctx context.Context, l *entity.TransactionLine) error
	Delete(ctx context.Context, id string) error
	// MaxLineNumber 0 si la transacción no tiene líneas.
	MaxLineNumber(ctx context.Context, transactionID string) (int, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.TransactionLine, error)
	// ListByShipment líneas de todas las transacciones asociadas al embarque.
	ListByShipment(ctx context.Context, shipmentID string) ([]*entity.TransactionLine, error)
}

// PartyRepository partes y su vínculo con transacciones.
type PartyRepository interface {
	Create(ctx context.Context, p *entity.Party) error
	GetByID(ctx context.Context, id string) (*entity.Party, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Party, error)
	// Attach domain.ErrDuplicate si (transacción, parte, rol) ya existe.
	Attach(ctx context.Context, tp *entity.TransactionParty) error
	// Detach domain.ErrNotFound si el vínculo no existe.
	Detach(ctx context.Context, transactionID, partyID, role string) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.TransactionParty, error)
}
