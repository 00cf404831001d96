package transaction

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

// TransactionUseCase casos de uso de transacciones: cabecera, asignación a embarque,
// partes y reconstrucción de ítems espejo.
type TransactionUseCase struct {
	txs       repository.TransactionRepository
	lines     repository.TransactionLineRepository
	parties   repository.PartyRepository
	contracts repository.ContractRepository
	shipments repository.ShipmentRepository
	txRunner  LedgerTxRunner
	mirror    *ShipmentItemMirror
	lineSvc   *TransactionLineService
	log       *logger.Logger
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(
	txs repository.TransactionRepository,
	lines repository.TransactionLineRepository,
	parties repository.PartyRepository,
	contracts repository.ContractRepository,
	shipments repository.ShipmentRepository,
	txRunner LedgerTxRunner,
	mirror *ShipmentItemMirror,
	lineSvc *TransactionLineService,
	log *logger.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txs:       txs,
		lines:     lines,
		parties:   parties,
		contracts: contracts,
		shipments: shipments,
		txRunner:  txRunner,
		mirror:    mirror,
		lineSvc:   lineSvc,
		log:       log.Component("transactions"),
	}
}

// Create crea una transacción, asignada a un embarque si in.ShipmentID viene informado.
func (uc *TransactionUseCase) Create(ctx context.Context, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	if !entity.ValidTransactionType(in.Type) {
		return nil, domain.NewValidationError("type", "debe ser PURCHASE, SALE, FREIGHT o INSURANCE")
	}
	date, err := dto.ParseDate(in.TxDate)
	if err != nil {
		return nil, domain.NewValidationError("tx_date", err.Error())
	}
	if err := validateReference(in.Reference); err != nil {
		return nil, err
	}
	if in.Lines != nil && len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "debe tener al menos una línea")
	}
	inputs := make([]LineInput, 0, len(in.Lines))
	for i, l := range in.Lines {
		input, err := ToLineInput(l)
		if err != nil {
			return nil, lineFieldError(i, err)
		}
		inputs = append(inputs, input)
	}
	if err := uc.checkShipment(ctx, in.ShipmentID); err != nil {
		return nil, err
	}
	now := time.Now()
	t := &entity.Transaction{
		ID:         ulid.NewAt(now),
		ShipmentID: in.ShipmentID,
		Type:       in.Type,
		TxDate:     date.Time,
		Reference:  in.Reference,
		TotalValue: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(inputs) == 0 {
		if err := uc.txs.Create(ctx, t); err != nil {
			return nil, err
		}
		out := ToTransactionResponse(t)
		return &out, nil
	}

	lines, err := uc.lineSvc.CreateWithTransaction(ctx, t, inputs)
	if err != nil {
		return nil, err
	}
	out := ToTransactionResponse(t)
	out.Lines = make([]dto.TransactionLineResponse, 0, len(lines))
	for _, l := range lines {
		out.Lines = append(out.Lines, ToLineResponse(l))
	}
	uc.log.Info().Str("transaction_id", t.ID).Int("lines", len(lines)).Msg("transacción creada con líneas")
	return &out, nil
}

// Get cabecera con líneas, partes y contratos.
func (uc *TransactionUseCase) Get(ctx context.Context, id string) (*dto.TransactionDetailResponse, error) {
	t, err := uc.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := uc.lines.ListByTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	parties, err := uc.parties.ListByTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	contracts, err := uc.contracts.ListByTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &dto.TransactionDetailResponse{
		Transaction: ToTransactionResponse(t),
		Lines:       make([]dto.TransactionLineResponse, 0, len(lines)),
		Parties:     make([]dto.TransactionPartyResponse, 0, len(parties)),
		Contracts:   make([]dto.ContractResponse, 0, len(contracts)),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, ToLineResponse(l))
	}
	for _, p := range parties {
		out.Parties = append(out.Parties, dto.TransactionPartyResponse{PartyID: p.PartyID, PartyName: p.PartyName, Role: p.Role})
	}
	for _, c := range contracts {
		out.Contracts = append(out.Contracts, ToContractResponse(c))
	}
	return out, nil
}

// List transacciones paginadas.
func (uc *TransactionUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	page.DefaultPage()
	list, err := uc.txs.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.TransactionListResponse{
		Items: ToTransactionResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListByShipment transacciones de un embarque.
func (uc *TransactionUseCase) ListByShipment(ctx context.Context, shipmentID string) ([]dto.TransactionResponse, error) {
	if err := uc.checkShipment(ctx, &shipmentID); err != nil {
		return nil, err
	}
	list, err := uc.txs.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return ToTransactionResponses(list), nil
}

// Update actualiza tipo, fecha o referencia.
func (uc *TransactionUseCase) Update(ctx context.Context, id string, in dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	var out *entity.Transaction
	err := uc.txRunner.RunLedger(ctx, func(txs repository.TransactionRepository, _ repository.TransactionLineRepository, _ repository.ShipmentItemRepository) error {
		t, err := txs.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if in.Type != nil {
			if !entity.ValidTransactionType(*in.Type) {
				return domain.NewValidationError("type", "debe ser PURCHASE, SALE, FREIGHT o INSURANCE")
			}
			t.Type = *in.Type
		}
		if in.TxDate != nil {
			date, err := dto.ParseDate(*in.TxDate)
			if err != nil {
				return domain.NewValidationError("tx_date", err.Error())
			}
			t.TxDate = date.Time
		}
		if in.Reference.Set {
			if err := validateReference(in.Reference.Value); err != nil {
				return err
			}
			t.Reference = in.Reference.Value
		}
		t.UpdatedAt = time.Now()
		if err := txs.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(out)
	return &resp, nil
}

// Assign asigna la transacción a otro embarque (nil = sin asignar) y mueve sus ítems espejo.
func (uc *TransactionUseCase) Assign(ctx context.Context, id string, shipmentID *string) (*dto.TransactionResponse, error) {
	if err := uc.checkShipment(ctx, shipmentID); err != nil {
		return nil, err
	}
	var out *entity.Transaction
	err := uc.txRunner.RunLedger(ctx, func(txs repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		t, err := txs.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		from := t.ShipmentID
		t.ShipmentID = shipmentID
		t.UpdatedAt = time.Now()
		if err := txs.Update(ctx, t); err != nil {
			return err
		}
		all, err := lines.ListByTransaction(ctx, id)
		if err != nil {
			return err
		}
		uc.mirror.TransactionReassigned(ctx, items, from, shipmentID, all)
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(out)
	return &resp, nil
}

// Delete elimina la transacción; líneas, ítems espejo, partes y contratos caen en cascada.
func (uc *TransactionUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.mustGet(ctx, id); err != nil {
		return err
	}
	return uc.txs.Delete(ctx, id)
}

// AttachParty vincula una parte con un rol.
func (uc *TransactionUseCase) AttachParty(ctx context.Context, transactionID string, in dto.AttachPartyRequest) error {
	if !entity.ValidPartyRole(in.Role) {
		return domain.NewValidationError("role", "debe ser BUYER, SELLER, CARRIER, INSURER o BROKER")
	}
	if _, err := uc.mustGet(ctx, transactionID); err != nil {
		return err
	}
	p, err := uc.parties.GetByID(ctx, in.PartyID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	return uc.parties.Attach(ctx, &entity.TransactionParty{
		ID:            ulid.NewAt(now),
		TransactionID: transactionID,
		PartyID:       in.PartyID,
		Role:          in.Role,
		CreatedAt:     now,
	})
}

// DetachParty elimina el vínculo parte-rol.
func (uc *TransactionUseCase) DetachParty(ctx context.Context, transactionID, partyID, role string) error {
	return uc.parties.Detach(ctx, transactionID, partyID, role)
}

// RebuildItems reconstruye los ítems espejo de un embarque. Devuelve cuántos quedaron.
func (uc *TransactionUseCase) RebuildItems(ctx context.Context, shipmentID string) (int, error) {
	if err := uc.checkShipment(ctx, &shipmentID); err != nil {
		return 0, err
	}
	n := 0
	err := uc.txRunner.RunLedger(ctx, func(_ repository.TransactionRepository, lines repository.TransactionLineRepository, items repository.ShipmentItemRepository) error {
		all, err := lines.ListByShipment(ctx, shipmentID)
		if err != nil {
			return err
		}
		n, err = uc.mirror.Rebuild(ctx, items, shipmentID, all)
		return err
	})
	return n, err
}

func (uc *TransactionUseCase) mustGet(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := uc.txs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (uc *TransactionUseCase) checkShipment(ctx context.Context, shipmentID *string) error {
	if shipmentID == nil {
		return nil
	}
	if !ulid.Valid(*shipmentID) {
		return domain.NewValidationError("shipment_id", "no es un ULID válido")
	}
	s, err := uc.shipments.GetByID(ctx, *shipmentID)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	return nil
}

func validateReference(ref *string) error {
	if ref != nil && utf8.RuneCountInString(strings.TrimSpace(*ref)) > 255 {
		return domain.NewValidationError("reference", "máximo 255 caracteres")
	}
	return nil
}
