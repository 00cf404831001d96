package contract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

const (
	// MaxPDFSize tamaño máximo de un contrato (20 MiB).
	MaxPDFSize = 20 << 20
	// PDFMime tipo MIME guardado en el blob.
	PDFMime = "application/pdf"
	// KeyPrefix prefijo de las claves de objeto.
	KeyPrefix = "contracts/"
)

var pdfMagic = []byte("%PDF-")

// ContractUseCase carga, consulta y borra contratos PDF de transacciones.
// El archivo se escribe primero en el almacenamiento; si la transacción de BD falla se elimina.
type ContractUseCase struct {
	storage   BlobStorage
	txRunner  ContractTxRunner
	contracts repository.ContractRepository
	blobs     repository.BlobRepository
	txs       repository.TransactionRepository
	shipments repository.ShipmentRepository
	log       *logger.Logger
}

// NewContractUseCase construye el caso de uso.
func NewContractUseCase(
	storage BlobStorage,
	txRunner ContractTxRunner,
	contracts repository.ContractRepository,
	blobs repository.BlobRepository,
	txs repository.TransactionRepository,
	shipments repository.ShipmentRepository,
	log *logger.Logger,
) *ContractUseCase {
	return &ContractUseCase{
		storage:   storage,
		txRunner:  txRunner,
		contracts: contracts,
		blobs:     blobs,
		txs:       txs,
		shipments: shipments,
		log:       log.Component("contracts"),
	}
}

// Upload guarda el PDF y crea Blob + Contract para la transacción.
func (uc *ContractUseCase) Upload(ctx context.Context, transactionID, filename string, data []byte) (*dto.ContractResponse, error) {
	if err := CheckPDF(data); err != nil {
		return nil, err
	}
	t, err := uc.txs.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	name := NormalizeFilename(filename)
	key := KeyPrefix + ulid.NewAt(now) + "-" + name
	sum := sha256.Sum256(data)

	if err := uc.storage.Put(ctx, key, data, PDFMime); err != nil {
		return nil, err
	}

	blob := &entity.Blob{
		ID:        ulid.NewAt(now),
		Disk:      uc.storage.Driver(),
		Path:      key,
		Filename:  name,
		Mime:      PDFMime,
		Size:      int64(len(data)),
		Hash:      hex.EncodeToString(sum[:]),
		CreatedAt: now,
	}
	c := &entity.Contract{
		ID:            ulid.NewAt(now),
		TransactionID: transactionID,
		BlobID:        blob.ID,
		Blob:          blob,
		CreatedAt:     now,
	}
	err = uc.txRunner.RunContract(ctx, func(blobs repository.BlobRepository, contracts repository.ContractRepository) error {
		if err := blobs.Create(ctx, blob); err != nil {
			return err
		}
		return contracts.Create(ctx, c)
	})
	if err != nil {
		uc.removeObject(ctx, key)
		return nil, err
	}

	uc.log.Info().
		Str("contract_id", c.ID).
		Str("transaction_id", transactionID).
		Int64("size", blob.Size).
		Msg("contrato cargado")
	out := transaction.ToContractResponse(c)
	return &out, nil
}

// UploadBase64 variante JSON: acepta base64 crudo o data URL.
func (uc *ContractUseCase) UploadBase64(ctx context.Context, transactionID string, in dto.UploadContractRequest) (*dto.ContractResponse, error) {
	data, err := DecodeBase64PDF(in.PDFBase64)
	if err != nil {
		return nil, err
	}
	return uc.Upload(ctx, transactionID, in.Filename, data)
}

// Get contrato por ID.
func (uc *ContractUseCase) Get(ctx context.Context, id string) (*dto.ContractResponse, error) {
	c, err := uc.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	out := transaction.ToContractResponse(c)
	return &out, nil
}

// Download contenido del PDF y su nombre de archivo.
func (uc *ContractUseCase) Download(ctx context.Context, id string) ([]byte, string, error) {
	c, err := uc.mustGet(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if c.Blob == nil {
		return nil, "", domain.ErrNotFound
	}
	data, err := uc.storage.Get(ctx, c.Blob.Path)
	if err != nil {
		return nil, "", err
	}
	return data, c.Blob.Filename, nil
}

// Delete borra contrato y blob; el objeto almacenado se elimina después del commit.
func (uc *ContractUseCase) Delete(ctx context.Context, id string) error {
	var path string
	err := uc.txRunner.RunContract(ctx, func(blobs repository.BlobRepository, contracts repository.ContractRepository) error {
		c, err := contracts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if err := contracts.Delete(ctx, id); err != nil {
			return err
		}
		if c.Blob != nil {
			path = c.Blob.Path
		}
		return blobs.Delete(ctx, c.BlobID)
	})
	if err != nil {
		return err
	}
	if path != "" {
		uc.removeObject(ctx, path)
	}
	return nil
}

// Index contratos existentes y transacciones que aún no tienen contrato.
func (uc *ContractUseCase) Index(ctx context.Context, page dto.PageRequest) (*dto.ContractIndexResponse, error) {
	page.DefaultPage()
	list, err := uc.contracts.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	without, err := uc.txs.ListWithoutContracts(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.ContractIndexResponse{
		Contracts:           toResponses(list),
		TransactionsWithout: transaction.ToTransactionResponses(without),
		Page:                dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListByShipment contratos de las transacciones del embarque.
func (uc *ContractUseCase) ListByShipment(ctx context.Context, shipmentID string) ([]dto.ContractResponse, error) {
	s, err := uc.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.contracts.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

func (uc *ContractUseCase) mustGet(ctx context.Context, id string) (*entity.Contract, error) {
	c, err := uc.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (uc *ContractUseCase) removeObject(ctx context.Context, key string) {
	if err := uc.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		uc.log.Error().Err(err).Str("key", key).Msg("no se pudo eliminar el objeto almacenado")
	}
}

func toResponses(list []*entity.Contract) []dto.ContractResponse {
	out := make([]dto.ContractResponse, 0, len(list))
	for _, c := range list {
		out = append(out, transaction.ToContractResponse(c))
	}
	return out
}

// CheckPDF no vacío, hasta MaxPDFSize y con cabecera %PDF-.
func CheckPDF(data []byte) error {
	if len(data) == 0 {
		return domain.NewValidationError("pdf", "archivo vacío")
	}
	if len(data) > MaxPDFSize {
		return domain.NewValidationError("pdf", "supera el máximo de 20 MiB")
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return domain.NewValidationError("pdf", "el contenido no es un PDF")
	}
	return nil
}

// DecodeBase64PDF decodifica base64 crudo o data URL (data:application/pdf;base64,...).
func DecodeBase64PDF(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domain.NewValidationError("pdf_base64", "es requerido")
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 || !strings.Contains(s[:i], ";base64") {
			return nil, domain.NewValidationError("pdf_base64", "data URL inválida")
		}
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return nil, domain.NewValidationError("pdf_base64", "base64 inválido")
		}
	}
	return data, nil
}

// NormalizeFilename nombre seguro terminado en .pdf; vacío = contract-<uuid>.pdf.
func NormalizeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "contract-" + uuid.New().String() + ".pdf"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name = b.String()
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
