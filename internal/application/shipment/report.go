package shipment

import (
	"context"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
)

// ReportUseCase genera el reporte PDF de un embarque.
type ReportUseCase struct {
	shipments    repository.ShipmentRepository
	versions     repository.ShipmentVersionRepository
	items        repository.ShipmentItemRepository
	transactions repository.TransactionRepository
	generator    ReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	shipments repository.ShipmentRepository,
	versions repository.ShipmentVersionRepository,
	items repository.ShipmentItemRepository,
	transactions repository.TransactionRepository,
	generator ReportGenerator,
) *ReportUseCase {
	return &ReportUseCase{
		shipments:    shipments,
		versions:     versions,
		items:        items,
		transactions: transactions,
		generator:    generator,
	}
}

// Generate arma los datos del embarque y devuelve el PDF.
func (uc *ReportUseCase) Generate(ctx context.Context, shipmentID string) ([]byte, error) {
	view, err := uc.shipments.GetView(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	history, err := uc.versions.History(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	items, err := uc.items.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	txs, err := uc.transactions.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return uc.generator.ShipmentReport(&ReportData{
		View:         view,
		History:      history,
		Items:        items,
		Transactions: txs,
		GeneratedAt:  time.Now(),
	})
}
