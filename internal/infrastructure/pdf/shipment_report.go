// Package pdf genera el reporte PDF de un embarque con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Embarque + estado actual  │  versión + fecha        │
//	│  RUTA: origen → destino / buque / zarpe / ETA   │   QR       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HISTORIAL: v | estado | zarpe | ETA | actor | motivo        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CARGA: descripción | cantidad | precio unit.                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TRANSACCIONES: fecha | tipo | referencia | valor + total    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

var _ shipment.ReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const dateLayout = "02/01/2006"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa shipment.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	printer *message.Printer
}

// NewMarotoReportGenerator construye el generador; los montos se formatean en español.
func NewMarotoReportGenerator() *MarotoReportGenerator {
	return &MarotoReportGenerator{printer: message.NewPrinter(language.Spanish)}
}

// ShipmentReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) ShipmentReport(data *shipment.ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de embarque "+data.View.ShipmentID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.View, data.GeneratedAt))
	m.AddRows(routeRow(data.View))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle("HISTORIAL DE VERSIONES"))
	m.AddRows(historyHeaderRow())
	m.AddRows(historyRows(data.History)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("CARGA"))
	m.AddRows(itemRows(g, data.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("TRANSACCIONES"))
	m.AddRows(transactionRows(g, data.Transactions)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// money formatea con separador de miles y 2 decimales según el idioma del printer.
func (g *MarotoReportGenerator) money(d decimal.Decimal) string {
	return "$" + g.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(v *shipment.View, generatedAt time.Time) core.Row {
	status := nonEmpty(v.Status, "SIN VERSIONES")
	return row.New(18).Add(
		col.New(7).Add(
			text.New("Embarque "+v.ShipmentID, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+status, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Versión %d", v.Version), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Generado: "+generatedAt.Format(dateLayout+" 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func routeRow(v *shipment.View) core.Row {
	route := fmt.Sprintf("%s → %s", deref(v.OriginName, "-"), deref(v.DestinationName, "-"))
	return row.New(28).Add(
		col.New(9).Add(
			text.New("RUTA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(route, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Buque: "+deref(v.VesselName, "-"), props.Text{Size: 8, Top: 13, Color: colorGray}),
			text.New(fmt.Sprintf("Zarpe: %s   |   ETA: %s", formatDate(v.CargoSailingDate), formatDate(v.ETA)),
				props.Text{Size: 8, Top: 19, Color: colorGray}),
		),
		col.New(3).Add(code.NewQr("shipment:"+v.ShipmentID, props.Rect{Percent: 90, Center: true})),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func cell(value string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func historyHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("v", 1, align.Center),
		headerCell("Estado", 2, align.Left),
		headerCell("Zarpe", 2, align.Left),
		headerCell("ETA", 2, align.Left),
		headerCell("Actor / fecha", 2, align.Left),
		headerCell("Motivo", 3, align.Left),
	)
}

// historyRows una fila por versión, en el orden recibido (descendente).
func historyRows(history []*entity.ShipmentVersion) []core.Row {
	out := make([]core.Row, 0, len(history))
	for _, v := range history {
		out = append(out, row.New(9).Add(
			cell(fmt.Sprintf("%d", v.Version), 1, align.Center),
			cell(v.Status, 2, align.Left),
			cell(formatDate(v.CargoSailingDate), 2, align.Left),
			cell(formatDate(v.ETA), 2, align.Left),
			col.New(2).Add(
				text.New(deref(v.ActorID, "sistema"), props.Text{Size: 6.5, Top: 1, Left: 1}),
				text.New(v.CreatedAt.Format(dateLayout+" 15:04"), props.Text{Size: 6.5, Top: 4.5, Left: 1, Color: colorGray}),
			),
			cell(deref(v.Reason, ""), 3, align.Left),
		))
	}
	return out
}

func itemRows(g *MarotoReportGenerator, items []*entity.ShipmentItem) []core.Row {
	if len(items) == 0 {
		return []core.Row{row.New(6).Add(cell("Sin ítems de carga", 12, align.Left))}
	}
	out := []core.Row{row.New(6).Add(
		headerCell("Descripción", 6, align.Left),
		headerCell("Cantidad", 3, align.Right),
		headerCell("Precio unit.", 3, align.Right),
	)}
	for _, it := range items {
		out = append(out, row.New(6).Add(
			cell(it.Description, 6, align.Left),
			cell(it.Quantity.String(), 3, align.Right),
			cell(g.money(it.UnitPrice), 3, align.Right),
		))
	}
	return out
}

func transactionRows(g *MarotoReportGenerator, txs []*entity.Transaction) []core.Row {
	if len(txs) == 0 {
		return []core.Row{row.New(6).Add(cell("Sin transacciones", 12, align.Left))}
	}
	out := []core.Row{row.New(6).Add(
		headerCell("Fecha", 2, align.Left),
		headerCell("Tipo", 3, align.Left),
		headerCell("Referencia", 4, align.Left),
		headerCell("Valor", 3, align.Right),
	)}
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.TotalValue)
		out = append(out, row.New(6).Add(
			cell(t.TxDate.Format(dateLayout), 2, align.Left),
			cell(t.Type, 3, align.Left),
			cell(deref(t.Reference, "-"), 4, align.Left),
			cell(g.money(t.TotalValue), 3, align.Right),
		))
	}
	out = append(out, row.New(8).Add(
		col.New(9).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(g.money(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	))
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return nonEmpty(*s, fallback)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}
