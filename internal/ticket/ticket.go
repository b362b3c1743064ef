package ticket

import (
	"bytes"
	"fmt"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/format"

	"github.com/go-pdf/fpdf"
)

const (
	paperWidth = 74.0 // mm, thermal roll
	margin     = 4.0
	lineHeight = 5.0
)

// Renderer draws order tickets ("comandas") as receipt-sized PDFs.
type Renderer struct {
	storeName string
	loc       *time.Location
}

func NewRenderer(storeName string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{storeName: storeName, loc: loc}
}

// Render returns the PDF bytes for an order. products resolves line names and units;
// lines whose product is gone are printed with their id.
func (r *Renderer) Render(order *model.Order, products map[string]model.Product) ([]byte, error) {
	height := 70 + float64(len(order.Lines))*lineHeight
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: paperWidth, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	contentW := paperWidth - 2*margin

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(r.storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comanda", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("N° "+order.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, format.DateTime(order.CreatedAt, r.loc), "", 1, "L", false, 0, "")
	if order.PartyName != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+order.PartyName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(margin, pdf.GetY(), paperWidth-margin, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.48
	col2 := contentW * 0.22
	col3 := contentW * 0.30

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, lineHeight, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, lineHeight, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, lineHeight, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range order.Lines {
		name, unit := l.ProductID, string(model.UnitKilogram)
		if p, ok := products[l.ProductID]; ok {
			name, unit = p.Name, string(p.Unit())
		}
		if runes := []rune(name); len(runes) > 24 {
			name = string(runes[:23]) + "."
		}
		pdf.CellFormat(col1, lineHeight, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, lineHeight, tr(format.Quantity(l.QtyKg, unit)), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, lineHeight, tr(format.Money(l.Subtotal())), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(margin, pdf.GetY(), paperWidth-margin, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, tr(format.Money(order.Total)), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Pago: "+paymentLabel(order.Payment)), "", 1, "L", false, 0, "")
	if order.Delivered() {
		pdf.CellFormat(contentW, 4, "Entregada", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("ticket: render %s: %w", order.Number, err)
	}
	return buf.Bytes(), nil
}

func paymentLabel(m model.PaymentMethod) string {
	if m == model.PaymentElectronic {
		return "Mercado Pago"
	}
	return "Efectivo"
}
