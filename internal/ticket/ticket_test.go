package ticket

import (
	"bytes"
	"testing"
	"time"

	"go-pos-ledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ProducesPDF(t *testing.T) {
	r := NewRenderer("Almacén de Prueba", time.UTC)
	order := &model.Order{
		ID:        "o-1",
		Number:    "20240501-0001",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Lines: []model.OrderLine{
			{ID: "l-1", ProductID: "p-1", QtyKg: decimal.RequireFromString("1.5"), PricePerKgAtSale: decimal.NewFromInt(12000)},
			{ID: "l-2", ProductID: "gone", QtyKg: decimal.NewFromInt(2), PricePerKgAtSale: decimal.NewFromInt(7000)},
		},
		Total:     decimal.NewFromInt(32000),
		PartyName: "Señora Pérez",
		Payment:   model.PaymentElectronic,
		Status:    model.StatusOpen,
	}
	products := map[string]model.Product{
		"p-1": {ID: "p-1", Name: "Milanesa de Pollo (sin provenzal) extra larga", Category: "Milanesas"},
	}

	data, err := r.Render(order, products)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Greater(t, len(data), 500)
}

func TestPaymentLabel(t *testing.T) {
	assert.Equal(t, "Efectivo", paymentLabel(model.PaymentCash))
	assert.Equal(t, "Mercado Pago", paymentLabel(model.PaymentElectronic))
}
