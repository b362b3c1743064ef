package service

import (
	"math"
	"testing"
	"time"

	"go-pos-ledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReport_Totals(t *testing.T) {
	l, clk, _ := newTestLedger(t)
	reports := NewReportService(l, decimal.NewFromInt(2))
	pollo := productByCode(t, l, "MIL-PO-CL")   // 12000
	medallon := productByCode(t, l, "ME-POLLO6") // 7000

	// 2024-05-01: one order left open
	produce(t, l, pollo.ID, "10")
	pending := issue(t, l, model.DraftLine{ProductID: pollo.ID, QtyKg: dec("1")})

	// 2024-05-02: two orders, one delivered and paid electronically
	clk.Advance(24 * time.Hour)
	produce(t, l, medallon.ID, "6")
	produce(t, l, medallon.ID, "2")
	a := issue(t, l, model.DraftLine{ProductID: pollo.ID, QtyKg: dec("2")})
	b := issue(t, l, model.DraftLine{ProductID: medallon.ID, QtyKg: dec("6")})
	mp := model.PaymentElectronic
	delivered := model.StatusDelivered
	_, _, err := l.UpdateOrder(b.ID, model.OrderPatch{Payment: &mp, Status: &delivered})
	require.NoError(t, err)

	r, err := reports.DailyReport("2024-05-02")
	require.NoError(t, err)

	assert.Equal(t, "2024-05-02", r.Day)
	assert.Equal(t, 2, r.OrderCount)
	assertDecimal(t, "66000", r.Total)
	assert.Equal(t, 1, r.DeliveredCount)
	assertDecimal(t, "42000", r.DeliveredTotal)
	assert.Equal(t, 1, r.OpenCount)
	assertDecimal(t, "24000", r.OpenTotal)
	assert.Equal(t, 1, r.CashCount)
	assert.Equal(t, 1, r.ElectronicCount)
	require.Len(t, r.Orders, 2)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{r.Orders[0].ID, r.Orders[1].ID})

	require.Len(t, r.OlderPending, 1)
	assert.Equal(t, pending.ID, r.OlderPending[0].ID)

	require.Len(t, r.Production, 1)
	assert.Equal(t, medallon.ID, r.Production[0].ProductID)
	assert.Equal(t, model.UnitCount, r.Production[0].Unit)
	assertDecimal(t, "8", r.Production[0].Qty)

	// every active product except pollo (7 left) is at or below 2
	assert.Len(t, r.LowStock, 13)
	for _, item := range r.LowStock {
		assert.NotEqual(t, pollo.ID, item.ProductID)
	}
}

func TestDailyReport_DefaultsToTodayAndValidatesDay(t *testing.T) {
	l, _, _ := newTestLedger(t)
	reports := NewReportService(l, decimal.NewFromInt(2))

	r, err := reports.DailyReport("")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", r.Day)
	assert.Zero(t, r.OrderCount)
	assert.NotNil(t, r.Orders)

	_, err = reports.DailyReport("May 1")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDailyReport_LowStockSkipsInactive(t *testing.T) {
	l, _, _ := newTestLedger(t)
	reports := NewReportService(l, decimal.NewFromInt(2))
	p := productByCode(t, l, "AC-NUGGETS")
	l.ToggleProductActive(p.ID)

	r, err := reports.DailyReport("")
	require.NoError(t, err)

	assert.Len(t, r.LowStock, 13)
	for _, item := range r.LowStock {
		assert.NotEqual(t, p.ID, item.ProductID)
	}
}

func TestMovement_BucketsByDay(t *testing.T) {
	l, clk, _ := newTestLedger(t)
	reports := NewReportService(l, decimal.NewFromInt(2))
	p := productByCode(t, l, "MIL-PO-CL")
	produce(t, l, p.ID, "4")
	clk.Advance(24 * time.Hour)
	issue(t, l, model.DraftLine{ProductID: p.ID, QtyKg: dec("1.5")})

	days, err := reports.Movement(3)
	require.NoError(t, err)

	require.Len(t, days, 3)
	assert.Equal(t, "2024-04-30", days[0].Date)
	assert.Equal(t, "2024-05-01", days[1].Date)
	assert.Equal(t, "2024-05-02", days[2].Date)
	assertDecimal(t, "4", days[1].Produced)
	assertDecimal(t, "1.5", days[2].Sold)
	assertDecimal(t, "18000", days[2].Revenue)
	assert.True(t, days[0].Produced.IsZero())

	_, err = reports.Movement(0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMovement_WindowIsBounded(t *testing.T) {
	l, _, _ := newTestLedger(t)
	reports := NewReportService(l, decimal.NewFromInt(2))

	days, err := reports.Movement(MaxMovementDays)
	require.NoError(t, err)
	assert.Len(t, days, MaxMovementDays)
	assert.Equal(t, "2024-05-01", days[len(days)-1].Date)

	for _, n := range []int{MaxMovementDays + 1, math.MaxInt} {
		_, err := reports.Movement(n)
		assert.ErrorIs(t, err, ErrValidation, "days=%d", n)
	}
}
