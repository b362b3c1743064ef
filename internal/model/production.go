package model

import "github.com/shopspring/decimal"

// DateLayout is the calendar-day format used for production dates and report days.
const DateLayout = "2006-01-02"

// ProductionRecord adds QtyKg of a product to stock on Date.
type ProductionRecord struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	QtyKg     decimal.Decimal `json:"qtyKg"`
	Date      string          `json:"date"`
}
