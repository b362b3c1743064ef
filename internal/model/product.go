package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted collections and the sync snapshot carry plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// UnitKind is the measuring unit a product is stocked and sold in.
type UnitKind string

const (
	UnitKilogram UnitKind = "kg"
	UnitCount    UnitKind = "unid"
)

// CountCategory is the only category sold by unit count; everything else is weighed.
const CountCategory = "Medallones"

const DefaultHex = "#cccccc"

var (
	minWeightQty = decimal.RequireFromString("0.1")
	minCountQty  = decimal.NewFromInt(1)
)

// UnitKindForCategory derives the unit kind from a category name.
func UnitKindForCategory(category string) UnitKind {
	if category == CountCategory {
		return UnitCount
	}
	return UnitKilogram
}

// Product is a catalog entry. StockKg holds units instead of kilograms for count products.
type Product struct {
	ID         string              `json:"id"`
	Name       string              `json:"name" validate:"trimmed_required"`
	Hex        string              `json:"hex" validate:"omitempty,hexcolor"`
	CostPerKg  decimal.NullDecimal `json:"costPerKg" validate:"omitempty,gte=0"`
	PricePerKg decimal.NullDecimal `json:"pricePerKg" validate:"omitempty,gte=0"`
	PriceStore decimal.NullDecimal `json:"priceStore" validate:"omitempty,gte=0"`
	Category   string              `json:"category" validate:"trimmed_required"`
	Code       string              `json:"code" validate:"trimmed_required"`
	Barcode    string              `json:"barcode,omitempty"`
	StockKg    decimal.Decimal     `json:"stockKg" validate:"gte=0"`
	Active     bool                `json:"active"`
}

func (p *Product) Unit() UnitKind {
	return UnitKindForCategory(p.Category)
}

// SalePrice is the per-unit price frozen into new order lines:
// store price, else recipe price, else zero.
func (p *Product) SalePrice() decimal.Decimal {
	if p.PriceStore.Valid {
		return p.PriceStore.Decimal
	}
	if p.PricePerKg.Valid {
		return p.PricePerKg.Decimal
	}
	return decimal.Zero
}

// MinProductionQty is the smallest quantity a production record may carry.
func (p *Product) MinProductionQty() decimal.Decimal {
	if p.Unit() == UnitCount {
		return minCountQty
	}
	return minWeightQty
}

// Matches reports whether the product satisfies a free-text term and a barcode fragment.
// Empty criteria match everything.
func (p *Product) Matches(term, barcode string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	barcode = strings.TrimSpace(barcode)
	if term != "" {
		haystack := strings.ToLower(p.Name + " " + p.Code + " " + p.Category)
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	if barcode != "" && !strings.Contains(p.Barcode, barcode) {
		return false
	}
	return true
}
