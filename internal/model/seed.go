package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SchemaVersion is bumped whenever the built-in catalog changes. A stored version below it
// discards the persisted catalog and reseeds; orders and productions are left untouched.
const SchemaVersion = 2

// DefaultAccessCode is stored when no access code exists yet.
const DefaultAccessCode = "1234"

type seedProduct struct {
	name, hex                     string
	cost, recipePrice, storePrice string
	category, code, barcode       string
}

var defaultCatalog = []seedProduct{
	{"Milanesa de Pollo (sin provenzal)", "#A3E4B3", "4859.44", "11570.1", "12000", "Milanesas", "MIL-PO-CL", "7791234567001"},
	{"Milanesa de Pollo (con provenzal)", "#45B39D", "5709.87", "11895.56", "12000", "Milanesas", "MIL-PO-PR", "7791234567002"},
	{"Milanesa de Nalga", "#F1948A", "10465.04", "16611.17", "16500", "Milanesas", "MIL-NA-PR", "7791234567012"},
	{"Milanesa de Peceto", "#C0392B", "", "", "", "Milanesas", "MIL-PE-PR", ""},
	{"Ribs estilo Kansas BBQ", "#D98880", "6682.55", "15910.85", "16000", "Prod. Fresco", "PF-RIBS", "7791234567010"},
	{"Bastones de papa", "#F9E79F", "4214.58", "9365.74", "10000", "Acompañamientos", "AC-BASTON", "7791234567007"},
	{"Caritas de papa", "#F4D03F", "5581.25", "11162.5", "11700", "Acompañamientos", "AC-CARITAS", "7791234567005"},
	{"Papas Noisette", "#F5B041", "5631.25", "11262.5", "11800", "Acompañamientos", "AC-NOISETTE", "7791234567006"},
	{"Pechugitas rebozadas", "#85C1E9", "", "", "", "Snack & Kids", "AC-PECHU", ""},
	{"Nuggets crocantes", "#2E86C1", "8881.25", "14802.08", "14000", "Snack & Kids", "AC-NUGGETS", "7791234567008"},
	{"Pechugas Frescas", "#F39DC4", "8695.31", "15809.66", "16500", "Prod. Fresco", "PF-PECHUGA", "7791234567009"},
	{"Medallones de Pollo x 12", "#9DC610", "6950.7", "11983.97", "12000", "Medallones", "ME-POLLO12", "7791234567010"},
	{"Medallones de Pollo x 6", "#E77326", "3875.18", "7045.79", "7000", "Medallones", "ME-POLLO6", "7791234567011"},
	{"Varios", "#9900ff", "", "", "", "Varios", "VARIOS", ""},
}

// SeedProducts builds the default catalog with fresh ids and zero stock.
func SeedProducts() []Product {
	products := make([]Product, 0, len(defaultCatalog))
	for _, s := range defaultCatalog {
		products = append(products, Product{
			ID:         uuid.NewString(),
			Name:       s.name,
			Hex:        s.hex,
			CostPerKg:  optionalAmount(s.cost),
			PricePerKg: optionalAmount(s.recipePrice),
			PriceStore: optionalAmount(s.storePrice),
			Category:   s.category,
			Code:       s.code,
			Barcode:    s.barcode,
			StockKg:    decimal.Zero,
			Active:     true,
		})
	}
	return products
}

func optionalAmount(raw string) decimal.NullDecimal {
	if raw == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(raw))
}
