package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "efectivo"
	PaymentElectronic PaymentMethod = "mp"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentElectronic
}

type OrderStatus string

const (
	StatusOpen      OrderStatus = "abierta"
	StatusDelivered OrderStatus = "entregada"
)

func (s OrderStatus) Valid() bool {
	return s == StatusOpen || s == StatusDelivered
}

// OrderLine freezes the unit price at issuance time.
type OrderLine struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"productId"`
	QtyKg            decimal.Decimal `json:"qtyKg"`
	PricePerKgAtSale decimal.Decimal `json:"pricePerKgAtSale"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.QtyKg.Mul(l.PricePerKgAtSale)
}

type Order struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	CreatedAt time.Time       `json:"createdAt"`
	Lines     []OrderLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	PartyName string          `json:"partyName,omitempty"`
	Payment   PaymentMethod   `json:"payment,omitempty"`
	Status    OrderStatus     `json:"status,omitempty"`
}

func (o *Order) Delivered() bool {
	return o.Status == StatusDelivered
}

// Normalize fills defaults missing from records written by older clients.
func (o *Order) Normalize() {
	if o.Payment == "" {
		o.Payment = PaymentCash
	}
	if o.Status == "" {
		o.Status = StatusOpen
	}
}

// OrderPatch carries the mutable order fields. Nil fields are left untouched.
type OrderPatch struct {
	PartyName *string        `json:"partyName"`
	Payment   *PaymentMethod `json:"payment"`
	Status    *OrderStatus   `json:"status"`
}

// DraftLine is a requested order line before prices are frozen.
type DraftLine struct {
	ProductID string          `json:"productId" validate:"required"`
	QtyKg     decimal.Decimal `json:"qtyKg" validate:"gt=0"`
}
