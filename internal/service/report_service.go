package service

import (
	"fmt"
	"time"

	"go-pos-ledger/internal/model"

	"github.com/shopspring/decimal"
)

type ProductQty struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Unit      model.UnitKind  `json:"unit"`
	Qty       decimal.Decimal `json:"qty"`
}

type DailyReport struct {
	Day             string          `json:"day"`
	OrderCount      int             `json:"orderCount"`
	Total           decimal.Decimal `json:"total"`
	DeliveredCount  int             `json:"deliveredCount"`
	DeliveredTotal  decimal.Decimal `json:"deliveredTotal"`
	OpenCount       int             `json:"openCount"`
	OpenTotal       decimal.Decimal `json:"openTotal"`
	CashCount       int             `json:"cashCount"`
	ElectronicCount int             `json:"electronicCount"`
	Orders          []model.Order   `json:"orders"`
	OlderPending    []model.Order   `json:"olderPending"`
	Production      []ProductQty    `json:"production"`
	LowStock        []ProductQty    `json:"lowStock"`
}

// DayMovement aggregates what came in and went out on one calendar day.
type DayMovement struct {
	Date     string          `json:"date"`
	Produced decimal.Decimal `json:"produced"`
	Sold     decimal.Decimal `json:"sold"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type ReportService interface {
	DailyReport(day string) (*DailyReport, error)
	Movement(days int) ([]DayMovement, error)
}

type reportService struct {
	ledger            LedgerService
	lowStockThreshold decimal.Decimal
}

func NewReportService(ledger LedgerService, lowStockThreshold decimal.Decimal) ReportService {
	return &reportService{ledger: ledger, lowStockThreshold: lowStockThreshold}
}

// DailyReport summarises a calendar day in the ledger's zone. An empty day means today.
func (s *reportService) DailyReport(day string) (*DailyReport, error) {
	if day == "" {
		day = s.ledger.Today()
	}
	if _, err := time.Parse(model.DateLayout, day); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}

	snap := s.ledger.Snapshot()
	loc := s.ledger.Location()
	byID := make(map[string]*model.Product, len(snap.Products))
	for i := range snap.Products {
		byID[snap.Products[i].ID] = &snap.Products[i]
	}

	r := &DailyReport{
		Day:            day,
		Total:          decimal.Zero,
		DeliveredTotal: decimal.Zero,
		OpenTotal:      decimal.Zero,
		Orders:         []model.Order{},
		OlderPending:   []model.Order{},
		Production:     []ProductQty{},
		LowStock:       []ProductQty{},
	}
	for _, o := range snap.Orders {
		orderDay := o.CreatedAt.In(loc).Format(model.DateLayout)
		if orderDay < day && !o.Delivered() {
			r.OlderPending = append(r.OlderPending, o)
			continue
		}
		if orderDay != day {
			continue
		}
		r.Orders = append(r.Orders, o)
		r.OrderCount++
		r.Total = r.Total.Add(o.Total)
		if o.Delivered() {
			r.DeliveredCount++
			r.DeliveredTotal = r.DeliveredTotal.Add(o.Total)
		} else {
			r.OpenCount++
			r.OpenTotal = r.OpenTotal.Add(o.Total)
		}
		switch o.Payment {
		case model.PaymentCash:
			r.CashCount++
		case model.PaymentElectronic:
			r.ElectronicCount++
		}
	}

	produced := make(map[string]decimal.Decimal)
	var producedOrder []string
	for _, rec := range snap.Productions {
		if rec.Date != day {
			continue
		}
		if _, seen := produced[rec.ProductID]; !seen {
			producedOrder = append(producedOrder, rec.ProductID)
		}
		produced[rec.ProductID] = produced[rec.ProductID].Add(rec.QtyKg)
	}
	for _, id := range producedOrder {
		item := ProductQty{ProductID: id, Qty: produced[id], Unit: model.UnitKilogram}
		if p, ok := byID[id]; ok {
			item.Name = p.Name
			item.Unit = p.Unit()
		}
		r.Production = append(r.Production, item)
	}

	for i := range snap.Products {
		p := &snap.Products[i]
		if p.Active && p.StockKg.LessThanOrEqual(s.lowStockThreshold) {
			r.LowStock = append(r.LowStock, ProductQty{ProductID: p.ID, Name: p.Name, Unit: p.Unit(), Qty: p.StockKg})
		}
	}
	return r, nil
}

// MaxMovementDays bounds the movement window to one year.
const MaxMovementDays = 366

// Movement returns produced and sold quantities per day for the last n days, oldest first.
func (s *reportService) Movement(days int) ([]DayMovement, error) {
	if days <= 0 || days > MaxMovementDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrValidation, MaxMovementDays)
	}
	snap := s.ledger.Snapshot()
	loc := s.ledger.Location()

	today, _ := time.ParseInLocation(model.DateLayout, s.ledger.Today(), loc)
	buckets := make(map[string]*DayMovement, days)
	out := make([]DayMovement, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i).Format(model.DateLayout)
		out = append(out, DayMovement{Date: d, Produced: decimal.Zero, Sold: decimal.Zero, Revenue: decimal.Zero})
	}
	for i := range out {
		buckets[out[i].Date] = &out[i]
	}

	for _, rec := range snap.Productions {
		if b, ok := buckets[rec.Date]; ok {
			b.Produced = b.Produced.Add(rec.QtyKg)
		}
	}
	for _, o := range snap.Orders {
		b, ok := buckets[o.CreatedAt.In(loc).Format(model.DateLayout)]
		if !ok {
			continue
		}
		for _, l := range o.Lines {
			b.Sold = b.Sold.Add(l.QtyKg)
		}
		b.Revenue = b.Revenue.Add(o.Total)
	}
	return out, nil
}
