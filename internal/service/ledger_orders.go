package service

import (
	"fmt"
	"strings"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueOrder checks availability for every product in the request and, only if all of
// them have enough stock, freezes prices, allocates the next number and deducts stock.
func (s *ledgerService) IssueOrder(req IssueOrderRequest) (*model.Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Describe(errs))
	}
	payment := req.Payment
	if payment == "" {
		payment = model.PaymentCash
	}
	if !payment.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, payment)
	}

	s.mu.Lock()

	// Sum per product so two lines of the same product cannot each pass on their own.
	requested := make(map[string]decimal.Decimal, len(req.Lines))
	var productOrder []string
	for _, l := range req.Lines {
		if _, seen := requested[l.ProductID]; !seen {
			productOrder = append(productOrder, l.ProductID)
		}
		requested[l.ProductID] = requested[l.ProductID].Add(l.QtyKg)
	}
	for _, id := range productOrder {
		i := s.productIndex(id)
		if i < 0 {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		p := &s.products[i]
		if !p.Active {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrProductInactive, p.Name)
		}
		if p.StockKg.LessThan(requested[id]) {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s, available %s %s", ErrInsufficientStock, p.Name, p.StockKg.String(), p.Unit())
		}
	}

	now := s.clock.Now()
	s.orderSeq++
	order := model.Order{
		ID:        uuid.NewString(),
		Number:    fmt.Sprintf("%s-%04d", now.In(s.loc).Format("20060102"), s.orderSeq),
		CreatedAt: now.UTC(),
		Lines:     make([]model.OrderLine, 0, len(req.Lines)),
		Total:     decimal.Zero,
		PartyName: strings.TrimSpace(req.PartyName),
		Payment:   payment,
		Status:    model.StatusOpen,
	}
	for _, l := range req.Lines {
		p := &s.products[s.productIndex(l.ProductID)]
		line := model.OrderLine{
			ID:               uuid.NewString(),
			ProductID:        l.ProductID,
			QtyKg:            l.QtyKg,
			PricePerKgAtSale: p.SalePrice(),
		}
		order.Lines = append(order.Lines, line)
		order.Total = order.Total.Add(line.Subtotal())
	}
	s.orders = append([]model.Order{order}, s.orders...)
	for _, l := range order.Lines {
		s.adjustStock(l.ProductID, l.QtyKg.Neg())
	}
	s.touch()
	s.persist(colOrderSeq, colOrders, colProducts)
	out := cloneOrder(order)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionOrderIssued, Data: map[string]interface{}{
		"order": out,
	}})
	return &out, nil
}

// UpdateOrder merges the patch into an open order. Delivered orders reject every change.
func (s *ledgerService) UpdateOrder(id string, patch model.OrderPatch) (*model.Order, bool, error) {
	if patch.Payment != nil && !patch.Payment.Valid() {
		return nil, true, fmt.Errorf("%w: unknown payment method %q", ErrValidation, *patch.Payment)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, true, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
	}

	s.mu.Lock()
	i := s.orderIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, false, nil
	}
	o := &s.orders[i]
	if o.Delivered() {
		s.mu.Unlock()
		return nil, true, fmt.Errorf("%w: %s", ErrOrderDelivered, o.Number)
	}
	if patch.PartyName != nil {
		o.PartyName = strings.TrimSpace(*patch.PartyName)
	}
	if patch.Payment != nil {
		o.Payment = *patch.Payment
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	s.touch()
	s.persist(colOrders)
	out := cloneOrder(*o)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionOrderUpdated, Data: map[string]interface{}{
		"order": out,
	}})
	return &out, true, nil
}

// DeleteOrder restores each line's quantity and removes an open order.
func (s *ledgerService) DeleteOrder(id string) (MutationResult, error) {
	s.mu.Lock()
	i := s.orderIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return MutationResult{Found: false}, nil
	}
	order := s.orders[i]
	if order.Delivered() {
		s.mu.Unlock()
		return MutationResult{Found: true}, fmt.Errorf("%w: %s", ErrOrderDelivered, order.Number)
	}

	var adjs []StockAdjustment
	for _, l := range order.Lines {
		if adj, ok := s.adjustStock(l.ProductID, l.QtyKg); ok {
			adjs = append(adjs, adj)
		}
	}
	s.orders = append(s.orders[:i:i], s.orders[i+1:]...)
	s.touch()
	s.persist(colOrders, colProducts)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionOrderDeleted, Data: map[string]interface{}{
		"orderId": order.ID,
		"number":  order.Number,
	}})
	return MutationResult{Found: true, Warnings: clampWarnings(adjs...)}, nil
}

func (s *ledgerService) GetOrder(id string) (*model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.orderIndex(id)
	if i < 0 {
		return nil, false
	}
	out := cloneOrder(s.orders[i])
	return &out, true
}

func (s *ledgerService) ListOrders(filter OrderFilter) ([]model.Order, error) {
	if filter.Day != "" {
		if _, err := time.Parse(model.DateLayout, filter.Day); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, filter.Day)
		}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.Day != "" && o.CreatedAt.In(s.loc).Format(model.DateLayout) != filter.Day {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (s *ledgerService) orderIndex(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}
