package service

import (
	"fmt"
	"strings"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/validator"

	"github.com/google/uuid"
)

// SaveProduct creates the product when its id is empty or unknown, otherwise replaces the
// stored product's fields. It reports whether a new product was created.
func (s *ledgerService) SaveProduct(p model.Product) (*model.Product, bool, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Code = strings.TrimSpace(p.Code)
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Hex = strings.TrimSpace(p.Hex)
	if p.Hex == "" {
		p.Hex = model.DefaultHex
	}
	if errs := validator.ValidateStruct(&p); len(errs) > 0 {
		return nil, false, fmt.Errorf("%w: %s", ErrValidation, validator.Describe(errs))
	}

	s.mu.Lock()
	created := false
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if i := s.productIndex(p.ID); i >= 0 {
		s.products[i] = p
	} else {
		created = true
		s.products = append([]model.Product{p}, s.products...)
	}
	s.touch()
	s.persist(colProducts)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionProductSaved, Data: map[string]interface{}{
		"product": p,
		"created": created,
	}})
	return &p, created, nil
}

func (s *ledgerService) ToggleProductActive(id string) (*model.Product, bool) {
	s.mu.Lock()
	i := s.productIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, false
	}
	s.products[i].Active = !s.products[i].Active
	out := s.products[i]
	s.touch()
	s.persist(colProducts)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionProductToggled, Data: map[string]interface{}{
		"productId": out.ID,
		"active":    out.Active,
	}})
	return &out, true
}

func (s *ledgerService) GetProduct(id string) (*model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(id)
	if i < 0 {
		return nil, false
	}
	out := s.products[i]
	return &out, true
}

func (s *ledgerService) ListProducts(filter ProductFilter) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0, len(s.products))
	for i := range s.products {
		p := &s.products[i]
		if !p.Active && !filter.IncludeInactive {
			continue
		}
		if !p.Matches(filter.Term, filter.Barcode) {
			continue
		}
		out = append(out, *p)
	}
	return out
}
