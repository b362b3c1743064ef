package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/pkg/clock"
	"go-pos-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrEmptyOrder        = errors.New("order has no lines")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidDate       = errors.New("invalid date")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is inactive")
	ErrOrderDelivered    = errors.New("order already delivered")
)

// Change actions broadcast after a committed mutation.
const (
	ActionStockAdjusted     = "stock_adjusted"
	ActionProductSaved      = "product_saved"
	ActionProductToggled    = "product_toggled"
	ActionProductionAdded   = "production_added"
	ActionProductionEdited  = "production_edited"
	ActionProductionDeleted = "production_deleted"
	ActionOrderIssued       = "order_issued"
	ActionOrderUpdated      = "order_updated"
	ActionOrderDeleted      = "order_deleted"
	ActionSnapshotApplied   = "snapshot_applied"
	ActionAccessCodeChanged = "access_code_changed"
)

// ChangeEvent describes one committed ledger mutation.
type ChangeEvent struct {
	Action string
	Data   map[string]interface{}
}

// ChangeListener is called after every committed mutation, outside the ledger lock.
// Implementations must not block.
type ChangeListener interface {
	LedgerChanged(event ChangeEvent)
}

// StockAdjustment reports what adjustStock did. Clamped is set when the requested delta
// would have taken stock below zero and only part of it was applied.
type StockAdjustment struct {
	ProductID string          `json:"productId"`
	Requested decimal.Decimal `json:"requested"`
	Applied   decimal.Decimal `json:"applied"`
	Previous  decimal.Decimal `json:"previous"`
	Current   decimal.Decimal `json:"current"`
	Clamped   bool            `json:"clamped"`
}

// MutationResult is returned by operations that silently ignore unknown ids.
type MutationResult struct {
	Found    bool              `json:"found"`
	Warnings []StockAdjustment `json:"warnings,omitempty"`
}

type AddProductionRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	QtyKg     decimal.Decimal `json:"qtyKg" validate:"gt=0"`
	Date      string          `json:"date"`
}

type EditProductionRequest struct {
	QtyKg decimal.Decimal `json:"qtyKg" validate:"gt=0"`
	Date  string          `json:"date" validate:"required"`
}

type IssueOrderRequest struct {
	Lines     []model.DraftLine   `json:"lines" validate:"dive"`
	PartyName string              `json:"partyName"`
	Payment   model.PaymentMethod `json:"payment"`
}

type ProductFilter struct {
	Term            string
	Barcode         string
	IncludeInactive bool
}

type OrderFilter struct {
	Day    string
	Status model.OrderStatus
}

type ProductionFilter struct {
	Day       string
	ProductID string
}

type LedgerService interface {
	Load() error
	Subscribe(l ChangeListener)
	Location() *time.Location
	Today() string

	AdjustStock(productID string, delta decimal.Decimal) (StockAdjustment, bool)

	AddProduction(req AddProductionRequest) (*model.ProductionRecord, error)
	EditProduction(id string, req EditProductionRequest) (MutationResult, error)
	DeleteProduction(id string) MutationResult
	ListProductions(filter ProductionFilter) ([]model.ProductionRecord, error)

	IssueOrder(req IssueOrderRequest) (*model.Order, error)
	UpdateOrder(id string, patch model.OrderPatch) (*model.Order, bool, error)
	DeleteOrder(id string) (MutationResult, error)
	GetOrder(id string) (*model.Order, bool)
	ListOrders(filter OrderFilter) ([]model.Order, error)

	SaveProduct(p model.Product) (*model.Product, bool, error)
	ToggleProductActive(id string) (*model.Product, bool)
	GetProduct(id string) (*model.Product, bool)
	ListProducts(filter ProductFilter) []model.Product

	AccessCode() string
	SetAccessCode(code string)

	Snapshot() model.Snapshot
	ApplySnapshot(snap model.Snapshot) (bool, error)
}

type ledgerService struct {
	repo  repository.StateRepository
	clock clock.Clock
	loc   *time.Location

	mu          sync.Mutex
	products    []model.Product
	orders      []model.Order
	productions []model.ProductionRecord
	orderSeq    int
	accessCode  string
	updatedAt   time.Time

	listenersMu sync.RWMutex
	listeners   []ChangeListener
}

func NewLedgerService(repo repository.StateRepository, clk clock.Clock, loc *time.Location) LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &ledgerService{
		repo:        repo,
		clock:       clk,
		loc:         loc,
		products:    []model.Product{},
		orders:      []model.Order{},
		productions: []model.ProductionRecord{},
	}
}

// Load reads every collection from the repository. The catalog is reseeded when it was
// never stored or was written under an older schema version.
func (s *ledgerService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	version, err := s.repo.LoadSchemaVersion()
	if err != nil {
		return fmt.Errorf("load schema version: %w", err)
	}
	products, found, err := s.repo.LoadProducts()
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	if !found || version < model.SchemaVersion {
		log.Info().Int("stored_version", version).Int("version", model.SchemaVersion).Msg("reseeding product catalog")
		products = model.SeedProducts()
		if err := s.repo.SaveProducts(products); err != nil {
			return fmt.Errorf("save seeded products: %w", err)
		}
		if err := s.repo.SaveSchemaVersion(model.SchemaVersion); err != nil {
			return fmt.Errorf("save schema version: %w", err)
		}
	}

	orders, err := s.repo.LoadOrders()
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	for i := range orders {
		orders[i].Normalize()
	}
	productions, err := s.repo.LoadProductions()
	if err != nil {
		return fmt.Errorf("load productions: %w", err)
	}
	seq, err := s.repo.LoadOrderSeq()
	if err != nil {
		return fmt.Errorf("load order seq: %w", err)
	}
	code, found, err := s.repo.LoadAccessCode()
	if err != nil {
		return fmt.Errorf("load access code: %w", err)
	}
	if !found || code == "" {
		code = model.DefaultAccessCode
		if err := s.repo.SaveAccessCode(code); err != nil {
			return fmt.Errorf("save access code: %w", err)
		}
	}
	updatedAt, err := s.repo.LoadUpdatedAt()
	if err != nil {
		return fmt.Errorf("load updated at: %w", err)
	}

	s.products = nonNilProducts(products)
	s.orders = nonNilOrders(orders)
	s.productions = nonNilProductions(productions)
	s.orderSeq = seq
	s.accessCode = code
	s.updatedAt = updatedAt

	log.Info().
		Int("products", len(s.products)).
		Int("orders", len(s.orders)).
		Int("productions", len(s.productions)).
		Int("order_seq", s.orderSeq).
		Msg("ledger loaded")
	return nil
}

func (s *ledgerService) Subscribe(l ChangeListener) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, l)
	s.listenersMu.Unlock()
}

func (s *ledgerService) emit(ev *ChangeEvent) {
	if ev == nil {
		return
	}
	s.listenersMu.RLock()
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.listenersMu.RUnlock()
	for _, l := range listeners {
		l.LedgerChanged(*ev)
	}
}

func (s *ledgerService) Location() *time.Location {
	return s.loc
}

func (s *ledgerService) Today() string {
	return s.clock.Now().In(s.loc).Format(model.DateLayout)
}

// --- persistence ---

type collection int

const (
	colProducts collection = iota
	colOrders
	colProductions
	colOrderSeq
	colAccessCode
)

// persist writes the named collections plus the update stamp. Failures are logged and
// the in-memory state stays authoritative.
func (s *ledgerService) persist(cols ...collection) {
	for _, c := range cols {
		var err error
		var key string
		switch c {
		case colProducts:
			key, err = repository.KeyProducts, s.repo.SaveProducts(s.products)
		case colOrders:
			key, err = repository.KeyOrders, s.repo.SaveOrders(s.orders)
		case colProductions:
			key, err = repository.KeyProductions, s.repo.SaveProductions(s.productions)
		case colOrderSeq:
			key, err = repository.KeyOrderSeq, s.repo.SaveOrderSeq(s.orderSeq)
		case colAccessCode:
			key, err = repository.KeyAccessCode, s.repo.SaveAccessCode(s.accessCode)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("persist failed")
		}
	}
	if err := s.repo.SaveUpdatedAt(s.updatedAt); err != nil {
		log.Warn().Err(err).Str("key", repository.KeyUpdatedAt).Msg("persist failed")
	}
}

// touch stamps a local mutation. The stamp never moves backwards so a snapshot applied
// from a device with a skewed clock is not immediately shadowed.
func (s *ledgerService) touch() {
	now := s.clock.Now().UTC()
	if !now.After(s.updatedAt) {
		now = s.updatedAt.Add(time.Millisecond)
	}
	s.updatedAt = now
}

// --- stock ---

func (s *ledgerService) AdjustStock(productID string, delta decimal.Decimal) (StockAdjustment, bool) {
	s.mu.Lock()
	adj, ok := s.adjustStock(productID, delta)
	var ev *ChangeEvent
	if ok {
		s.touch()
		s.persist(colProducts)
		ev = &ChangeEvent{Action: ActionStockAdjusted, Data: map[string]interface{}{"adjustment": adj}}
	}
	s.mu.Unlock()

	s.emit(ev)
	return adj, ok
}

// adjustStock adds delta to a product's stock, clamped at zero. Caller holds s.mu.
func (s *ledgerService) adjustStock(productID string, delta decimal.Decimal) (StockAdjustment, bool) {
	adj := StockAdjustment{ProductID: productID, Requested: delta}
	i := s.productIndex(productID)
	if i < 0 {
		return adj, false
	}
	p := &s.products[i]
	adj.Previous = p.StockKg
	next := p.StockKg.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
		adj.Clamped = true
		log.Warn().
			Str("product_id", productID).
			Str("requested", delta.String()).
			Str("previous", adj.Previous.String()).
			Msg("stock adjustment clamped at zero")
	}
	p.StockKg = next
	adj.Current = next
	adj.Applied = next.Sub(adj.Previous)
	return adj, true
}

func (s *ledgerService) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func clampWarnings(adjs ...StockAdjustment) []StockAdjustment {
	var out []StockAdjustment
	for _, a := range adjs {
		if a.Clamped {
			out = append(out, a)
		}
	}
	return out
}

// --- production ---

func (s *ledgerService) AddProduction(req AddProductionRequest) (*model.ProductionRecord, error) {
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Describe(errs))
	}

	s.mu.Lock()
	i := s.productIndex(req.ProductID)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, req.ProductID)
	}
	if err := checkProductionQty(&s.products[i], req.QtyKg); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	date, err := s.resolveDate(req.Date)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	rec := model.ProductionRecord{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		QtyKg:     req.QtyKg,
		Date:      date,
	}
	s.productions = append([]model.ProductionRecord{rec}, s.productions...)
	adj, _ := s.adjustStock(req.ProductID, req.QtyKg)
	s.touch()
	s.persist(colProductions, colProducts)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionProductionAdded, Data: map[string]interface{}{
		"production": rec,
		"stock":      adj.Current,
	}})
	return &rec, nil
}

func (s *ledgerService) EditProduction(id string, req EditProductionRequest) (MutationResult, error) {
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return MutationResult{}, fmt.Errorf("%w: %s", ErrValidation, validator.Describe(errs))
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return MutationResult{}, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	s.mu.Lock()
	idx := -1
	for i := range s.productions {
		if s.productions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return MutationResult{Found: false}, nil
	}
	rec := &s.productions[idx]
	if pi := s.productIndex(rec.ProductID); pi >= 0 {
		if err := checkProductionQty(&s.products[pi], req.QtyKg); err != nil {
			s.mu.Unlock()
			return MutationResult{}, err
		}
	}

	delta := req.QtyKg.Sub(rec.QtyKg)
	adj, _ := s.adjustStock(rec.ProductID, delta)
	rec.QtyKg = req.QtyKg
	rec.Date = req.Date
	updated := *rec
	s.touch()
	s.persist(colProductions, colProducts)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionProductionEdited, Data: map[string]interface{}{
		"production": updated,
		"delta":      delta,
	}})
	return MutationResult{Found: true, Warnings: clampWarnings(adj)}, nil
}

func (s *ledgerService) DeleteProduction(id string) MutationResult {
	s.mu.Lock()
	idx := -1
	for i := range s.productions {
		if s.productions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return MutationResult{Found: false}
	}
	rec := s.productions[idx]
	adj, _ := s.adjustStock(rec.ProductID, rec.QtyKg.Neg())
	s.productions = append(s.productions[:idx:idx], s.productions[idx+1:]...)
	s.touch()
	s.persist(colProductions, colProducts)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionProductionDeleted, Data: map[string]interface{}{
		"production": rec,
	}})
	return MutationResult{Found: true, Warnings: clampWarnings(adj)}
}

func (s *ledgerService) ListProductions(filter ProductionFilter) ([]model.ProductionRecord, error) {
	if filter.Day != "" {
		if _, err := time.Parse(model.DateLayout, filter.Day); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, filter.Day)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ProductionRecord, 0, len(s.productions))
	for _, rec := range s.productions {
		if filter.Day != "" && rec.Date != filter.Day {
			continue
		}
		if filter.ProductID != "" && rec.ProductID != filter.ProductID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func checkProductionQty(p *model.Product, qty decimal.Decimal) error {
	minQty := p.MinProductionQty()
	if qty.LessThan(minQty) {
		return fmt.Errorf("%w: minimum for %s is %s %s", ErrInvalidQuantity, p.Name, minQty.String(), p.Unit())
	}
	return nil
}

// resolveDate defaults an empty date to today in the ledger's zone.
func (s *ledgerService) resolveDate(raw string) (string, error) {
	if raw == "" {
		return s.clock.Now().In(s.loc).Format(model.DateLayout), nil
	}
	if _, err := time.Parse(model.DateLayout, raw); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return raw, nil
}

// --- access code ---

func (s *ledgerService) AccessCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessCode
}

func (s *ledgerService) SetAccessCode(code string) {
	s.mu.Lock()
	s.accessCode = code
	s.touch()
	s.persist(colAccessCode)
	s.mu.Unlock()

	s.emit(&ChangeEvent{Action: ActionAccessCodeChanged, Data: map[string]interface{}{}})
}

// --- snapshot ---

func (s *ledgerService) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]model.Order, len(s.orders))
	for i := range s.orders {
		orders[i] = cloneOrder(s.orders[i])
	}
	return model.Snapshot{
		Products:    append([]model.Product{}, s.products...),
		Orders:      orders,
		Productions: append([]model.ProductionRecord{}, s.productions...),
		OrderSeq:    s.orderSeq,
		Pin:         s.accessCode,
		UpdatedAt:   s.updatedAt,
	}
}

// ApplySnapshot replaces the whole local state when snap is strictly newer. It reports
// whether the snapshot was applied. A bundle that breaks a stock invariant is rejected as a
// whole with ErrValidation.
func (s *ledgerService) ApplySnapshot(snap model.Snapshot) (bool, error) {
	if err := checkSnapshot(&snap); err != nil {
		log.Warn().Err(err).Time("updated_at", snap.UpdatedAt).Msg("snapshot rejected")
		return false, err
	}

	s.mu.Lock()
	current := model.Snapshot{UpdatedAt: s.updatedAt}
	if !snap.NewerThan(&current) {
		s.mu.Unlock()
		return false, nil
	}

	orders := nonNilOrders(snap.Orders)
	for i := range orders {
		orders[i] = cloneOrder(orders[i])
		orders[i].Normalize()
	}
	s.products = append([]model.Product{}, nonNilProducts(snap.Products)...)
	s.orders = orders
	s.productions = append([]model.ProductionRecord{}, nonNilProductions(snap.Productions)...)
	s.orderSeq = snap.OrderSeq
	if snap.Pin != "" {
		s.accessCode = snap.Pin
	}
	s.updatedAt = snap.UpdatedAt
	s.persist(colProducts, colOrders, colProductions, colOrderSeq, colAccessCode)
	updatedAt := s.updatedAt
	s.mu.Unlock()

	log.Info().Time("updated_at", updatedAt).Msg("snapshot applied")
	s.emit(&ChangeEvent{Action: ActionSnapshotApplied, Data: map[string]interface{}{
		"updatedAt": updatedAt,
	}})
	return true, nil
}

// checkSnapshot validates every product and requires positive quantities on order lines
// and production records.
func checkSnapshot(snap *model.Snapshot) error {
	for i := range snap.Products {
		p := &snap.Products[i]
		if errs := validator.ValidateStruct(p); len(errs) > 0 {
			return fmt.Errorf("%w: snapshot product %q: %s", ErrValidation, p.ID, validator.Describe(errs))
		}
	}
	for _, o := range snap.Orders {
		for _, l := range o.Lines {
			if !l.QtyKg.IsPositive() {
				return fmt.Errorf("%w: snapshot order %s has a line with quantity %s", ErrValidation, o.Number, l.QtyKg.String())
			}
		}
	}
	for _, rec := range snap.Productions {
		if !rec.QtyKg.IsPositive() {
			return fmt.Errorf("%w: snapshot production %q has quantity %s", ErrValidation, rec.ID, rec.QtyKg.String())
		}
	}
	return nil
}

func cloneOrder(o model.Order) model.Order {
	o.Lines = append([]model.OrderLine{}, o.Lines...)
	return o
}

func nonNilProducts(p []model.Product) []model.Product {
	if p == nil {
		return []model.Product{}
	}
	return p
}

func nonNilOrders(o []model.Order) []model.Order {
	if o == nil {
		return []model.Order{}
	}
	return o
}

func nonNilProductions(p []model.ProductionRecord) []model.ProductionRecord {
	if p == nil {
		return []model.ProductionRecord{}
	}
	return p
}
