package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-pos-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Keys of the ledger's key-value state, one logical record each.
const (
	KeyProducts      = "products_v1"
	KeyOrders        = "orders_v1"
	KeyProductions   = "productions_v1"
	KeyOrderSeq      = "order_seq_v1"
	KeyAccessCode    = "access_code_v1"
	KeySchemaVersion = "schema_version"
	KeyUpdatedAt     = "updated_at"
)

// StateRepository loads and saves the ledger collections one key at a time.
// Load methods return a zero value and found=false for keys never written.
type StateRepository interface {
	LoadProducts() ([]model.Product, bool, error)
	SaveProducts(products []model.Product) error
	LoadOrders() ([]model.Order, error)
	SaveOrders(orders []model.Order) error
	LoadProductions() ([]model.ProductionRecord, error)
	SaveProductions(productions []model.ProductionRecord) error
	LoadOrderSeq() (int, error)
	SaveOrderSeq(seq int) error
	LoadAccessCode() (string, bool, error)
	SaveAccessCode(code string) error
	LoadSchemaVersion() (int, error)
	SaveSchemaVersion(version int) error
	LoadUpdatedAt() (time.Time, error)
	SaveUpdatedAt(t time.Time) error
}

// kvBackend is the raw string store underneath a StateRepository.
type kvBackend interface {
	get(key string) (string, bool, error)
	put(key, value string) error
}

type stateRepo struct {
	kv kvBackend
}

// NewStateRepo stores the ledger in the ledger_state table.
func NewStateRepo(db *gorm.DB) StateRepository {
	return &stateRepo{kv: &gormBackend{db: db}}
}

func (r *stateRepo) LoadProducts() ([]model.Product, bool, error) {
	var products []model.Product
	found, err := r.getJSON(KeyProducts, &products)
	return products, found, err
}

func (r *stateRepo) SaveProducts(products []model.Product) error {
	return r.putJSON(KeyProducts, nonNil(products))
}

func (r *stateRepo) LoadOrders() ([]model.Order, error) {
	var orders []model.Order
	_, err := r.getJSON(KeyOrders, &orders)
	return orders, err
}

func (r *stateRepo) SaveOrders(orders []model.Order) error {
	return r.putJSON(KeyOrders, nonNil(orders))
}

func (r *stateRepo) LoadProductions() ([]model.ProductionRecord, error) {
	var productions []model.ProductionRecord
	_, err := r.getJSON(KeyProductions, &productions)
	return productions, err
}

func (r *stateRepo) SaveProductions(productions []model.ProductionRecord) error {
	return r.putJSON(KeyProductions, nonNil(productions))
}

func (r *stateRepo) LoadOrderSeq() (int, error) {
	return r.getInt(KeyOrderSeq)
}

func (r *stateRepo) SaveOrderSeq(seq int) error {
	return r.kv.put(KeyOrderSeq, strconv.Itoa(seq))
}

func (r *stateRepo) LoadAccessCode() (string, bool, error) {
	return r.kv.get(KeyAccessCode)
}

func (r *stateRepo) SaveAccessCode(code string) error {
	return r.kv.put(KeyAccessCode, code)
}

func (r *stateRepo) LoadSchemaVersion() (int, error) {
	return r.getInt(KeySchemaVersion)
}

func (r *stateRepo) SaveSchemaVersion(version int) error {
	return r.kv.put(KeySchemaVersion, strconv.Itoa(version))
}

func (r *stateRepo) LoadUpdatedAt() (time.Time, error) {
	raw, found, err := r.kv.get(KeyUpdatedAt)
	if err != nil || !found || raw == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode %s: %w", KeyUpdatedAt, err)
	}
	return t, nil
}

func (r *stateRepo) SaveUpdatedAt(t time.Time) error {
	return r.kv.put(KeyUpdatedAt, t.UTC().Format(time.RFC3339Nano))
}

func (r *stateRepo) getJSON(key string, dest interface{}) (bool, error) {
	raw, found, err := r.kv.get(key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *stateRepo) putJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.kv.put(key, string(data))
}

// getInt treats a missing or non-numeric value as zero, like a fresh counter.
func (r *stateRepo) getInt(key string) (int, error) {
	raw, found, err := r.kv.get(key)
	if err != nil || !found {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

type gormBackend struct {
	db *gorm.DB
}

func (b *gormBackend) get(key string) (string, bool, error) {
	var entry model.StateEntry
	if err := b.db.Where(&model.StateEntry{Key: key}).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (b *gormBackend) put(key, value string) error {
	entry := model.StateEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
