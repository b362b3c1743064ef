package repository

import (
	"path/filepath"
	"testing"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newSQLiteRepo(t *testing.T) StateRepository {
	t.Helper()
	db, err := database.ConnectDB(database.Options{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "ledger.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.StateEntry{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStateRepo(db)
}

func repos(t *testing.T) map[string]StateRepository {
	return map[string]StateRepository{
		"sqlite": newSQLiteRepo(t),
		"memory": NewMemoryStateRepo(),
	}
}

func TestStateRepo_EmptyStore(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			products, found, err := repo.LoadProducts()
			require.NoError(t, err)
			assert.False(t, found)
			assert.Empty(t, products)

			orders, err := repo.LoadOrders()
			require.NoError(t, err)
			assert.Empty(t, orders)

			seq, err := repo.LoadOrderSeq()
			require.NoError(t, err)
			assert.Zero(t, seq)

			_, found, err = repo.LoadAccessCode()
			require.NoError(t, err)
			assert.False(t, found)

			updatedAt, err := repo.LoadUpdatedAt()
			require.NoError(t, err)
			assert.True(t, updatedAt.IsZero())
		})
	}
}

func TestStateRepo_SaveAndLoad(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			products := []model.Product{{
				ID: "p-1", Name: "Nuggets", Category: "Snack & Kids", Code: "AC-NUGGETS",
				PriceStore: decimal.NewNullDecimal(decimal.NewFromInt(14000)),
				StockKg:    decimal.RequireFromString("2.5"), Active: true,
			}}
			orders := []model.Order{{
				ID: "o-1", Number: "20240501-0001", CreatedAt: createdAt,
				Lines: []model.OrderLine{{ID: "l-1", ProductID: "p-1", QtyKg: decimal.NewFromInt(1), PricePerKgAtSale: decimal.NewFromInt(14000)}},
				Total: decimal.NewFromInt(14000), Payment: model.PaymentCash, Status: model.StatusOpen,
			}}
			productions := []model.ProductionRecord{{ID: "r-1", ProductID: "p-1", QtyKg: decimal.RequireFromString("3.5"), Date: "2024-05-01"}}

			require.NoError(t, repo.SaveProducts(products))
			require.NoError(t, repo.SaveOrders(orders))
			require.NoError(t, repo.SaveProductions(productions))
			require.NoError(t, repo.SaveOrderSeq(41))
			require.NoError(t, repo.SaveOrderSeq(42))
			require.NoError(t, repo.SaveAccessCode("1234"))
			require.NoError(t, repo.SaveSchemaVersion(model.SchemaVersion))
			require.NoError(t, repo.SaveUpdatedAt(createdAt))

			gotProducts, found, err := repo.LoadProducts()
			require.NoError(t, err)
			require.True(t, found)
			require.Len(t, gotProducts, 1)
			assert.Equal(t, "Nuggets", gotProducts[0].Name)
			assert.True(t, gotProducts[0].StockKg.Equal(decimal.RequireFromString("2.5")))
			assert.True(t, gotProducts[0].PriceStore.Valid)
			assert.False(t, gotProducts[0].PricePerKg.Valid)

			gotOrders, err := repo.LoadOrders()
			require.NoError(t, err)
			require.Len(t, gotOrders, 1)
			assert.Equal(t, "20240501-0001", gotOrders[0].Number)
			assert.True(t, gotOrders[0].CreatedAt.Equal(createdAt))
			require.Len(t, gotOrders[0].Lines, 1)

			gotProductions, err := repo.LoadProductions()
			require.NoError(t, err)
			require.Len(t, gotProductions, 1)
			assert.Equal(t, "2024-05-01", gotProductions[0].Date)

			seq, err := repo.LoadOrderSeq()
			require.NoError(t, err)
			assert.Equal(t, 42, seq)

			code, found, err := repo.LoadAccessCode()
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "1234", code)

			version, err := repo.LoadSchemaVersion()
			require.NoError(t, err)
			assert.Equal(t, model.SchemaVersion, version)

			updatedAt, err := repo.LoadUpdatedAt()
			require.NoError(t, err)
			assert.True(t, updatedAt.Equal(createdAt))
		})
	}
}

func TestStateRepo_EmptySlicesStoredAsArrays(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.SaveProducts(nil))

			products, found, err := repo.LoadProducts()
			require.NoError(t, err)
			assert.True(t, found)
			assert.NotNil(t, products)
			assert.Empty(t, products)
		})
	}
}
