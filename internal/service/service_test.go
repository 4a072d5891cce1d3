package service

import (
	"testing"

	"retail-inventory-ws/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory test database. A single connection is
// enforced so every in-memory handle sees the same database and
// concurrent transactions serialize at the pool.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Store{},
		&model.Product{},
		&model.InventoryItem{},
		&model.Transaction{},
		&model.User{},
		&model.Permission{},
	))
	return db
}

func createTestStore(t *testing.T, db *gorm.DB, name string) *model.Store {
	t.Helper()
	store := &model.Store{Name: name, Location: name + " St"}
	require.NoError(t, db.Create(store).Error)
	return store
}

func createTestProduct(t *testing.T, db *gorm.DB, sku string, reorderLevel int) *model.Product {
	t.Helper()
	product := &model.Product{
		SKU:          sku,
		Name:         "Product " + sku,
		Category:     "Test",
		ReorderLevel: reorderLevel,
		UnitCost:     10,
		SellingPrice: 15,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func managerActor() model.Actor {
	return model.Actor{
		ID:          uuid.New(),
		Username:    "manager",
		Role:        model.RoleManager,
		Permissions: model.RoleDefaultPermissions[model.RoleManager],
	}
}

func staffActor() model.Actor {
	return model.Actor{
		ID:       uuid.New(),
		Username: "staff",
		Role:     model.RoleStaff,
	}
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
	return count
}

func itemQuantity(t *testing.T, db *gorm.DB, storeID, productID uuid.UUID) int {
	t.Helper()
	var item model.InventoryItem
	err := db.Where("store_id = ? AND product_id = ?", storeID, productID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(t, err)
	return item.Quantity
}
