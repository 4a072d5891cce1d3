package repository

import (
	"retail-inventory-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	EnsureItem(tx *gorm.DB, storeID, productID uuid.UUID) (*model.InventoryItem, error)
	ApplyDelta(tx *gorm.DB, storeID, productID uuid.UUID, delta int) (*model.InventoryItem, bool, error)
	FindByStoreAndProduct(storeID, productID uuid.UUID) (*model.InventoryItem, error)
	FindAll(storeID *uuid.UUID) ([]model.InventoryItem, error)
	TotalUnits() (int64, error)
	LowStock(storeID *uuid.UUID) ([]LowStockItem, error)
	LowStockCount() (int64, error)
}

// LowStockItem is one row of the low stock report
type LowStockItem struct {
	StoreID      uuid.UUID `json:"store_id"`
	StoreName    string    `json:"store_name"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSKU   string    `json:"product_sku"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
	Shortage     int       `json:"shortage"`
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

// EnsureItem creates the (store, product) row with quantity 0 if absent.
// Runs on the caller's transaction handle. The insert is conflict-tolerant:
// two first movements racing on the same pair both fall through to the
// guarded UPDATE instead of aborting on the unique index.
func (r *inventoryRepo) EnsureItem(tx *gorm.DB, storeID, productID uuid.UUID) (*model.InventoryItem, error) {
	item := model.InventoryItem{StoreID: storeID, ProductID: productID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
		return nil, err
	}

	// Re-read: on conflict the insert was skipped and item holds no row
	var existing model.InventoryItem
	if err := tx.Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// ApplyDelta adds delta to the row's quantity in a single guarded UPDATE
// that refuses to drive the quantity negative. The UPDATE takes the row
// lock, so two concurrent mutations on the same pair cannot both apply
// against the same pre-update value. Returns applied=false when the guard
// rejected the change (insufficient stock).
func (r *inventoryRepo) ApplyDelta(tx *gorm.DB, storeID, productID uuid.UUID, delta int) (*model.InventoryItem, bool, error) {
	res := tx.Model(&model.InventoryItem{}).
		Where("store_id = ? AND product_id = ? AND quantity + ? >= 0", storeID, productID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	var item model.InventoryItem
	if err := tx.Where("store_id = ? AND product_id = ?", storeID, productID).First(&item).Error; err != nil {
		return nil, false, err
	}
	return &item, true, nil
}

func (r *inventoryRepo) FindByStoreAndProduct(storeID, productID uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.Where("store_id = ? AND product_id = ?", storeID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepo) FindAll(storeID *uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	q := r.db.Preload("Store").Preload("Product")
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *inventoryRepo) TotalUnits() (int64, error) {
	var total int64
	err := r.db.Model(&model.InventoryItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

func (r *inventoryRepo) lowStockQuery(storeID *uuid.UUID) *gorm.DB {
	q := r.db.Model(&model.InventoryItem{}).
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Where("inventory_items.quantity <= products.reorder_level")
	if storeID != nil {
		q = q.Where("inventory_items.store_id = ?", *storeID)
	}
	return q
}

func (r *inventoryRepo) LowStock(storeID *uuid.UUID) ([]LowStockItem, error) {
	var items []LowStockItem
	err := r.lowStockQuery(storeID).
		Joins("JOIN stores ON stores.id = inventory_items.store_id").
		Select(`inventory_items.store_id,
			stores.name AS store_name,
			inventory_items.product_id,
			products.name AS product_name,
			products.sku AS product_sku,
			inventory_items.quantity,
			products.reorder_level,
			products.reorder_level - inventory_items.quantity AS shortage`).
		Order("shortage DESC").
		Scan(&items).Error
	return items, err
}

func (r *inventoryRepo) LowStockCount() (int64, error) {
	var count int64
	err := r.lowStockQuery(nil).Count(&count).Error
	return count, err
}
