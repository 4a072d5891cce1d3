package model

import "github.com/google/uuid"

// InventoryItem tracks the quantity of one product at one store.
// One row per (store, product) pair, created lazily on first stock movement.
type InventoryItem struct {
	BaseModel
	StoreID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_product" json:"store_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`

	Store   *Store   `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
