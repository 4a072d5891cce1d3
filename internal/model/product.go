package model

type Product struct {
	BaseModel
	SKU          string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name         string  `gorm:"type:varchar(200);not null" json:"name" validate:"required"`
	Category     string  `gorm:"type:varchar(100);not null" json:"category" validate:"required"`
	ReorderLevel int     `gorm:"not null;default:10" json:"reorder_level" validate:"gte=0"`
	UnitCost     float64 `gorm:"not null;default:0" json:"unit_cost" validate:"gte=0"`
	SellingPrice float64 `gorm:"not null;default:0" json:"selling_price" validate:"gte=0"`

	// Relations
	InventoryItems []InventoryItem `json:"inventory_items,omitempty"`
	Transactions   []Transaction   `json:"transactions,omitempty"`
}
