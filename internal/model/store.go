package model

type Store struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	Location string `gorm:"type:varchar(200);not null" json:"location" validate:"required"`

	// Relations
	InventoryItems []InventoryItem `json:"inventory_items,omitempty"`
}
