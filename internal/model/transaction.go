package model

import "github.com/google/uuid"

type TransactionType string

const (
	TxIn       TransactionType = "IN"
	TxOut      TransactionType = "OUT"
	TxTransfer TransactionType = "TRANSFER"
)

// Transaction is the append-only audit log of stock movements. Every
// committed quantity change has exactly one row; rows are never updated
// or deleted. For transfers StoreID is the source and RelatedStoreID the
// destination, with both sides' quantity snapshots recorded.
type Transaction struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	StoreID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	Type      TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int             `gorm:"not null" json:"quantity"` // always positive, direction is in Type

	// Quantity snapshots for the StoreID side
	PreviousQuantity int `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int `gorm:"not null" json:"new_quantity"`

	// Transfer destination side (nil for IN/OUT)
	RelatedStoreID          *uuid.UUID `gorm:"type:uuid;index" json:"related_store_id,omitempty"`
	RelatedPreviousQuantity *int       `json:"related_previous_quantity,omitempty"`
	RelatedNewQuantity      *int       `json:"related_new_quantity,omitempty"`

	Note   string     `gorm:"type:text" json:"note"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	Product      *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Store        *Store   `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	RelatedStore *Store   `gorm:"foreignKey:RelatedStoreID" json:"related_store,omitempty"`
	User         *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
