package service

import (
	"bytes"
	"errors"
	"time"

	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"
	"retail-inventory-ws/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPermissionDenied  = errors.New("insufficient permissions")
	ErrInvalidDelta      = errors.New("delta must be a non-zero integer")
	ErrEmptyReason       = errors.New("reason is required")
	ErrInvalidQuantity   = errors.New("transfer quantity must be positive")
	ErrSameStoreTransfer = errors.New("cannot transfer to the same store")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStoreNotFound     = errors.New("store not found")
	ErrProductNotFound   = errors.New("product not found")

	// errTransferDestination marks a guarded destination update that
	// matched no row. The destination row is ensured just before the
	// update and the delta is positive, so hitting this means the
	// transaction state is inconsistent and the caller sees a 500.
	errTransferDestination = errors.New("transfer destination update failed")
)

// AdjustStockRequest applies a signed delta to one (store, product) pair.
type AdjustStockRequest struct {
	StoreID   uuid.UUID `json:"store_id" validate:"uuid_required"`
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
}

type AdjustStockResult struct {
	NewQuantity   int       `json:"new_quantity"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// TransferStockRequest moves quantity between two stores atomically.
type TransferStockRequest struct {
	FromStore uuid.UUID `json:"from_store" validate:"uuid_required"`
	ToStore   uuid.UUID `json:"to_store" validate:"uuid_required"`
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
}

type StockLevel struct {
	NewQuantity int `json:"new_quantity"`
}

type TransferStockResult struct {
	FromStore     StockLevel `json:"from_store"`
	ToStore       StockLevel `json:"to_store"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	Timestamp     time.Time  `json:"timestamp"`
}

// InventoryUpdateEvent is broadcast to the store room after an
// adjustment commits.
type InventoryUpdateEvent struct {
	StoreID       uuid.UUID `json:"store_id"`
	ProductID     uuid.UUID `json:"product_id"`
	OldQty        int       `json:"old_qty"`
	NewQty        int       `json:"new_qty"`
	Delta         int       `json:"delta"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// TransferUpdateEvent is broadcast to both store rooms after a transfer
// commits.
type TransferUpdateEvent struct {
	ProductID   uuid.UUID `json:"product_id"`
	FromStoreID uuid.UUID `json:"from_store_id"`
	ToStoreID   uuid.UUID `json:"to_store_id"`
	Quantity    int       `json:"quantity"`
	FromNewQty  int       `json:"from_new_qty"`
	ToNewQty    int       `json:"to_new_qty"`
	Timestamp   time.Time `json:"timestamp"`
}

// InventoryService is the only component that mutates InventoryItem
// quantities. Every mutation is one atomic transaction producing exactly
// one Transaction row, with the domain event emitted after commit.
type InventoryService interface {
	AdjustStock(actor model.Actor, req *AdjustStockRequest) (*AdjustStockResult, error)
	TransferStock(actor model.Actor, req *TransferStockRequest) (*TransferStockResult, error)
	GetInventory(storeID *uuid.UUID) ([]model.InventoryItem, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	db            *gorm.DB
	wsHub         *ws.Hub
}

func NewInventoryService(invRepo repository.InventoryRepository, db *gorm.DB, hub *ws.Hub) InventoryService {
	return &inventoryService{
		inventoryRepo: invRepo,
		db:            db,
		wsHub:         hub,
	}
}

func (s *inventoryService) AdjustStock(actor model.Actor, req *AdjustStockRequest) (*AdjustStockResult, error) {
	// Authorization strictly before any store access
	if !actor.Can(model.CapInventory) {
		return nil, ErrPermissionDenied
	}
	if req.Delta == 0 {
		return nil, ErrInvalidDelta
	}
	if req.Reason == "" {
		return nil, ErrEmptyReason
	}

	var (
		result AdjustStockResult
		event  InventoryUpdateEvent
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkStoreAndProduct(tx, req.StoreID, req.ProductID); err != nil {
			return err
		}

		// Row exists before the guarded delta so a not-yet-stocked pair
		// starts from quantity 0
		if _, err := s.inventoryRepo.EnsureItem(tx, req.StoreID, req.ProductID); err != nil {
			return err
		}

		item, applied, err := s.inventoryRepo.ApplyDelta(tx, req.StoreID, req.ProductID, req.Delta)
		if err != nil {
			return err
		}
		if !applied {
			return ErrInsufficientStock
		}

		txType := model.TxIn
		quantity := req.Delta
		if req.Delta < 0 {
			txType = model.TxOut
			quantity = -req.Delta
		}

		record := model.Transaction{
			ProductID:        req.ProductID,
			StoreID:          req.StoreID,
			Type:             txType,
			Quantity:         quantity,
			PreviousQuantity: item.Quantity - req.Delta,
			NewQuantity:      item.Quantity,
			Note:             req.Reason,
			UserID:           &actor.ID,
		}
		record.CreatedBy = actor.Username
		record.UpdatedBy = actor.Username
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		result = AdjustStockResult{
			NewQuantity:   item.Quantity,
			TransactionID: record.ID,
			Timestamp:     record.CreatedAt,
		}
		event = InventoryUpdateEvent{
			StoreID:       req.StoreID,
			ProductID:     req.ProductID,
			OldQty:        item.Quantity - req.Delta,
			NewQty:        item.Quantity,
			Delta:         req.Delta,
			TransactionID: record.ID,
			Timestamp:     record.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Emit only after the transaction committed
	if s.wsHub != nil {
		s.wsHub.BroadcastToStore(req.StoreID, "inventory_update", event)
	}

	return &result, nil
}

func (s *inventoryService) TransferStock(actor model.Actor, req *TransferStockRequest) (*TransferStockResult, error) {
	if !actor.Can(model.CapInventory) {
		return nil, ErrPermissionDenied
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.FromStore == req.ToStore {
		return nil, ErrSameStoreTransfer
	}
	if req.Reason == "" {
		return nil, ErrEmptyReason
	}

	var (
		result TransferStockResult
		event  TransferUpdateEvent
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkStoreAndProduct(tx, req.FromStore, req.ProductID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&model.Store{}).Where("id = ?", req.ToStore).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrStoreNotFound
		}

		// Rows are created and locked in a global order keyed by store
		// id, so opposing transfers of the same product cannot deadlock.
		// Sufficiency is still judged against the source quantity as it
		// stood before this transfer (an ensured-but-empty source row is
		// rejected by the guard the same way a missing one was).
		type movement struct {
			storeID uuid.UUID
			delta   int
		}
		ordered := []movement{
			{req.FromStore, -req.Quantity},
			{req.ToStore, req.Quantity},
		}
		if bytes.Compare(ordered[1].storeID[:], ordered[0].storeID[:]) < 0 {
			ordered[0], ordered[1] = ordered[1], ordered[0]
		}

		var fromItem, toItem *model.InventoryItem
		for _, m := range ordered {
			if _, err := s.inventoryRepo.EnsureItem(tx, m.storeID, req.ProductID); err != nil {
				return err
			}
			item, applied, err := s.inventoryRepo.ApplyDelta(tx, m.storeID, req.ProductID, m.delta)
			if err != nil {
				return err
			}
			if !applied {
				if m.delta < 0 {
					return ErrInsufficientStock
				}
				return errTransferDestination
			}
			if m.delta < 0 {
				fromItem = item
			} else {
				toItem = item
			}
		}

		fromPrev := fromItem.Quantity + req.Quantity
		toPrev := toItem.Quantity - req.Quantity
		toStoreID := req.ToStore

		record := model.Transaction{
			ProductID:               req.ProductID,
			StoreID:                 req.FromStore,
			Type:                    model.TxTransfer,
			Quantity:                req.Quantity,
			PreviousQuantity:        fromPrev,
			NewQuantity:             fromItem.Quantity,
			RelatedStoreID:          &toStoreID,
			RelatedPreviousQuantity: &toPrev,
			RelatedNewQuantity:      &toItem.Quantity,
			Note:                    req.Reason,
			UserID:                  &actor.ID,
		}
		record.CreatedBy = actor.Username
		record.UpdatedBy = actor.Username
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		result = TransferStockResult{
			FromStore:     StockLevel{NewQuantity: fromItem.Quantity},
			ToStore:       StockLevel{NewQuantity: toItem.Quantity},
			TransactionID: record.ID,
			Timestamp:     record.CreatedAt,
		}
		event = TransferUpdateEvent{
			ProductID:   req.ProductID,
			FromStoreID: req.FromStore,
			ToStoreID:   req.ToStore,
			Quantity:    req.Quantity,
			FromNewQty:  fromItem.Quantity,
			ToNewQty:    toItem.Quantity,
			Timestamp:   record.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.wsHub != nil {
		s.wsHub.BroadcastToStores([]uuid.UUID{req.FromStore, req.ToStore}, "transfer_update", event)
	}

	return &result, nil
}

func (s *inventoryService) GetInventory(storeID *uuid.UUID) ([]model.InventoryItem, error) {
	return s.inventoryRepo.FindAll(storeID)
}

func (s *inventoryService) checkStoreAndProduct(tx *gorm.DB, storeID, productID uuid.UUID) error {
	var count int64
	if err := tx.Model(&model.Store{}).Where("id = ?", storeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrStoreNotFound
	}
	if err := tx.Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return nil
}
