package repository

import (
	"time"

	"retail-inventory-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	FindRecent(limit int, storeID *uuid.UUID) ([]model.Transaction, error)
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindInRange(start, end *time.Time, storeID *uuid.UUID) ([]model.Transaction, error)
	FindSince(since time.Time, limit int) ([]model.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) preloaded() *gorm.DB {
	return r.db.Preload("Product").Preload("Store").Preload("RelatedStore").Preload("User")
}

// storeScope matches transactions touching the store on either side of a
// transfer, plus its plain IN/OUT movements.
func storeScope(q *gorm.DB, storeID uuid.UUID) *gorm.DB {
	return q.Where("store_id = ? OR related_store_id = ?", storeID, storeID)
}

func (r *transactionRepo) FindRecent(limit int, storeID *uuid.UUID) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.preloaded().Order("created_at DESC").Limit(limit)
	if storeID != nil {
		q = storeScope(q, *storeID)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := r.preloaded().First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) FindInRange(start, end *time.Time, storeID *uuid.UUID) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.preloaded().Order("created_at ASC")
	if start != nil {
		q = q.Where("created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("created_at <= ?", *end)
	}
	if storeID != nil {
		q = storeScope(q, *storeID)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindSince(since time.Time, limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.preloaded().
		Where("created_at > ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}
