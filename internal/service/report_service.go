package service

import (
	"errors"
	"time"

	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dashboardRecentLimit = 20
	changesLimit         = 100
)

// DashboardSummary holds the KPI block for the dashboard view
type DashboardSummary struct {
	TotalProducts      int64               `json:"total_products"`
	TotalUnits         int64               `json:"total_units"`
	LowStockCount      int64               `json:"low_stock_count"`
	TotalStores        int64               `json:"total_stores"`
	RecentTransactions []model.Transaction `json:"recent_transactions"`
}

// MovementTotals aggregates a transaction window. Transfers count toward
// a store's in/out totals according to which side of the transfer it was.
type MovementTotals struct {
	TotalIn           int `json:"total_in"`
	TotalOut          int `json:"total_out"`
	NetChange         int `json:"net_change"`
	TotalTransfersIn  int `json:"total_transfers_in"`
	TotalTransfersOut int `json:"total_transfers_out"`
}

type StockMovementReport struct {
	Transactions []model.Transaction `json:"transactions"`
	Totals       MovementTotals      `json:"totals"`
}

// Change pairs a transaction with the current quantity of its pair, so a
// polling client can resync without replaying deltas.
type Change struct {
	Transaction     model.Transaction `json:"transaction"`
	CurrentQuantity int               `json:"current_quantity"`
}

type ChangesResponse struct {
	Changes   []Change  `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportService is the read-only pull side: always authoritative,
// eventually consistent with the last committed mutation.
type ReportService interface {
	DashboardSummary() (*DashboardSummary, error)
	LowStock(storeID *uuid.UUID) ([]repository.LowStockItem, error)
	StockMovement(start, end *time.Time, storeID *uuid.UUID) (*StockMovementReport, error)
	RecentTransactions(limit int, storeID *uuid.UUID) ([]model.Transaction, error)
	ChangesSince(since time.Time) (*ChangesResponse, error)
}

type reportService struct {
	storeRepo     repository.StoreRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	txRepo        repository.TransactionRepository
}

func NewReportService(
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	invRepo repository.InventoryRepository,
	txRepo repository.TransactionRepository,
) ReportService {
	return &reportService{
		storeRepo:     storeRepo,
		productRepo:   productRepo,
		inventoryRepo: invRepo,
		txRepo:        txRepo,
	}
}

func (s *reportService) DashboardSummary() (*DashboardSummary, error) {
	totalProducts, err := s.productRepo.Count()
	if err != nil {
		return nil, err
	}
	totalUnits, err := s.inventoryRepo.TotalUnits()
	if err != nil {
		return nil, err
	}
	lowStockCount, err := s.inventoryRepo.LowStockCount()
	if err != nil {
		return nil, err
	}
	totalStores, err := s.storeRepo.Count()
	if err != nil {
		return nil, err
	}
	recent, err := s.txRepo.FindRecent(dashboardRecentLimit, nil)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalProducts:      totalProducts,
		TotalUnits:         totalUnits,
		LowStockCount:      lowStockCount,
		TotalStores:        totalStores,
		RecentTransactions: recent,
	}, nil
}

func (s *reportService) LowStock(storeID *uuid.UUID) ([]repository.LowStockItem, error) {
	return s.inventoryRepo.LowStock(storeID)
}

func (s *reportService) StockMovement(start, end *time.Time, storeID *uuid.UUID) (*StockMovementReport, error) {
	transactions, err := s.txRepo.FindInRange(start, end, storeID)
	if err != nil {
		return nil, err
	}

	var totals MovementTotals
	for _, t := range transactions {
		switch t.Type {
		case model.TxIn:
			totals.TotalIn += t.Quantity
		case model.TxOut:
			totals.TotalOut += t.Quantity
		case model.TxTransfer:
			if storeID == nil {
				totals.TotalTransfersOut += t.Quantity
				totals.TotalTransfersIn += t.Quantity
				continue
			}
			if t.StoreID == *storeID {
				totals.TotalTransfersOut += t.Quantity
			}
			if t.RelatedStoreID != nil && *t.RelatedStoreID == *storeID {
				totals.TotalTransfersIn += t.Quantity
			}
		}
	}
	totals.NetChange = totals.TotalIn - totals.TotalOut

	return &StockMovementReport{
		Transactions: transactions,
		Totals:       totals,
	}, nil
}

func (s *reportService) RecentTransactions(limit int, storeID *uuid.UUID) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.txRepo.FindRecent(limit, storeID)
}

func (s *reportService) ChangesSince(since time.Time) (*ChangesResponse, error) {
	transactions, err := s.txRepo.FindSince(since, changesLimit)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0, len(transactions))
	for _, t := range transactions {
		current := 0
		item, err := s.inventoryRepo.FindByStoreAndProduct(t.StoreID, t.ProductID)
		switch {
		case err == nil:
			current = item.Quantity
		case !errors.Is(err, gorm.ErrRecordNotFound):
			// A missing row legitimately reads as 0; anything else is a
			// real failure and must not masquerade as a quantity
			return nil, err
		}
		changes = append(changes, Change{Transaction: t, CurrentQuantity: current})
	}

	return &ChangesResponse{
		Changes:   changes,
		Timestamp: time.Now().UTC(),
	}, nil
}
