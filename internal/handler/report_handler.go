package handler

import (
	"strconv"
	"time"

	"retail-inventory-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func parseStoreID(c *fiber.Ctx) (*uuid.UUID, bool) {
	raw := c.Query("store_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// GetDashboard returns the KPI summary
// GET /api/v1/reports/dashboard
func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	summary, err := h.service.DashboardSummary()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard summary"})
	}
	return c.JSON(summary)
}

// GetLowStock lists items at or below their reorder level
// GET /api/v1/reports/low-stock?store_id=
func (h *ReportHandler) GetLowStock(c *fiber.Ctx) error {
	storeID, ok := parseStoreID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid store_id"})
	}

	items, err := h.service.LowStock(storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch low stock items"})
	}
	return c.JSON(items)
}

// GetStockMovement reports transactions and totals over a time window
// GET /api/v1/reports/stock?start_date=&end_date=&store_id=
func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	var start, end *time.Time
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid start_date, expected RFC3339"})
		}
		start = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end_date, expected RFC3339"})
		}
		end = &t
	}

	storeID, ok := parseStoreID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid store_id"})
	}

	report, err := h.service.StockMovement(start, end, storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate stock report"})
	}
	return c.JSON(report)
}

// GetTransactions lists recent transactions
// GET /api/v1/transactions?limit=&store_id=
func (h *ReportHandler) GetTransactions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	storeID, ok := parseStoreID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid store_id"})
	}

	transactions, err := h.service.RecentTransactions(limit, storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}
	return c.JSON(transactions)
}

// GetChanges is the polling fallback for clients without a live socket
// GET /api/v1/changes?since=<RFC3339>
func (h *ReportHandler) GetChanges(c *fiber.Ctx) error {
	raw := c.Query("since")
	if raw == "" {
		return c.Status(400).JSON(fiber.Map{"error": "since parameter required"})
	}

	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid since timestamp, expected RFC3339"})
	}

	changes, err := h.service.ChangesSince(since)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch changes"})
	}
	return c.JSON(changes)
}
