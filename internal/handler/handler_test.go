package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retail-inventory-ws/internal/middleware"
	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"
	"retail-inventory-ws/internal/service"
	"retail-inventory-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB

	adminToken   string
	managerToken string
	staffToken   string
}

// setupTestEnv wires the full route table against an in-memory database,
// seeded with one user per role.
func setupTestEnv(t *testing.T) *testEnv {
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

	storeRepo := repository.NewStoreRepo(db)
	productRepo := repository.NewProductRepo(db)
	invRepo := repository.NewInventoryRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)
	permRepo := repository.NewPermissionRepo(db)

	require.NoError(t, permRepo.SeedDefaults())

	authService := service.NewAuthService(userRepo)
	invService := service.NewInventoryService(invRepo, db, nil)
	productService := service.NewProductService(productRepo)
	reportService := service.NewReportService(storeRepo, productRepo, invRepo, txRepo)
	userService := service.NewUserService(userRepo, permRepo)

	authHandler := NewAuthHandler(authService)
	invHandler := NewInventoryHandler(invService)
	productHandler := NewProductHandler(productService)
	reportHandler := NewReportHandler(reportService)
	storeHandler := NewStoreHandler(storeRepo)
	userHandler := NewUserHandler(userService)

	app := fiber.New()
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/status", middleware.RequireAuth(userRepo), authHandler.Status)

	protected := api.Group("", middleware.RequireAuth(userRepo))
	protected.Get("/stores", storeHandler.GetStores)
	protected.Post("/stores", storeHandler.CreateStore)
	protected.Get("/products", productHandler.GetProducts)
	protected.Post("/products", middleware.RequireCapability(model.CapProducts), productHandler.CreateProduct)
	protected.Delete("/products/:id", middleware.RequireCapability(model.CapDeleteProduct), productHandler.DeleteProduct)
	protected.Get("/inventory", invHandler.GetInventory)
	protected.Post("/inventory/update", middleware.RequireCapability(model.CapInventory), invHandler.UpdateStock)
	protected.Post("/inventory/transfer", middleware.RequireCapability(model.CapInventory), invHandler.TransferStock)
	protected.Get("/reports/dashboard", middleware.RequireCapability(model.CapReports), reportHandler.GetDashboard)
	protected.Get("/reports/low-stock", middleware.RequireCapability(model.CapReports), reportHandler.GetLowStock)
	protected.Get("/changes", reportHandler.GetChanges)
	protected.Get("/users", middleware.RequireCapability(model.CapManageUsers), userHandler.GetUsers)
	protected.Post("/users", middleware.RequireCapability(model.CapManageUsers), userHandler.CreateUser)
	protected.Put("/users/:id/permissions", middleware.RequireCapability(model.CapManageUsers), userHandler.UpdateUserPermissions)

	env := &testEnv{app: app, db: db}
	env.adminToken = seedUser(t, db, permRepo, "admin", model.RoleAdmin)
	env.managerToken = seedUser(t, db, permRepo, "manager", model.RoleManager)
	env.staffToken = seedUser(t, db, permRepo, "staff", model.RoleStaff)
	return env
}

func seedUser(t *testing.T, db *gorm.DB, permRepo repository.PermissionRepository, username, role string) string {
	t.Helper()

	perms, err := permRepo.FindByCodes(model.RoleDefaultPermissions[role])
	require.NoError(t, err)

	user := &model.User{Username: username, Role: role, IsActive: true, Permissions: perms}
	require.NoError(t, user.SetPassword(username+"123"))
	require.NoError(t, db.Create(user).Error)

	token, err := jwt.GenerateToken(user.ID, username, role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (e *testEnv) createStore(t *testing.T, name string) *model.Store {
	t.Helper()
	store := &model.Store{Name: name, Location: name + " St"}
	require.NoError(t, e.db.Create(store).Error)
	return store
}

func (e *testEnv) createProduct(t *testing.T, sku string) *model.Product {
	t.Helper()
	product := &model.Product{SKU: sku, Name: "Product " + sku, Category: "Test", ReorderLevel: 5}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, "POST", "/api/v1/auth/login", "", fiber.Map{
		"username": "manager", "password": "manager123",
	})
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Token       string             `json:"token"`
		User        model.UserResponse `json:"user"`
		Permissions []string           `json:"permissions"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "manager", body.User.Username)
	assert.Contains(t, body.Permissions, model.CapInventory)
	assert.NotContains(t, body.Permissions, model.CapManageUsers)

	resp = env.request(t, "POST", "/api/v1/auth/login", "", fiber.Map{
		"username": "manager", "password": "wrong",
	})
	assert.Equal(t, 401, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/auth/login", "", fiber.Map{"username": "manager"})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAuthStatus(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, "GET", "/api/v1/auth/status", env.staffToken, nil)
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Authenticated bool               `json:"authenticated"`
		User          model.UserResponse `json:"user"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Authenticated)
	assert.Equal(t, "staff", body.User.Username)
}

func TestMissingAndInvalidToken(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, "GET", "/api/v1/inventory", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	resp = env.request(t, "GET", "/api/v1/inventory", "not-a-token", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestUpdateStock(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createStore(t, "Downtown")
	product := env.createProduct(t, "SKU001")

	resp := env.request(t, "POST", "/api/v1/inventory/update", env.managerToken, fiber.Map{
		"store_id": store.ID, "product_id": product.ID, "delta": 10, "reason": "initial stock",
	})
	require.Equal(t, 200, resp.StatusCode)

	var result service.AdjustStockResult
	decodeBody(t, resp, &result)
	assert.Equal(t, 10, result.NewQuantity)
	assert.NotEqual(t, uuid.Nil, result.TransactionID)

	// Overdraw is a conflict, not a validation failure
	resp = env.request(t, "POST", "/api/v1/inventory/update", env.managerToken, fiber.Map{
		"store_id": store.ID, "product_id": product.ID, "delta": -25, "reason": "sale",
	})
	assert.Equal(t, 409, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/inventory/update", env.managerToken, fiber.Map{
		"store_id": store.ID, "product_id": product.ID, "delta": 0, "reason": "noop",
	})
	assert.Equal(t, 400, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/inventory/update", env.managerToken, fiber.Map{
		"store_id": uuid.New(), "product_id": product.ID, "delta": 5, "reason": "stock",
	})
	assert.Equal(t, 404, resp.StatusCode)
}

func TestStaffDeniedBeforeHandlerRuns(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createStore(t, "Downtown")
	product := env.createProduct(t, "SKU001")

	resp := env.request(t, "POST", "/api/v1/inventory/update", env.staffToken, fiber.Map{
		"store_id": store.ID, "product_id": product.ID, "delta": 10, "reason": "stock",
	})
	require.Equal(t, 403, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Insufficient permissions", body["error"])

	// The gate ran before the engine: no rows written
	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransferStock(t *testing.T) {
	env := setupTestEnv(t)
	s1 := env.createStore(t, "Downtown")
	s2 := env.createStore(t, "Mall")
	product := env.createProduct(t, "SKU001")

	resp := env.request(t, "POST", "/api/v1/inventory/update", env.managerToken, fiber.Map{
		"store_id": s1.ID, "product_id": product.ID, "delta": 10, "reason": "stock",
	})
	require.Equal(t, 200, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/inventory/transfer", env.managerToken, fiber.Map{
		"from_store": s1.ID, "to_store": s2.ID, "product_id": product.ID, "quantity": 4, "reason": "rebalance",
	})
	require.Equal(t, 200, resp.StatusCode)

	var result service.TransferStockResult
	decodeBody(t, resp, &result)
	assert.Equal(t, 6, result.FromStore.NewQuantity)
	assert.Equal(t, 4, result.ToStore.NewQuantity)

	resp = env.request(t, "POST", "/api/v1/inventory/transfer", env.managerToken, fiber.Map{
		"from_store": s1.ID, "to_store": s1.ID, "product_id": product.ID, "quantity": 1, "reason": "oops",
	})
	assert.Equal(t, 409, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/inventory/transfer", env.managerToken, fiber.Map{
		"from_store": s1.ID, "to_store": s2.ID, "product_id": product.ID, "quantity": 100, "reason": "too much",
	})
	assert.Equal(t, 409, resp.StatusCode)
}

func TestDeleteProductAdminOnly(t *testing.T) {
	env := setupTestEnv(t)
	product := env.createProduct(t, "SKU001")
	path := fmt.Sprintf("/api/v1/products/%s", product.ID)

	resp := env.request(t, "DELETE", path, env.managerToken, nil)
	assert.Equal(t, 403, resp.StatusCode)

	resp = env.request(t, "DELETE", path, env.adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCreateStoreAdminOnly(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, "POST", "/api/v1/stores", env.managerToken, fiber.Map{
		"name": "Downtown", "location": "Main St",
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/stores", env.adminToken, fiber.Map{
		"name": "Downtown", "location": "Main St",
	})
	assert.Equal(t, 201, resp.StatusCode)
}

func TestChangesPolling(t *testing.T) {
	env := setupTestEnv(t)
	store := env.createStore(t, "Downtown")
	product := env.createProduct(t, "SKU001")

	resp := env.request(t, "GET", "/api/v1/changes", env.staffToken, nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp = env.request(t, "GET", "/api/v1/changes?since=yesterday", env.staffToken, nil)
	assert.Equal(t, 400, resp.StatusCode)

	since := time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)

	resp = env.request(t, "POST", "/api/v1/inventory/update", env.managerToken, fiber.Map{
		"store_id": store.ID, "product_id": product.ID, "delta": 7, "reason": "stock",
	})
	require.Equal(t, 200, resp.StatusCode)

	resp = env.request(t, "GET", "/api/v1/changes?since="+since, env.staffToken, nil)
	require.Equal(t, 200, resp.StatusCode)

	var body service.ChangesResponse
	decodeBody(t, resp, &body)
	require.Len(t, body.Changes, 1)
	assert.Equal(t, 7, body.Changes[0].CurrentQuantity)
	assert.False(t, body.Timestamp.IsZero())
}

func TestUserManagement(t *testing.T) {
	env := setupTestEnv(t)

	// Only manage_users holders may create accounts
	resp := env.request(t, "POST", "/api/v1/users", env.managerToken, fiber.Map{
		"username": "newstaff", "password": "secret123", "role": model.RoleStaff,
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/users", env.adminToken, fiber.Map{
		"username": "newstaff", "password": "secret123", "role": model.RoleStaff,
	})
	require.Equal(t, 201, resp.StatusCode)

	var user model.User
	require.NoError(t, env.db.Preload("Permissions").Where("username = ?", "newstaff").First(&user).Error)
	assert.Empty(t, user.Permissions)

	// Granting inventory takes effect on the very next request
	token, err := jwt.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	store := env.createStore(t, "Downtown")
	product := env.createProduct(t, "SKU001")

	resp = env.request(t, "POST", "/api/v1/inventory/update", token, fiber.Map{
		"store_id": store.ID, "product_id": product.ID, "delta": 1, "reason": "stock",
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp = env.request(t, "PUT", fmt.Sprintf("/api/v1/users/%s/permissions", user.ID), env.adminToken, fiber.Map{
		"permissions": []string{model.CapInventory},
	})
	require.Equal(t, 200, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/inventory/update", token, fiber.Map{
		"store_id": store.ID, "product_id": product.ID, "delta": 1, "reason": "stock",
	})
	assert.Equal(t, 200, resp.StatusCode)
}

func TestInactiveUserRejected(t *testing.T) {
	env := setupTestEnv(t)

	require.NoError(t, env.db.Model(&model.User{}).
		Where("username = ?", "staff").
		Update("is_active", false).Error)

	resp := env.request(t, "GET", "/api/v1/inventory", env.staffToken, nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestEngineStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrPermissionDenied, 403},
		{service.ErrInvalidDelta, 400},
		{service.ErrEmptyReason, 400},
		{service.ErrInvalidQuantity, 400},
		{service.ErrInsufficientStock, 409},
		{service.ErrSameStoreTransfer, 409},
		{service.ErrStoreNotFound, 404},
		{service.ErrProductNotFound, 404},
		{errors.New("anything internal"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, engineStatus(tt.err), "error: %v", tt.err)
	}
}

func TestMutationRequestsRequireIDs(t *testing.T) {
	env := setupTestEnv(t)
	s1 := env.createStore(t, "Downtown")
	s2 := env.createStore(t, "Mall")
	product := env.createProduct(t, "SKU001")

	// A nil store id is a malformed request, not a missing store
	resp := env.request(t, "POST", "/api/v1/inventory/update", env.managerToken, fiber.Map{
		"product_id": product.ID, "delta": 5, "reason": "stock",
	})
	assert.Equal(t, 400, resp.StatusCode)

	resp = env.request(t, "POST", "/api/v1/inventory/transfer", env.managerToken, fiber.Map{
		"from_store": s1.ID, "to_store": s2.ID, "quantity": 1, "reason": "rebalance",
	})
	assert.Equal(t, 400, resp.StatusCode)

	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}
