package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"retail-inventory-ws/internal/handler"
	"retail-inventory-ws/internal/middleware"
	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"
	"retail-inventory-ws/internal/service"
	"retail-inventory-ws/internal/ws"
	"retail-inventory-ws/pkg/database"
	"retail-inventory-ws/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Store{},
		&model.Product{},
		&model.InventoryItem{},
		&model.Transaction{},
		&model.User{},
		&model.Permission{},
	)

	// 3. Seed default permissions and admin user
	seedPermissionsAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	storeRepo := repository.NewStoreRepo(db)
	productRepo := repository.NewProductRepo(db)
	invRepo := repository.NewInventoryRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)
	permRepo := repository.NewPermissionRepo(db)

	invService := service.NewInventoryService(invRepo, db, wsHub)
	productService := service.NewProductService(productRepo)
	reportService := service.NewReportService(storeRepo, productRepo, invRepo, txRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, permRepo)

	invHandler := handler.NewInventoryHandler(invService)
	productHandler := handler.NewProductHandler(productService)
	storeHandler := handler.NewStoreHandler(storeRepo)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Retail Chain Inventory Tracker v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Get("/status", middleware.RequireAuth(userRepo), authHandler.Status)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication; capability checks run
	// strictly before any handler touches the store
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Store Routes
	protected.Get("/stores", storeHandler.GetStores)
	protected.Post("/stores", storeHandler.CreateStore)

	// Product Routes
	protected.Get("/products", productHandler.GetProducts)
	protected.Post("/products", middleware.RequireCapability(model.CapProducts), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequireCapability(model.CapProducts), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireCapability(model.CapDeleteProduct), productHandler.DeleteProduct)

	// Inventory Routes
	protected.Get("/inventory", invHandler.GetInventory)
	protected.Post("/inventory/update", middleware.RequireCapability(model.CapInventory), invHandler.UpdateStock)
	protected.Post("/inventory/transfer", middleware.RequireCapability(model.CapInventory), invHandler.TransferStock)

	// Report Routes
	protected.Get("/reports/dashboard", middleware.RequireCapability(model.CapReports), reportHandler.GetDashboard)
	protected.Get("/reports/low-stock", middleware.RequireCapability(model.CapReports), reportHandler.GetLowStock)
	protected.Get("/reports/stock", middleware.RequireCapability(model.CapReports), reportHandler.GetStockMovement)

	// Transaction Routes
	protected.Get("/transactions", middleware.RequireCapability(model.CapTransactions), reportHandler.GetTransactions)

	// Polling fallback for clients without a live socket
	protected.Get("/changes", reportHandler.GetChanges)

	// User Management Routes
	protected.Get("/users", middleware.RequireCapability(model.CapManageUsers), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequireCapability(model.CapManageUsers), userHandler.GetUser)
	protected.Post("/users", middleware.RequireCapability(model.CapManageUsers), userHandler.CreateUser)
	protected.Put("/users/:id/permissions", middleware.RequireCapability(model.CapManageUsers), userHandler.UpdateUserPermissions)
	protected.Get("/permissions", userHandler.GetPermissions)

	// WebSocket Route (token in query, browsers can't set headers on upgrade)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		claims, err := jwt.ValidateToken(c.Query("token"))
		if err != nil {
			c.Close()
			return
		}

		client := ws.NewClient(c, claims.Username)
		wsHub.Register <- client

		go client.WritePump()
		client.ReadPump(wsHub)
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedPermissionsAndAdmin creates default permissions and the admin user
// if they don't exist
func seedPermissionsAndAdmin(db *gorm.DB) {
	permRepo := repository.NewPermissionRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := permRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed permissions: %v", err)
	}

	if _, err := userRepo.FindByUsername("admin"); err == nil {
		return
	}

	permissions, err := permRepo.FindByCodes(model.RoleDefaultPermissions[model.RoleAdmin])
	if err != nil {
		log.Printf("Warning: Failed to load admin permissions: %v", err)
		return
	}

	admin := &model.User{
		Username:    "admin",
		Role:        model.RoleAdmin,
		IsActive:    true,
		Permissions: permissions,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("✅ Admin user created: admin / admin123")
	}
}
