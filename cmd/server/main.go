package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"khata-backend/internal/auth"
	"khata-backend/internal/cache"
	"khata-backend/internal/config"
	"khata-backend/internal/database"
	"khata-backend/internal/db"
	"khata-backend/internal/handlers"
	"khata-backend/internal/health"
	h "khata-backend/internal/http"
	"khata-backend/internal/middleware"
	"khata-backend/internal/repositories"
	"khata-backend/internal/services"
	"khata-backend/internal/storage"
	"khata-backend/migrations"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; without it logins fall back to bcrypt every time.
	if err := cache.Init(); err != nil {
		log.Printf("Redis unavailable, continuing without auth cache: %v", err)
	}

	migrator := database.NewMigrator(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := migrator.RunMigrations(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	transactionRepo := repositories.NewTransactionRepository(pool)
	reminderRepo := repositories.NewReminderRepository(pool)

	// Attachment storage is optional. The nil check matters: assigning a nil
	// *BillStore into the BillRemover interface would make it non-nil.
	billStore := storage.NewBillStore(cfg)
	var billRemover services.BillRemover
	if billStore != nil {
		billRemover = billStore
	} else {
		log.Println("Attachment storage not configured, bill uploads disabled")
	}

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	userService := services.NewUserService(userRepo, jwtManager)
	ledgerService := services.NewLedgerService(transactionRepo, customerRepo, billRemover)
	customerService := services.NewCustomerService(customerRepo, billRemover)
	reminderService := services.NewReminderService(reminderRepo, customerRepo, transactionRepo)
	statementService := services.NewStatementService(customerRepo, transactionRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService, ledgerService, statementService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService, billStore)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		customerHandler,
		transactionHandler,
		reminderHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
