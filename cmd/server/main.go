package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"shop-backend/internal/auth"
	"shop-backend/internal/cache"
	"shop-backend/internal/config"
	"shop-backend/internal/database"
	"shop-backend/internal/db"
	"shop-backend/internal/handlers"
	"shop-backend/internal/health"
	h "shop-backend/internal/http"
	"shop-backend/internal/middleware"
	"shop-backend/internal/monitoring"
	"shop-backend/internal/repositories"
	"shop-backend/internal/services"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()
	log.Println("[DB] Connected to PostgreSQL")

	// Redis is optional; analytics fall back to direct queries without it
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (analytics will query directly)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)

	// Ops stats server on its own port
	go monitoring.NewMonitoringServer(pool, cfg.Server.MonitoringPort).Start()

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	storeRepo := repositories.NewStoreRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	ledgerRepo := repositories.NewLedgerRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	transactionRepo := repositories.NewTransactionRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	analyticsRepo := repositories.NewAnalyticsRepository(pool)
	onlineTransactionRepo := repositories.NewOnlineTransactionRepository(pool)

	// Services
	notificationService := services.NewNotificationService(notificationRepo)
	ledgerService := services.NewLedgerService(ledgerRepo, customerRepo, notificationService)
	checkoutService := services.NewCheckoutService(orderRepo, productRepo, customerRepo, ledgerService, notificationService)
	customerService := services.NewCustomerService(customerRepo, notificationService)
	productService := services.NewProductService(productRepo, notificationService)
	invoiceService := services.NewInvoiceService(invoiceRepo, ledgerService, notificationService)
	transactionService := services.NewTransactionService(transactionRepo)
	analyticsService := services.NewAnalyticsService(analyticsRepo)
	razorpayService := services.NewRazorpayService(cfg, onlineTransactionRepo, ledgerService)
	if !razorpayService.Enabled() {
		log.Println("[Razorpay] Credentials not set, online payments disabled")
	}

	storageService, err := services.NewStorageService(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to init object storage: %v", err)
	}
	if storageService == nil {
		log.Println("[Storage] No bucket configured, logo uploads disabled")
	}
	storeService := services.NewStoreService(storeRepo, jwtManager, storageService)

	// Live notification feed
	hub := handlers.NewNotificationHub()
	notificationService.SetBroadcaster(hub)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	corsMiddleware := middleware.NewCORS(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(storeService)
	settingsHandler := handlers.NewSettingsHandler(storeService)
	customerHandler := handlers.NewCustomerHandler(customerService, ledgerService)
	productHandler := handlers.NewProductHandler(productService)
	paymentHandler := handlers.NewPaymentHandler(ledgerService)
	orderHandler := handlers.NewOrderHandler(checkoutService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, hub)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		settingsHandler,
		customerHandler,
		productHandler,
		paymentHandler,
		orderHandler,
		invoiceHandler,
		transactionHandler,
		notificationHandler,
		analyticsHandler,
		razorpayHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
