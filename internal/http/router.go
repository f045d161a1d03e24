package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shop-backend/internal/handlers"
	"shop-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	settingsHandler *handlers.SettingsHandler,
	customerHandler *handlers.CustomerHandler,
	productHandler *handlers.ProductHandler,
	paymentHandler *handlers.PaymentHandler,
	orderHandler *handlers.OrderHandler,
	invoiceHandler *handlers.InvoiceHandler,
	transactionHandler *handlers.TransactionHandler,
	notificationHandler *handlers.NotificationHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	razorpayHandler *handlers.RazorpayHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes - authentication and probes
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected API routes - Store account
	storeAPI := r.PathPrefix("/api/store").Subrouter()
	storeAPI.Use(authMiddleware.Authenticate)
	storeAPI.HandleFunc("", settingsHandler.Profile).Methods("GET")
	storeAPI.HandleFunc("/logo", settingsHandler.UploadLogo).Methods("POST")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.List).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.Create).Methods("POST")
	customersAPI.HandleFunc("/debtors", customerHandler.Debtors).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.Get).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.Update).Methods("PUT")
	customersAPI.HandleFunc("/{id}", customerHandler.Delete).Methods("DELETE")
	customersAPI.HandleFunc("/{id}/ledger", customerHandler.History).Methods("GET")
	customersAPI.HandleFunc("/{id}/recompute-balance", customerHandler.RecomputeBalance).Methods("POST")

	// Protected API routes - Products
	productsAPI := r.PathPrefix("/api/products").Subrouter()
	productsAPI.Use(authMiddleware.Authenticate)
	productsAPI.HandleFunc("", productHandler.List).Methods("GET")
	productsAPI.HandleFunc("", productHandler.Create).Methods("POST")
	productsAPI.HandleFunc("/low-stock", productHandler.LowStock).Methods("GET")
	productsAPI.HandleFunc("/{id}", productHandler.Get).Methods("GET")
	productsAPI.HandleFunc("/{id}", productHandler.Update).Methods("PUT")
	productsAPI.HandleFunc("/{id}", productHandler.Delete).Methods("DELETE")
	productsAPI.HandleFunc("/{id}/stock", productHandler.AdjustStock).Methods("PATCH")

	// Protected API routes - Ledger (payments and debts)
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", paymentHandler.List).Methods("GET")
	paymentsAPI.HandleFunc("", paymentHandler.RecordPayment).Methods("POST")
	paymentsAPI.HandleFunc("/verify-balances", paymentHandler.VerifyBalances).Methods("GET")
	paymentsAPI.HandleFunc("/{id}", paymentHandler.Get).Methods("GET")
	paymentsAPI.HandleFunc("/{id}/reverse", paymentHandler.Reverse).Methods("POST")

	debtsAPI := r.PathPrefix("/api/debts").Subrouter()
	debtsAPI.Use(authMiddleware.Authenticate)
	debtsAPI.HandleFunc("", paymentHandler.RecordDebt).Methods("POST")

	// Protected API routes - Orders and POS checkout
	ordersAPI := r.PathPrefix("/api/orders").Subrouter()
	ordersAPI.Use(authMiddleware.Authenticate)
	ordersAPI.HandleFunc("", orderHandler.List).Methods("GET")
	ordersAPI.HandleFunc("", orderHandler.Checkout).Methods("POST")
	ordersAPI.HandleFunc("/{id}", orderHandler.Get).Methods("GET")
	ordersAPI.HandleFunc("/{id}/status", orderHandler.UpdateStatus).Methods("PATCH")

	posAPI := r.PathPrefix("/api/pos").Subrouter()
	posAPI.Use(authMiddleware.Authenticate)
	posAPI.HandleFunc("/sales", orderHandler.POSSale).Methods("POST")

	// Protected API routes - Invoices
	invoicesAPI := r.PathPrefix("/api/invoices").Subrouter()
	invoicesAPI.Use(authMiddleware.Authenticate)
	invoicesAPI.HandleFunc("", invoiceHandler.List).Methods("GET")
	invoicesAPI.HandleFunc("", invoiceHandler.Create).Methods("POST")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.Get).Methods("GET")
	invoicesAPI.HandleFunc("/{id}/payments", invoiceHandler.Pay).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/cancel", invoiceHandler.Cancel).Methods("POST")

	// Protected API routes - Audit trail (read-only)
	transactionsAPI := r.PathPrefix("/api/transactions").Subrouter()
	transactionsAPI.Use(authMiddleware.Authenticate)
	transactionsAPI.HandleFunc("", transactionHandler.List).Methods("GET")
	transactionsAPI.HandleFunc("/{id}", transactionHandler.Get).Methods("GET")

	// Protected API routes - Notifications
	notificationsAPI := r.PathPrefix("/api/notifications").Subrouter()
	notificationsAPI.Use(authMiddleware.Authenticate)
	notificationsAPI.HandleFunc("", notificationHandler.List).Methods("GET")
	notificationsAPI.HandleFunc("/unread-count", notificationHandler.UnreadCount).Methods("GET")
	notificationsAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("POST")
	notificationsAPI.HandleFunc("/feed", notificationHandler.Feed).Methods("GET")
	notificationsAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("POST")

	// Protected API routes - Analytics
	analyticsAPI := r.PathPrefix("/api/analytics").Subrouter()
	analyticsAPI.Use(authMiddleware.Authenticate)
	analyticsAPI.HandleFunc("/dashboard", analyticsHandler.Dashboard).Methods("GET")
	analyticsAPI.HandleFunc("/sales", analyticsHandler.Sales).Methods("GET")

	// Protected API routes - Online payments
	onlinePaymentsAPI := r.PathPrefix("/api/online-payments").Subrouter()
	onlinePaymentsAPI.Use(authMiddleware.Authenticate)
	onlinePaymentsAPI.HandleFunc("/orders", razorpayHandler.CreateOrder).Methods("POST")
	onlinePaymentsAPI.HandleFunc("/verify", razorpayHandler.Verify).Methods("POST")

	return r
}
