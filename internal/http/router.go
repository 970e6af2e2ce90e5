package http

import (
	"khata-backend/internal/handlers"
	"khata-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	customerHandler *handlers.CustomerHandler,
	transactionHandler *handlers.TransactionHandler,
	reminderHandler *handlers.ReminderHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", customerHandler.DeleteCustomer).Methods("DELETE")
	customersAPI.HandleFunc("/{id}/transactions", customerHandler.ListCustomerTransactions).Methods("GET")
	customersAPI.HandleFunc("/{id}/recalculate", customerHandler.RecalculateBalance).Methods("POST")
	customersAPI.HandleFunc("/{id}/statement", customerHandler.DownloadStatement).Methods("GET")

	// Protected API routes - Transactions
	transactionsAPI := r.PathPrefix("/api/transactions").Subrouter()
	transactionsAPI.Use(authMiddleware.Authenticate)
	transactionsAPI.HandleFunc("", transactionHandler.ListTransactions).Methods("GET")
	transactionsAPI.HandleFunc("", transactionHandler.CreateTransaction).Methods("POST")
	transactionsAPI.HandleFunc("/summary", transactionHandler.Summary).Methods("GET")
	transactionsAPI.HandleFunc("/{id}", transactionHandler.GetTransaction).Methods("GET")
	transactionsAPI.HandleFunc("/{id}", transactionHandler.UpdateTransaction).Methods("PUT")
	transactionsAPI.HandleFunc("/{id}", transactionHandler.DeleteTransaction).Methods("DELETE")

	// Protected API routes - Payment Reminders
	remindersAPI := r.PathPrefix("/api/payment-reminders").Subrouter()
	remindersAPI.Use(authMiddleware.Authenticate)
	remindersAPI.HandleFunc("", reminderHandler.ListReminders).Methods("GET")
	remindersAPI.HandleFunc("", reminderHandler.CreateReminder).Methods("POST")
	remindersAPI.HandleFunc("/{id}", reminderHandler.GetReminder).Methods("GET")
	remindersAPI.HandleFunc("/{id}", reminderHandler.UpdateReminder).Methods("PATCH")
	remindersAPI.HandleFunc("/{id}", reminderHandler.DeleteReminder).Methods("DELETE")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
