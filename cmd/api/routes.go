package main

import (
	"log"
	"net/http"

	httphandlers "fintrack/internal/interfaces/http"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("/api/users/me", protect(deps.UserHandler.HandleMe))

	mux.Handle("/api/budgets", protect(deps.BudgetHandler.HandleBudgets))
	mux.Handle("/api/budgets/{id}", protect(deps.BudgetHandler.HandleBudgetByID))
	mux.Handle("/api/budgets/{id}/categories", protect(deps.BudgetHandler.HandleBudgetCategories))

	mux.Handle("/api/categories/{id}", protect(deps.CategoryHandler.HandleCategoryByID))
	mux.Handle("/api/categories/{id}/transactions", protect(deps.TransactionHandler.HandleCategoryTransactions))

	mux.Handle("/api/accounts", protect(deps.AccountHandler.HandleAccounts))
	mux.Handle("/api/accounts/{id}", protect(deps.AccountHandler.HandleAccountByID))
	mux.Handle("/api/accounts/{id}/transactions", protect(deps.AccountHandler.HandleAccountTransactions))

	mux.Handle("/api/transactions", protect(deps.TransactionHandler.HandleTransactions))
	mux.Handle("/api/transactions/summary", protect(deps.TransactionHandler.HandleSummary))
	mux.Handle("/api/transactions/by-categories", protect(deps.TransactionHandler.HandleByCategories))
	mux.Handle("/api/transactions/{id}", protect(deps.TransactionHandler.HandleTransactionByID))

	// Apply global middleware
	var handler http.Handler = mux
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
