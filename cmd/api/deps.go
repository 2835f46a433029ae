package main

import (
	"log"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/category"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/infrastructure/postgres"
	httphandlers "fintrack/internal/interfaces/http"
	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler        *httphandlers.AuthHandler
	UserHandler        *httphandlers.UserHandler
	BudgetHandler      *httphandlers.BudgetHandler
	CategoryHandler    *httphandlers.CategoryHandler
	AccountHandler     *httphandlers.AccountHandler
	TransactionHandler *httphandlers.TransactionHandler

	// Auth
	JWT *auth.JWT

	// Repositories (for the reconciliation job provider)
	UserRepo    *postgres.UserRepository
	AccountRepo *postgres.AccountRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	budgetRepo := postgres.NewBudgetRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	// Initialize domain services
	budgetService := budget.NewService(budgetRepo)
	categoryService := category.NewService(categoryRepo)
	accountService := account.NewService(accountRepo)
	transactionService := transaction.NewService(transactionRepo)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	authHandler := httphandlers.NewAuthHandler(userRepo, jwt)
	userHandler := httphandlers.NewUserHandler(userRepo)
	budgetHandler := httphandlers.NewBudgetHandler(budgetService, categoryService)
	categoryHandler := httphandlers.NewCategoryHandler(categoryService)
	accountHandler := httphandlers.NewAccountHandler(accountService, transactionService)
	transactionHandler := httphandlers.NewTransactionHandler(transactionService)

	return &Dependencies{
		DB:                 db,
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		BudgetHandler:      budgetHandler,
		CategoryHandler:    categoryHandler,
		AccountHandler:     accountHandler,
		TransactionHandler: transactionHandler,
		JWT:                jwt,
		UserRepo:           userRepo,
		AccountRepo:        accountRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
