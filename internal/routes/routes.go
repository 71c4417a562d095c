// Package routes mounts the HTTP API on a fiber app.
package routes

import (
	"time"

	"cashon/internal/handlers"
	"cashon/internal/metrics"
	"cashon/internal/middleware"
	"cashon/internal/services/account"
	"cashon/internal/services/activity"
	"cashon/internal/services/deposit"
	"cashon/internal/services/notification"
	"cashon/internal/services/savings"
	"cashon/internal/services/wallet"
	"cashon/internal/services/withdrawal"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Services are the collaborators the handlers call into.
type Services struct {
	Accounts      *account.Service
	Wallets       wallet.Service
	Withdrawals   *withdrawal.Service
	Deposits      *deposit.Service
	Savings       *savings.Service
	Notifications *notification.Service
	Activities    *activity.Service
}

type Options struct {
	JWTSecret string
	// RateLimit caps authenticated requests per client IP per minute. Zero disables it.
	RateLimit int
	Health    *handlers.HealthHandler
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, svc Services, opts Options) {
	accountHandler := handlers.NewAccountHandler(svc.Accounts)
	walletHandler := handlers.NewWalletHandler(svc.Wallets)
	depositHandler := handlers.NewDepositHandler(svc.Deposits)
	withdrawalHandler := handlers.NewWithdrawalHandler(svc.Withdrawals)
	savingsHandler := handlers.NewSavingsHandler(svc.Savings)
	inboxHandler := handlers.NewInboxHandler(svc.Notifications, svc.Activities)
	webhookHandler := handlers.NewWebhookHandler(svc.Deposits)
	adminHandler := handlers.NewAdminHandler(svc.Wallets, svc.Withdrawals, svc.Savings, svc.Activities)

	if opts.Health != nil {
		app.Get("/health", opts.Health.Check)
	}
	app.Get("/metrics", metrics.Handler())

	// Provider callbacks carry no user token.
	app.Post("/hook/cashonrails", webhookHandler.Cashonrails)

	var guards []fiber.Handler
	if opts.RateLimit > 0 {
		guards = append(guards, limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: time.Minute,
		}))
	}
	guards = append(guards, middleware.Authenticate(opts.JWTSecret))
	api := app.Group("/api", guards...)

	api.Get("/wallets", walletHandler.ListWallets)
	api.Post("/wallets", accountHandler.Onboard)
	api.Get("/wallets/:id/transactions", walletHandler.GetTransactions)

	api.Post("/bank-accounts", accountHandler.AddBankAccount)
	api.Get("/bank-accounts", accountHandler.ListBankAccounts)
	api.Delete("/bank-accounts/:id", accountHandler.DeleteBankAccount)

	api.Get("/deposits", depositHandler.List)
	api.Get("/deposits/:id", depositHandler.Get)

	api.Post("/withdrawals", withdrawalHandler.Create)
	api.Get("/withdrawals", withdrawalHandler.List)
	api.Get("/withdrawals/:id", withdrawalHandler.Get)

	api.Post("/savings", savingsHandler.Create)
	api.Get("/savings", savingsHandler.List)
	api.Get("/savings/:id", savingsHandler.Get)

	api.Get("/notifications", inboxHandler.ListNotifications)
	api.Patch("/notifications/:id/read", inboxHandler.MarkRead)
	api.Get("/activities", inboxHandler.ListActivities)

	admin := api.Group("/admin", middleware.AdminOnly)
	admin.Post("/users", accountHandler.RegisterUser)
	admin.Post("/wallets/fund", adminHandler.FundWallet)
	admin.Get("/wallets/:id/verify", adminHandler.VerifyLedger)
	admin.Get("/withdrawals/stuck", adminHandler.StuckWithdrawals)
	admin.Post("/withdrawals/:id/reconcile", adminHandler.ReconcileWithdrawal)
	admin.Post("/savings/sweep", adminHandler.SweepInterest)
	admin.Get("/related/:kind/:id", adminHandler.Related)
}
