package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/playhub/arena/internal/auth"
	"github.com/playhub/arena/internal/guard"
	"github.com/playhub/arena/internal/handler"
	adminhandler "github.com/playhub/arena/internal/handler/admin"
	"github.com/playhub/arena/internal/infra"
	"github.com/playhub/arena/internal/ledger"
	"github.com/playhub/arena/internal/projection"
	"github.com/playhub/arena/internal/repository"
	"github.com/playhub/arena/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	DB     service.DB
	Health infra.Pinger
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	// Cache holds wallet projections. Defaults to an in-memory store.
	Cache projection.Store
	// LoginLimiter throttles POST /api/login per client IP. Nil disables it.
	LoginLimiter guard.Limiter
	// TrustedProxyHops selects the X-Forwarded-For entry used as client IP.
	TrustedProxyHops int

	CookieSecure bool
	CORSOrigins  []string
}

// Services bundles the services behind the router so callers such as
// cmd/api can reuse them for startup tasks.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Wallets       *service.WalletService
	Tournaments   *service.TournamentService
	Registrations *service.RegistrationService
}

// NewServices builds every service over the pgx repositories.
func NewServices(deps RouterDeps) Services {
	db := deps.DB
	logger := deps.Logger
	cache := deps.Cache
	if cache == nil {
		cache = projection.NewInMemoryStore()
	}

	// Repositories
	accountRepo := repository.NewAccountRepository()
	walletRepo := repository.NewWalletRepository()
	txRepo := repository.NewTransactionRepository()
	tournamentRepo := repository.NewTournamentRepository()
	registrationRepo := repository.NewRegistrationRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Ledger engine
	ledgerEngine := ledger.NewEngine(walletRepo, txRepo, outboxRepo)

	return Services{
		Auth:          service.NewAuthService(db, accountRepo, outboxRepo, deps.JWTMgr, logger),
		Users:         service.NewUserService(db, accountRepo, logger),
		Wallets:       service.NewWalletService(db, ledgerEngine, walletRepo, txRepo, tournamentRepo, cache, logger),
		Tournaments:   service.NewTournamentService(db, tournamentRepo, registrationRepo, logger),
		Registrations: service.NewRegistrationService(db, ledgerEngine, tournamentRepo, registrationRepo, outboxRepo, cache, logger),
	}
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps, svcs Services) chi.Router {
	logger := deps.Logger
	sessions := auth.NewMiddleware(deps.JWTMgr, deps.CookieSecure)

	// Handlers
	authHandler := handler.NewAuthHandler(svcs.Auth, deps.JWTMgr, deps.CookieSecure)
	walletHandler := handler.NewWalletHandler(svcs.Wallets)
	tournamentHandler := handler.NewTournamentHandler(svcs.Tournaments)
	registrationHandler := handler.NewRegistrationHandler(svcs.Registrations)

	// Admin handlers
	userAdmin := adminhandler.NewUserAdminHandler(svcs.Users)
	tournamentAdmin := adminhandler.NewTournamentAdminHandler(svcs.Tournaments, svcs.Wallets)
	reportsAdmin := adminhandler.NewReportsHandler(svcs.Wallets, svcs.Tournaments)

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(origins...))

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Health))

	// Pages
	r.Get("/", handler.ServePage("login"))
	r.Get("/login", handler.ServePage("login"))
	r.Get("/register", handler.ServePage("register"))
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequirePageSession)
		r.Get("/users", handler.ServePage("users"))
		r.With(auth.RequireAdmin("Access denied. Admin only.")).Get("/dashboard", handler.ServePage("dashboard"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(handler.JSONContentType)

		// Auth routes (no auth)
		r.Post("/register", authHandler.Register)
		if deps.LoginLimiter != nil {
			r.With(handler.RateLimit(deps.LoginLimiter, deps.TrustedProxyHops, logger)).Post("/login", authHandler.Login)
		} else {
			r.Post("/login", authHandler.Login)
		}
		r.Post("/logout", authHandler.Logout)

		// Tournament catalogue and registration (user id from path or body)
		r.Get("/tournaments", tournamentHandler.List)
		r.Get("/tournaments/{id}", tournamentHandler.Get)
		r.Post("/tournaments/{id}/register", registrationHandler.Register)
		r.Delete("/tournaments/{id}/register", registrationHandler.Cancel)
		r.Get("/user/{userId}/registrations", tournamentHandler.ListUserRegistrations)

		// Wallet by user id
		r.Route("/wallet/{userId}", func(r chi.Router) {
			r.Get("/", walletHandler.GetWallet)
			r.Post("/deposit", walletHandler.Deposit)
			r.Post("/withdraw", walletHandler.Withdraw)
			r.Get("/transactions", walletHandler.GetTransactions)
		})

		// Session-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireSession)

			r.Get("/session", authHandler.Session)
			r.Post("/wallet/deposit", walletHandler.DepositOwn)
			r.Post("/wallet/withdraw", walletHandler.WithdrawOwn)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin("Access denied"))

				r.Route("/users", func(r chi.Router) {
					r.Get("/", userAdmin.ListUsers)
					r.Delete("/{id}", userAdmin.DeleteUser)
					r.Put("/{id}/role", userAdmin.UpdateRole)
				})

				r.Route("/admin", func(r chi.Router) {
					r.Get("/tournaments", tournamentAdmin.ListTournaments)
					r.Post("/tournaments", tournamentAdmin.CreateTournament)
					r.Put("/tournaments/{id}/status", tournamentAdmin.UpdateStatus)
					r.Post("/tournaments/{id}/prizes", tournamentAdmin.AwardPrize)
					r.Get("/registrations", reportsAdmin.GetRegistrations)
					r.Get("/wallet-stats", reportsAdmin.GetWalletStats)
					r.Get("/transactions", reportsAdmin.GetTransactions)
				})
			})
		})
	})

	return r
}
