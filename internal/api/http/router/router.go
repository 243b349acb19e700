package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dermai-app/dermai-server/internal/api/http/handler"
	"github.com/dermai-app/dermai-server/internal/api/http/middleware"
	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/service"
)

// Router wires HTTP routes, handlers and middleware.
type Router struct {
	authService     *service.Auth
	sessionService  *service.Session
	ledgerService   *service.Ledger
	queryService    *service.Query
	packagesService *service.Packages
	meterService    *service.Meter
	apiKey          string
	logger          *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	sessionService *service.Session,
	ledgerService *service.Ledger,
	queryService *service.Query,
	packagesService *service.Packages,
	meterService *service.Meter,
	apiKey string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:     authService,
		sessionService:  sessionService,
		ledgerService:   ledgerService,
		queryService:    queryService,
		packagesService: packagesService,
		meterService:    meterService,
		apiKey:          apiKey,
		logger:          logger,
	}
}

// Register configures the fiber application with all routes and
// middleware. Every /api route except the package catalog passes the
// API-key gate; session routes additionally require X-Session-ID.
func (r *Router) Register() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "dermai-server",
		ErrorHandler: handler.NewErrorHandler(r.logger),
	})

	logging := middleware.NewLogging(r.logger)
	apiKey := middleware.NewAPIKey(r.apiKey, r.logger)
	session := middleware.NewSession(r.sessionService, r.logger)

	authHandler := handler.NewAuth(r.authService, r.logger)
	creditsHandler := handler.NewCredits(r.ledgerService, r.queryService, r.logger)
	packagesHandler := handler.NewPackages(r.packagesService, r.logger)
	featuresHandler := handler.NewFeatures(r.meterService, r.logger)

	api := app.Group("/api", logging.Handle)

	// The catalog is public so store listings can link to it.
	api.Get("/credits/packages", packagesHandler.List)

	keyed := api.Group("", apiKey.Handle)
	keyed.Post("/auth/register", authHandler.Register)
	keyed.Post("/auth/login", authHandler.Login)

	sessioned := keyed.Group("", session.Handle)
	sessioned.Post("/auth/logout", authHandler.Logout)
	sessioned.Get("/auth/validate", authHandler.Validate)

	sessioned.Get("/credits", creditsHandler.Overview)
	sessioned.Post("/credits/use", creditsHandler.Use)
	sessioned.Post("/credits/add", creditsHandler.Add)
	sessioned.Put("/credits/update", creditsHandler.Update)
	sessioned.Post("/credits/remove", creditsHandler.Remove)
	sessioned.Delete("/credits/remove", creditsHandler.Remove)
	sessioned.Get("/credits/history", creditsHandler.History)
	sessioned.Post("/credits/purchase", packagesHandler.Purchase)

	sessioned.Post("/chat/message", featuresHandler.ChatMessage)
	sessioned.Post("/analysis", featuresHandler.Analysis)

	return app
}
