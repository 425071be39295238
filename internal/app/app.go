package app

import (
	"vms-backend/internal/auth"
	"vms-backend/internal/companies"
	"vms-backend/internal/config"
	"vms-backend/internal/database"
	"vms-backend/internal/emails"
	"vms-backend/internal/health"
	"vms-backend/internal/middleware"
	"vms-backend/internal/models"
	"vms-backend/internal/scanflow"
	"vms-backend/internal/uploads"
	"vms-backend/internal/visitors"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. Returns the DB and Redis handles for startup checks.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	rdb, err := openRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Health (no auth)
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		FrontendURL:    cfg.FrontendURL,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		healthHandlers.DB = &database.Pinger{DB: db}
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/reset", healthHandlers.Reset)

	// Auth (no auth middleware on login)
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{UserFinder: userFinder, JWTSecret: cfg.JWTSecret}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", middleware.RequireAuth(cfg.JWTSecret), authHandlers.Me)

	if db == nil {
		return app, db, rdb, nil
	}

	mailer := &emails.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
	visitorService := &visitors.Service{DB: db, Mailer: mailer}
	visitorHandlers := &visitors.Handlers{Service: visitorService}

	// Kiosk endpoints run unauthenticated: the kiosk is a shared device at
	// the front desk, identified only by its station IP.
	app.Post("/api/v1/visitors/resolve-code", visitorHandlers.ResolveByCode)

	gate := &scanflow.RedisGate{Rdb: rdb}
	handoff := &scanflow.HandoffStore{Rdb: rdb}
	controller := &scanflow.Controller{Resolver: visitorService, Gate: gate, Handoff: handoff}
	scanHandlers := &scanflow.Handlers{Controller: controller}
	app.Post("/api/v1/checkin/verify", scanHandlers.Verify)
	app.Get("/api/v1/checkin/handoff/:key", scanHandlers.Handoff)

	companyService := &companies.Service{DB: db}
	companyHandlers := &companies.Handlers{Service: companyService}
	app.Get("/api/v1/companies/exists", companyHandlers.Exists)
	app.Post("/api/v1/companies/invite", companyHandlers.Invite)

	uploadService := &uploads.Service{Store: storeFor(cfg)}
	uploadHandlers := &uploads.Handlers{Service: uploadService}
	app.Post("/api/v1/uploads/visitor-image/:tempKey/:slot", uploadHandlers.UploadVisitorImage)
	app.Get("/api/v1/uploads/blob", uploadHandlers.FetchBlob)

	// Host-facing visitor management (auth required)
	visitorGroup := app.Group("/api/v1/visitors", middleware.RequireAuth(cfg.JWTSecret))
	visitorGroup.Post("/", visitorHandlers.CreateVisitor)
	visitorGroup.Get("/", visitorHandlers.ListVisitors)
	visitorGroup.Get("/:id", visitorHandlers.GetVisitor)
	visitorGroup.Patch("/:id", visitorHandlers.UpdateVisitor)
	visitorGroup.Post("/:id/approve", visitorHandlers.Approve)
	visitorGroup.Post("/:id/reject", visitorHandlers.Reject)
	visitorGroup.Post("/:id/reinvite", middleware.RequireRole(models.RoleHost, models.RoleAdmin), visitorHandlers.Reinvite)

	return app, db, rdb, nil
}

func openRedis(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return redis.NewClient(&redis.Options{Addr: "localhost:6379"}), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func storeFor(cfg *config.Config) uploads.ObjectStore {
	if cfg.StorageURL == "" {
		return uploads.NewMemoryStore()
	}
	return &uploads.HTTPStore{
		BaseURL:   cfg.StorageURL,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
	}
}
