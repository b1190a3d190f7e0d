package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/muralikrishna-27/aeroface-rec/internal/api/docs"
	"github.com/muralikrishna-27/aeroface-rec/internal/api/handler"
	"github.com/muralikrishna-27/aeroface-rec/internal/api/middleware"
	"github.com/muralikrishna-27/aeroface-rec/internal/attendance"
	"github.com/muralikrishna-27/aeroface-rec/internal/audit"
	"github.com/muralikrishna-27/aeroface-rec/internal/config"
	"github.com/muralikrishna-27/aeroface-rec/internal/match"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
	"github.com/muralikrishna-27/aeroface-rec/internal/ratelimit"
	"github.com/muralikrishna-27/aeroface-rec/internal/repository"
	"github.com/muralikrishna-27/aeroface-rec/internal/service"
	"github.com/muralikrishna-27/aeroface-rec/internal/ws"
)

type Dependencies struct {
	RegistryRepo   repository.RegistryRepositoryInterface
	AttendanceRepo repository.AttendanceRepositoryInterface
	Detector       provider.Detector
	Embedder       provider.Embedder
	DB             *pgxpool.Pool
	Config         *config.Config
}

type Router struct {
	app       *fiber.App
	logger    *slog.Logger
	deps      *Dependencies
	wsHub     *ws.Hub
	cancelHub context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "AeroFace API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var pinger handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		pinger = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/v1")

	// Only configure the full pipeline if dependencies were provided
	if r.deps != nil {
		cfg := r.deps.Config

		// WebSocket hub for kiosk display events
		r.wsHub = ws.NewHub()
		hubCtx, hubCancel := context.WithCancel(context.Background())
		r.cancelHub = hubCancel
		go r.wsHub.Run(hubCtx)

		machine := attendance.NewMachine(
			r.deps.AttendanceRepo,
			r.logger,
			attendance.WithMinVisit(cfg.MinVisit()),
		)

		limiter := ratelimit.NewRateLimiter(
			r.deps.DB,
			time.Duration(cfg.DeniedAttemptWindow)*time.Second,
		)

		accessService := service.NewAccessService(
			r.deps.RegistryRepo,
			r.deps.AttendanceRepo,
			machine,
			r.deps.Detector,
			r.deps.Embedder,
			limiter,
			audit.NewSlogLogger(r.logger),
			r.wsHub,
			match.Config{
				Threshold:  cfg.MatchThreshold,
				WindowSize: cfg.MatchWindowSize,
				Dimensions: cfg.EmbeddingDim,
			},
			cfg.DeniedAttemptLimit,
			r.logger,
		)

		faceHandler := handler.NewFaceHandler(accessService, r.logger)
		v1.Post("/faces", faceHandler.Enroll)
		v1.Post("/faces/verify", faceHandler.Verify)
		v1.Get("/faces/:identity/status", faceHandler.Status)
		v1.Delete("/faces/:identity", faceHandler.Delete)

		attendanceHandler := handler.NewAttendanceHandler(accessService, r.logger)
		v1.Get("/attendance/:identity", attendanceHandler.Get)

		// WebSocket endpoint
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelHub != nil {
		r.cancelHub()
	}

	return r.app.Shutdown()
}
