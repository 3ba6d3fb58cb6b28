package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/booking"
	bookingHttp "github.com/courtline/court-reservation/internal/booking/http"
	"github.com/courtline/court-reservation/internal/chat"
	chatHttp "github.com/courtline/court-reservation/internal/chat/http"
	"github.com/courtline/court-reservation/internal/coach"
	coachHttp "github.com/courtline/court-reservation/internal/coach/http"
	"github.com/courtline/court-reservation/internal/court"
	courtHttp "github.com/courtline/court-reservation/internal/court/http"
	"github.com/courtline/court-reservation/internal/gallery"
	galleryHttp "github.com/courtline/court-reservation/internal/gallery/http"
	"github.com/courtline/court-reservation/internal/message"
	messageHttp "github.com/courtline/court-reservation/internal/message/http"
	"github.com/courtline/court-reservation/internal/pkg/ratelimit"
	"github.com/courtline/court-reservation/internal/user"
	userHttp "github.com/courtline/court-reservation/internal/user/http"
)

// Config holds everything the router needs to assemble the HTTP surface.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger
	DB           Pinger

	UserService    user.Service
	CourtService   court.Service
	CoachService   coach.Service
	BookingService booking.Service
	GalleryService gallery.Service
	MessageService message.Service
	ChatService    chat.Service
	JWTManager     *auth.JWTManager

	AvailabilityRatePerMin int
	MessageRatePerMin      int
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, logging, metrics, auth) and registering routes for each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - RequestLogger: Request-scoped zerolog logger plus one access line per request.
	// - Metrics: Prometheus request counters by route template.
	r.Use(gin.Recovery(), RequestLogger(cfg.Logger), Metrics())
	r.Use(cors.New(corsConfig(cfg)))

	r.GET("/health", healthHandler(cfg.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is an active admin.
	adminMiddleware := RequireAdmin(cfg.UserService)
	// viewerMiddleware: Identifies the caller and their admin flag on public routes without requiring a token.
	viewerMiddleware := Viewer(cfg.JWTManager, cfg.UserService)
	// optionalAuth: Identity only, for public routes that never look at roles.
	optionalAuth := auth.OptionalAuth(cfg.JWTManager)

	availabilityLimit := ratelimit.PerMinute(cfg.AvailabilityRatePerMin).
		Middleware("too many availability requests, please slow down")
	messageLimit := ratelimit.PerMinute(cfg.MessageRatePerMin).
		Middleware("too many messages, please try again later")

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	courtHandler := courtHttp.NewHandler(cfg.CourtService)
	coachHandler := coachHttp.NewHandler(cfg.CoachService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	galleryHandler := galleryHttp.NewHandler(cfg.GalleryService)
	messageHandler := messageHttp.NewHandler(cfg.MessageService)
	chatHandler := chatHttp.NewHandler(cfg.ChatService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		courtHttp.RegisterRoutes(v1, courtHandler, viewerMiddleware, authMiddleware, adminMiddleware)
		coachHttp.RegisterRoutes(v1, coachHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler, bookingHttp.Middlewares{
			Viewer:            optionalAuth,
			Auth:              []gin.HandlerFunc{authMiddleware, LoadRole(cfg.UserService)},
			Admin:             adminMiddleware,
			AvailabilityLimit: availabilityLimit,
		})
		galleryHttp.RegisterRoutes(v1, galleryHandler, authMiddleware, adminMiddleware)
		messageHttp.RegisterRoutes(v1, messageHandler, messageLimit, authMiddleware, adminMiddleware)
		chatHttp.RegisterRoutes(v1, chatHandler, authMiddleware)
	}

	return r
}

// corsConfig allows the configured production origins, or local dev servers otherwise.
func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{
		"http://localhost:3000", // web client
		"http://localhost:8081", // Swagger
	}
	if cfg.IsProduction {
		config.AllowOrigins = nil
		for _, o := range strings.Split(cfg.ProdOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.AllowOrigins = append(config.AllowOrigins, o)
			}
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader}
	return config
}
