package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/courtline/court-reservation/internal/api"
	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/booking"
	"github.com/courtline/court-reservation/internal/chat"
	"github.com/courtline/court-reservation/internal/coach"
	"github.com/courtline/court-reservation/internal/court"
	"github.com/courtline/court-reservation/internal/gallery"
	"github.com/courtline/court-reservation/internal/message"
	"github.com/courtline/court-reservation/internal/notify"
	"github.com/courtline/court-reservation/internal/pkg/clock"
	"github.com/courtline/court-reservation/internal/pkg/storage"
	"github.com/courtline/court-reservation/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	CooldownDays           int
	AvailabilityRatePerMin int
	MessageRatePerMin      int

	// Notifier receives booking, message and chat events; nil logs them instead.
	Notifier   notify.Dispatcher
	AdminEmail string
	Storage    storage.Storage
	// Clock defaults to the system clock.
	Clock clock.Clock
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.LogDispatcher{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, cfg.Clock)

	// Court Module
	courtRepo := court.NewPgxRepository(cfg.DBPool)
	courtService := court.NewService(courtRepo)

	// Coach Module
	coachRepo := coach.NewPgxRepository(cfg.DBPool)
	coachService := coach.NewService(coachRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, courtService, userService, coachService,
		booking.WithCooldownDays(cfg.CooldownDays),
		booking.WithClock(cfg.Clock),
		booking.WithNotifier(cfg.Notifier),
		booking.WithAdminEmail(cfg.AdminEmail),
	)

	// Gallery Module
	galleryRepo := gallery.NewPgxRepository(cfg.DBPool)
	galleryService := gallery.NewService(galleryRepo, cfg.Storage)

	// Message Module
	messageRepo := message.NewPgxRepository(cfg.DBPool)
	messageService := message.NewService(messageRepo, cfg.Notifier, cfg.AdminEmail)

	// Chat Module
	chatRepo := chat.NewPgxRepository(cfg.DBPool)
	chatService := chat.NewService(chatRepo, cfg.Notifier, cfg.Clock)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:           cfg.IsProduction,
		ProdOrigins:            cfg.ProdOrigins,
		Logger:                 cfg.Logger,
		DB:                     cfg.DBPool,
		UserService:            userService,
		CourtService:           courtService,
		CoachService:           coachService,
		BookingService:         bookingService,
		GalleryService:         galleryService,
		MessageService:         messageService,
		ChatService:            chatService,
		JWTManager:             jwtManager,
		AvailabilityRatePerMin: cfg.AvailabilityRatePerMin,
		MessageRatePerMin:      cfg.MessageRatePerMin,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
	}
}
