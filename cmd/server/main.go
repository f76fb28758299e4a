package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/notify"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/router"
	"github.com/iliyamo/travel-booking/internal/service"
)

func main() {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	if _, err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort,
		Name: cfg.DBName, MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		logger.L().Fatal("database unreachable", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.L().Fatal("migrate failed", zap.Error(err))
		}
		logger.Info("schema applied")
	}
	if cfg.DBSeed {
		if err := database.Seed(ctx, db); err != nil {
			logger.L().Fatal("seed failed", zap.Error(err))
		}
	}

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cities := repository.NewCityRepo(db)
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	roomTypes := repository.NewRoomTypeRepo(db)
	discounts := repository.NewDiscountRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)

	mailer := notify.New(cfg.SMTP)

	// events stay nil interfaces when the broker is off
	var (
		pub           *queue.Publisher
		bookingEvents service.BookingEvents
		userEvents    service.UserEvents
	)
	if cfg.AMQPEnabled {
		pub = queue.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		bookingEvents, userEvents = pub, pub

		consumer := &queue.Consumer{URL: cfg.AMQPURL, BookingLog: cfg.BookingLog, Mailer: mailer}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	authSvc := service.NewAuthService(service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, users, tokens, userEvents, mailer)
	bookingSvc := service.NewBookingService(bookings, bookingEvents)
	reviewSvc := service.NewReviewService(reviews, hotels)
	hotelSvc := service.NewHotelService(hotels, rooms, cities)
	adminSvc := service.NewAdminService(cities, hotels, rooms, roomTypes, discounts)

	if created, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		logger.Warn("admin bootstrap failed", zap.Error(err))
	} else if created {
		logger.Info("admin account created", zap.String("email", cfg.AdminEmail))
	}

	// Redis backs the rate limiter and the shared cache tier.  Without it the
	// limiter is off and the cache falls back to Memcached or process memory.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	limits := router.Limits{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     cache.Middleware(),
		Purge:     cache.PurgeOnWrite(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = router.ErrorHandler
	e.Use(echomw.RequestID(), middleware.RequestLogger(), echomw.Recover())

	reviewH := handler.NewReviewHandler(reviewSvc)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), cfg.JWTSecret, limits)
	router.RegisterPublic(e, handler.NewHotelHandler(hotelSvc), reviewH, limits)
	router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc), reviewH, cfg.JWTSecret, limits)
	router.RegisterAdmin(e, router.AdminHandlers{
		Cities:    handler.NewCRUDHandler[model.City](adminSvc.Cities),
		Hotels:    handler.NewCRUDHandler[model.Hotel](adminSvc.Hotels),
		Rooms:     handler.NewCRUDHandler[model.Room](adminSvc.Rooms),
		RoomTypes: handler.NewCRUDHandler[model.RoomType](adminSvc.RoomTypes),
		Discounts: handler.NewCRUDHandler[model.Discount](adminSvc.Discounts),
		Reviews:   reviewH,
	}, cfg.JWTSecret, limits)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.Bool("amqp", cfg.AMQPEnabled), zap.Bool("redis", rdb != nil), zap.Int("cache_tiers", cache.Tiers()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
