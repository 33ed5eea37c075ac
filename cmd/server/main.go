package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/config"
	"github.com/eventhub-live/eventhub/internal/database"
	"github.com/eventhub-live/eventhub/internal/handler"
	"github.com/eventhub-live/eventhub/internal/middleware"
	"github.com/eventhub-live/eventhub/internal/pricing"
	"github.com/eventhub-live/eventhub/internal/queue"
	"github.com/eventhub-live/eventhub/internal/repository"
	"github.com/eventhub-live/eventhub/internal/router"
	"github.com/eventhub-live/eventhub/internal/service"
	"github.com/eventhub-live/eventhub/internal/sweeper"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	// Redis is optional: without it the response cache and rate limiter
	// become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiterMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	settings := repository.NewSettingsRepo(db, pricing.Rates{
		ConvenienceFee: cfg.FeeRate,
		Tax:            cfg.TaxRate,
	})

	publisher := queue.NewPublisher()
	bookingSvc := service.NewBookingService(events, bookings, settings, publisher)

	// Background workers: the expiry sweeper and the broker consumer
	// that writes the booking log.
	go sweeper.New(events, tokens, cfg.SweepInterval).Run(ctx)
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(events, bookingSvc), cacheMW)
	router.RegisterOrganizer(e, handler.NewOrganizerHandler(events, bookings, bookingSvc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(events, settings), cfg.JWTSecret)
	router.RegisterCustomer(e, handler.NewCustomerHandler(bookingSvc, bookings), cfg.JWTSecret, limiterMW)
	router.RegisterPayments(e, handler.NewPaymentHandler(bookingSvc), limiterMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
