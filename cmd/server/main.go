package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/allocation"
	"github.com/tavolo/seating/internal/availability"
	"github.com/tavolo/seating/internal/cache"
	"github.com/tavolo/seating/internal/config"
	"github.com/tavolo/seating/internal/database"
	"github.com/tavolo/seating/internal/handler"
	"github.com/tavolo/seating/internal/middleware"
	"github.com/tavolo/seating/internal/queue"
	"github.com/tavolo/seating/internal/repository"
	"github.com/tavolo/seating/internal/router"
	"github.com/tavolo/seating/internal/schedule"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the availability cache
	// and the rate limiter, and the API keeps serving from MySQL.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, snapshots and rate limiting disabled")
	}

	seatRepo := repository.NewSeatRepo(db)
	periodRepo := repository.NewPeriodRepo(db)
	seatPeriodRepo := repository.NewSeatPeriodRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	ledger := repository.NewLedger(db)
	availRepo := repository.NewAvailabilityRepo(db)

	cacheCfg := config.LoadAvailabilityCacheConfig()
	var snapshots cache.Cache
	if rdb != nil && cacheCfg.Enabled {
		snapshots = cache.NewRedis(rdb)
	}
	agg := availability.NewAggregator(availRepo, snapshots, availability.Config{
		Prefix:     cacheCfg.Prefix,
		InstantTTL: cacheCfg.InstantTTL,
		DateTTL:    cacheCfg.DateTTL,
	}, cfg.RestaurantTZ)

	engine := allocation.NewEngine(ledger, agg)
	materializer := schedule.NewMaterializer(
		repository.NewScheduleStore(periodRepo, seatRepo, seatPeriodRepo),
		cfg.SessionDuration,
		cfg.OnlineDefault,
	)

	reservationHandler := handler.NewReservationHandler(engine, ledger, reservationRepo, cfg.ConsumerEnabled)
	availabilityHandler := handler.NewAvailabilityHandler(agg)
	adminSeatHandler := handler.NewAdminSeatHandler(seatRepo, seatPeriodRepo, agg)
	adminPeriodHandler := handler.NewAdminPeriodHandler(periodRepo, seatPeriodRepo, materializer, agg)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, availabilityHandler)
	router.RegisterBooking(e, reservationHandler, cfg.JWTSecret)
	router.RegisterStaff(e, reservationHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminSeatHandler, adminPeriodHandler, cfg.JWTSecret)
	if cfg.Env == "dev" {
		router.RegisterDev(e, &handler.TokenHandler{Secret: cfg.JWTSecret})
	}

	if cfg.ConsumerEnabled {
		go queue.StartAuditConsumer()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
