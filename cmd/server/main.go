package main // Entry point package

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"

    "github.com/iliyamo/movie-ticketing/internal/config"
    "github.com/iliyamo/movie-ticketing/internal/database"
    "github.com/iliyamo/movie-ticketing/internal/handler"
    "github.com/iliyamo/movie-ticketing/internal/logger"
    "github.com/iliyamo/movie-ticketing/internal/middleware"
    "github.com/iliyamo/movie-ticketing/internal/queue"
    "github.com/iliyamo/movie-ticketing/internal/repository"
    "github.com/iliyamo/movie-ticketing/internal/router"
    "github.com/iliyamo/movie-ticketing/internal/service"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        logger.L().Fatal("load config", zap.Error(err))
    }

    logCfg := logger.DefaultConfig()
    logCfg.Level = cfg.LogLevel
    logCfg.Development = cfg.Env == "dev"
    if err := logger.Init(logCfg); err != nil {
        logger.L().Fatal("init logger", zap.Error(err))
    }
    defer func() { _ = logger.Sync() }()
    log := logger.L()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatal("open database", zap.Error(err))
    }
    defer db.Close()
    if cfg.DBAutoMigrate {
        if err := database.Migrate(ctx, db); err != nil {
            log.Fatal("migrate database", zap.Error(err))
        }
        log.Info("schema applied")
    }

    // Redis is optional; without it cache and rate limiting pass through.
    rdb, err := config.NewRedisClient(ctx)
    if err != nil {
        log.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
    }
    if rdb != nil {
        defer rdb.Close()
    }

    clock := service.SystemClock{Loc: cfg.Location}

    movies := repository.NewMovieRepo(db)
    showtimes := repository.NewShowtimeRepo(db)
    reservations := repository.NewReservationRepo(db)
    ratings := repository.NewRatingRepo(db)
    users := repository.NewUserRepo(db)
    stats := repository.NewStatsRepo(db)

    ledger := service.NewSeatLedger(showtimes, reservations)
    catalogSvc := service.NewCatalogService(movies, showtimes)
    reservationSvc := service.NewReservationService(db, ledger, reservations, movies,
        queue.NewPublisher(cfg.RabbitMQURL, log), clock, log,
        service.ReservationOptions{UnitPriceCents: cfg.TicketPriceCents})
    ratingSvc := service.NewRatingService(db, ratings, movies, log)
    reportSvc := service.NewReportService(stats, clock)
    adminSvc := service.NewAdminService(users, log)

    if cfg.NotifyConsumerEnabled {
        consumer := queue.NewConsumer(cfg.RabbitMQURL, log)
        go func() {
            if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                log.Error("notification consumer stopped", zap.Error(err))
            }
        }()
    }

    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.Use(echomw.Recover())
    e.Use(echomw.RequestID())
    e.Use(middleware.RequestLogger(log))

    router.Register(e, router.Handlers{
        Health:       handler.Health(db),
        Catalog:      handler.NewCatalogHandler(catalogSvc, ledger),
        Reservations: handler.NewReservationHandler(reservationSvc),
        Ratings:      handler.NewRatingHandler(ratingSvc),
        Admin:        handler.NewAdminHandler(reportSvc, adminSvc),
    }, router.Middleware{
        Auth:      middleware.NewAuthenticator(cfg.JWTSecret, users, log),
        Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
        RateLimit: middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb, log).Middleware(),
    })

    addr := ":" + cfg.Port
    go func() {
        log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal("server failed", zap.Error(err))
        }
    }()

    <-ctx.Done()
    log.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Error("shutdown", zap.Error(err))
    }
    // confirmations already dispatched get to finish before the pool closes
    reservationSvc.Wait()
}
