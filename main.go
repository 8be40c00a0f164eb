// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"event-ticketing/cmd"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/usecase"
	"event-ticketing/internal/wire"
	"event-ticketing/pkg/cache"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/notify"
	"event-ticketing/pkg/payment"
	"event-ticketing/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := usecase.Dependencies{
		Payment: payment.NewMockGateway(config.Payment.SuccessRate, logger),
		Coder:   notify.NewQRCoder(config.Booking.QRBaseURL),
		Metrics: metrics.New(registry),
	}

	// Seat map cache is optional
	rdb, err := cache.NewRedisClient(ctx, config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, seat cache disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		deps.Cache = cache.NewSeatCache(rdb, config.Redis.SeatTTL, logger)
		logger.Info("Seat cache enabled", zap.String("addr", config.Redis.Addr))
	}

	// Booking events are optional
	if config.Broker.URL != "" {
		conn, err := notify.Dial(config.Broker.URL, config.Broker.Exchange)
		if err != nil {
			logger.Warn("Broker unavailable, booking events disabled", zap.Error(err))
		} else {
			defer conn.Close()
			deps.Notifier = notify.NewAMQPNotifier(conn.Channel(), config.Broker.Exchange, logger)
			logger.Info("Booking events enabled", zap.String("exchange", config.Broker.Exchange))
		}
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, deps, registry, logger)

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		app.Sweeper.Run(ctx)
	}()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.RequestTimeout, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	// the sweeper must stop before the pool closes
	stop()
	<-sweeperDone
	logger.Info("Server stopped")
}
