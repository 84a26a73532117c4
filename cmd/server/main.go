package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/config"
	"github.com/ahmednasr/restaurant-autocomplete/internal/database"
	"github.com/ahmednasr/restaurant-autocomplete/internal/handler"
	"github.com/ahmednasr/restaurant-autocomplete/internal/logger"
	"github.com/ahmednasr/restaurant-autocomplete/internal/middleware"
	"github.com/ahmednasr/restaurant-autocomplete/internal/repository"
	"github.com/ahmednasr/restaurant-autocomplete/internal/service"
)

// main is the single entry‑point for the restaurant API.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("configuration loaded",
		zap.String("store", cfg.Store),
		zap.String("port", cfg.Port),
		zap.String("data_path", cfg.DataPath),
		zap.String("db", cfg.DBName))

	// Pick the restaurant store
	var (
		repo     service.RestaurantRepository
		dbClient *mongo.Client
	)
	switch cfg.Store {
	case config.StoreMongo:
		dbClient, err = database.NewMongo(context.Background(), cfg.MongoURI)
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer dbClient.Disconnect(context.Background())
		repo = repository.NewRestaurantMongo(dbClient.Database(cfg.DBName))
		log.Info("connected to MongoDB")
	default:
		repo = repository.NewRestaurantCSV(cfg.DataPath)
	}

	// Initialize services
	restaurantSvc := service.NewRestaurantService(repo, log.Named("service"))

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler(log),
	})

	// Add middleware
	app.Use(middleware.Recover(log.Named("http")))
	app.Use(middleware.Logging(log.Named("http")))

	// Register routes
	handler.RegisterRoutes(app, restaurantSvc)

	// Add health check
	healthHandler := handler.NewHealthHandler(restaurantSvc, cfg.Store, dbClient)
	healthHandler.Register(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	// Start server
	log.Info("server starting", zap.String("addr", ":"+cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server failed to start", zap.Error(err))
	}
}
