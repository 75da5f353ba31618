package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/morphingprojections/projection-job/internal/api"
	"github.com/morphingprojections/projection-job/internal/api/middleware"
	"github.com/morphingprojections/projection-job/internal/app"
	"github.com/morphingprojections/projection-job/internal/config"
	"github.com/morphingprojections/projection-job/internal/logger"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.GetDefault().WithError(err).Fatal("Failed to load config")
	}

	appLogger := app.NewLogger(&cfg.Log, "projection-api")
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	a, err := app.New(cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize")
	}
	defer a.Close()

	sqlDB, err := a.DB.DB()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to get database handle")
	}

	router := api.SetupRouter(a.Pipeline, sqlDB, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}, cfg.Server.Mode)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
