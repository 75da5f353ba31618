// Package app wires configuration into the projection pipeline.
package app

import (
	"fmt"

	"github.com/morphingprojections/projection-job/internal/config"
	"github.com/morphingprojections/projection-job/internal/logger"
	"github.com/morphingprojections/projection-job/internal/reduction"
	"github.com/morphingprojections/projection-job/internal/repository"
	"github.com/morphingprojections/projection-job/internal/service"
	"github.com/morphingprojections/projection-job/internal/storage"
	"gorm.io/gorm"
)

// App holds the connections and services of one process.
type App struct {
	DB       *gorm.DB
	Storage  storage.ObjectStorage
	Pipeline *service.Pipeline
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg *config.LogConfig, serviceName string) *logger.Logger {
	return logger.New(&logger.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		ServiceName: serviceName,
		File:        cfg.File,
		FileOnly:    cfg.FileOnly,
		MaxSize:     cfg.MaxSize,
		MaxBackups:  cfg.MaxBackups,
		MaxAge:      cfg.MaxAge,
		Compress:    cfg.Compress,
	})
}

// New opens the catalog database and object store and assembles the pipeline.
// Callers must Close the returned App.
func New(cfg *config.Config) (*App, error) {
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a, err := NewWithDB(cfg, db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return a, nil
}

// NewWithDB assembles the pipeline on an already opened database.
// The App takes ownership of db.
func NewWithDB(cfg *config.Config, db *gorm.DB) (*App, error) {
	a := &App{DB: db}

	var err error
	a.Storage, err = storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	reducer, err := reduction.New(&reduction.Config{
		Method:       reduction.Method(cfg.Reduction.Method),
		BaseURL:      cfg.Reduction.BaseURL,
		APIKey:       cfg.Reduction.APIKey,
		Timeout:      cfg.Reduction.Timeout,
		LearningRate: cfg.Reduction.LearningRate,
		MaxIter:      cfg.Reduction.MaxIter,
		Init:         cfg.Reduction.Init,
		TSNEMethod:   cfg.Reduction.TSNEMethod,
	})
	if err != nil {
		return nil, err
	}

	resources := repository.NewResourceRepository(db)
	a.Pipeline = service.NewPipeline(
		repository.NewCaseRepository(db),
		resources,
		repository.NewAnnotationRepository(db),
		service.NewTableLoader(a.Storage),
		service.NewProjectionBuilder(reducer, service.ProjectionConfig{
			DefaultNeighbors: cfg.Projection.DefaultNeighbors,
			Workers:          cfg.Projection.Workers,
		}),
		service.NewPublisher(resources, a.Storage, cfg.Projection.AuditUser),
	)
	return a, nil
}

// Close releases the database connection pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
