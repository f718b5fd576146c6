package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"diabetes-backend/internal/predictions"
	"diabetes-backend/internal/services/health"
	"diabetes-backend/internal/shared/config"
	"diabetes-backend/internal/shared/server"
	"diabetes-backend/internal/shared/storage/db"
	"diabetes-backend/internal/shared/storage/object"
	localstore "diabetes-backend/internal/shared/storage/object/local"
	s3store "diabetes-backend/internal/shared/storage/object/s3"
	"diabetes-backend/internal/shared/telemetry"
	"diabetes-backend/internal/web"
)

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Store             object.Store
	Model             *predictions.RiskModel
	PredictionRepo    predictions.Repo
	PredictionService *predictions.Service
	PredictionHandler *predictions.Handler
	WebHandler        *web.Handler
	Health            *health.Service
}

// Build connects storage, loads the model and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.SetLevel(telemetry.ParseLevel(cfg.LogLevel))

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	model, custom, err := predictions.LoadModel(ctx, store, cfg.ModelKey)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	modelSource := "default"
	if custom {
		modelSource = cfg.ModelKey
	}
	telemetry.Info("bootstrap.model", map[string]any{"source": modelSource})

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Model:  model,
	}
	if sqlDB != nil {
		app.PredictionRepo = &predictions.PGRepo{DB: sqlDB}
		app.Health = health.NewService(sqlDB, modelSource)
	} else {
		app.PredictionRepo = predictions.NewMemoryRepo()
		app.Health = health.NewService(nil, modelSource)
	}
	app.PredictionService = predictions.NewService(app.PredictionRepo, model)
	app.PredictionHandler = predictions.NewHandler(app.PredictionService)
	app.WebHandler = web.NewHandler(app.PredictionService)

	app.Router, err = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Health:            app.Health,
		PredictionHandler: app.PredictionHandler,
		WebHandler:        app.WebHandler,
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Close releases the database pool unless it is the shared Lambda pool.
func (a *App) Close() error {
	if a.DB == nil || db.InLambda() {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.InLambda() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.PoolFromEnv(db.LambdaPool()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.PoolFromEnv(db.ServerPool()))
	}
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database unavailable", "error": err})
			if sqlDB != nil && !db.InLambda() {
				_ = sqlDB.Close()
			}
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
