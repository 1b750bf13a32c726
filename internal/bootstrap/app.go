package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"courses-backend/internal/chat"
	"courses-backend/internal/courses"
	"courses-backend/internal/ingest"
	"courses-backend/internal/serve"
	"courses-backend/internal/shared/config"
	"courses-backend/internal/shared/server"
	"courses-backend/internal/shared/storage/db"
)

const sweepInterval = time.Minute

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Repo     courses.Repo
	Courses  *courses.Service
	Ingestor *ingest.Ingestor
	Resolver *serve.Resolver
	Machine  *chat.Machine
	Sweeper  *chat.Sweeper
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo courses.Repo
	if sqlDB != nil {
		repo = &courses.PGRepo{DB: sqlDB}
	} else {
		repo = courses.NewSnapshotRepo(cfg.SnapshotPath)
	}

	svc := &courses.Service{Repo: repo, BaseURL: cfg.BaseURL}
	ingestor := &ingest.Ingestor{
		Repo:     repo,
		DataDir:  cfg.DataDir,
		MaxBytes: cfg.MaxArchiveBytes,
	}
	resolver := &serve.Resolver{Repo: repo}
	machine := chat.NewMachine(ingestor, svc, cfg.SessionTimeout)

	sweeper, err := chat.NewSweeper(machine, sweepInterval)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Repo:     repo,
		Courses:  svc,
		Ingestor: ingestor,
		Resolver: resolver,
		Machine:  machine,
		Sweeper:  sweeper,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		CoursesHandler: courses.NewHandler(svc),
		ServeHandler:   serve.NewHandler(resolver),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using snapshot registry: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using snapshot registry: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
