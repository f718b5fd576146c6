package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"diabetes-backend/internal/shared/telemetry"
)

// ErrNoDatabaseURL is returned when no connection string is configured.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is empty")

// Pool tunes a *sql.DB connection pool.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
	PingTimeout time.Duration
}

var (
	openDB = sql.Open

	sharedMu   sync.Mutex
	sharedDB   *sql.DB
	sharedWait chan struct{}
)

// InLambda reports whether the process runs inside AWS Lambda.
func InLambda() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// LambdaPool keeps few connections per function instance.
func LambdaPool() Pool {
	return Pool{MaxOpen: 2, MaxIdle: 1, MaxLifetime: 15 * time.Minute, MaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second}
}

// ServerPool suits the long-running API process.
func ServerPool() Pool {
	return Pool{MaxOpen: 10, MaxIdle: 5, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second}
}

// MigratePool uses a single connection.
func MigratePool() Pool {
	return Pool{MaxOpen: 1, MaxIdle: 1, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second}
}

// PoolFromEnv applies DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME, DB_CONN_MAX_IDLE_TIME and DB_PING_TIMEOUT on top of base.
func PoolFromEnv(base Pool) Pool {
	p := base
	if v, ok := envInt("DB_MAX_OPEN_CONNS"); ok {
		p.MaxOpen = v
	}
	if v, ok := envInt("DB_MAX_IDLE_CONNS"); ok {
		p.MaxIdle = v
	}
	if v, ok := envDuration("DB_CONN_MAX_LIFETIME"); ok {
		p.MaxLifetime = v
	}
	if v, ok := envDuration("DB_CONN_MAX_IDLE_TIME"); ok {
		p.MaxIdleTime = v
	}
	if v, ok := envDuration("DB_PING_TIMEOUT"); ok {
		p.PingTimeout = v
	}
	return p
}

// Connect opens a Postgres pool and pings it.
func Connect(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}

	database, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.apply(database)

	timeout := pool.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := database.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return database, nil
}

// Shared returns one pool per process. Concurrent callers wait for the first
// connect; a failed connect is retried by the next call.
func Shared(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	for {
		sharedMu.Lock()
		if sharedDB != nil {
			database := sharedDB
			sharedMu.Unlock()
			return database, nil
		}
		if sharedWait == nil {
			break
		}
		wait := sharedWait
		sharedMu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	wait := make(chan struct{})
	sharedWait = wait
	sharedMu.Unlock()

	database, err := Connect(ctx, databaseURL, pool)

	sharedMu.Lock()
	if err == nil {
		sharedDB = database
	}
	sharedWait = nil
	close(wait)
	sharedMu.Unlock()
	return database, err
}

func (p Pool) apply(database *sql.DB) {
	if p.MaxOpen <= 0 {
		p.MaxOpen = 10
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = 5
	}
	if p.MaxLifetime <= 0 {
		p.MaxLifetime = time.Hour
	}
	database.SetMaxOpenConns(p.MaxOpen)
	database.SetMaxIdleConns(p.MaxIdle)
	database.SetConnMaxLifetime(p.MaxLifetime)
	if p.MaxIdleTime > 0 {
		database.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

func envInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return v, true
}

func envDuration(key string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return 0, false
	}
	return v, true
}
