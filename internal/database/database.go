package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"storefront-catalog/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service owns the Postgres connection pool for the lifetime of the process
type Service interface {
	// Pool returns the shared pool handed to repositories
	Pool() *pgxpool.Pool
	// Health reports pool statistics and whether the database answers a ping
	Health(ctx context.Context) map[string]string
	// Close releases every pooled connection
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

// DSN renders the connection string for the configured database
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:   cfg.Database,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	q.Set("search_path", cfg.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// New opens a pool and verifies it with a ping
func New(ctx context.Context, cfg config.DatabaseConfig) (Service, error) {
	poolCfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &service{pool: pool}, nil
}

func (s *service) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = fmt.Sprintf("%d", poolStats.TotalConns())
	stats["idle_conns"] = fmt.Sprintf("%d", poolStats.IdleConns())
	stats["acquired_conns"] = fmt.Sprintf("%d", poolStats.AcquiredConns())
	stats["max_conns"] = fmt.Sprintf("%d", poolStats.MaxConns())
	return stats
}

func (s *service) Close() {
	s.pool.Close()
}
