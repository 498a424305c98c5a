// Package database manages the PostgreSQL connection pool.
package database

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/config"
)

// Service exposes the connection pool and health information.
// Handlers depend on this interface rather than a package-level pool,
// so tests can substitute their own implementation.
type Service interface {
	GetPool() *pgxpool.Pool
	Health() map[string]string
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

// New creates a connection pool and verifies connectivity.
// Exits the process if the database is unreachable, since the server
// cannot do anything useful without it.
func New(cfg *config.DBConfig) Service {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		log.Fatalf("Invalid DATABASE_URL: %v", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to PostgreSQL")
	return &service{pool: pool}
}

func (s *service) GetPool() *pgxpool.Pool {
	return s.pool
}

// Health reports the database status for the /api/health endpoint.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		return map[string]string{
			"status":  "down",
			"message": err.Error(),
		}
	}

	stats := s.pool.Stat()
	return map[string]string{
		"status":           "up",
		"message":          "It's healthy",
		"open_connections": strconv.Itoa(int(stats.TotalConns())),
	}
}

func (s *service) Close() {
	s.pool.Close()
}
