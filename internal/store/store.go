// Package store wraps the SurrealDB connection and provides the typed
// list-query builder, pagination envelope and generic query helpers used by
// every repository in the service.
package store

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/logging"
)

// Store manages the SurrealDB connection lifecycle.
//
// Thread Safety:
//   - All methods are safe for concurrent use; the underlying client
//     serialises requests over its websocket connection.
type Store struct {
	db     *surrealdb.DB
	logger *logging.Logger
}

// Connect establishes the SurrealDB connection, authenticates and selects
// the configured namespace and database.
func Connect(ctx context.Context, cfg config.SurrealDBConfig, logger *logging.Logger) (*Store, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to surrealdb: %w", err)
	}

	if _, err := db.SignIn(ctx, surrealdb.Auth{
		Username: cfg.Username,
		Password: cfg.Password,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("authenticating with surrealdb: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting namespace %q database %q: %w", cfg.Namespace, cfg.Database, err)
	}

	logger.Info("connected to surrealdb",
		"url", cfg.URL,
		"namespace", cfg.Namespace,
		"database", cfg.Database,
	)

	return &Store{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// DB exposes the underlying client for the generic query helpers.
func (s *Store) DB() *surrealdb.DB {
	return s.db
}

// HealthCheck verifies the connection is alive.
func (s *Store) HealthCheck(ctx context.Context) error {
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("surrealdb health check: %w", err)
	}
	return nil
}

// Close terminates the connection.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

// schemaStatements define the tables and the unique indexes that make
// duplicate detection atomic: a colliding insert fails inside the database
// instead of racing a separate existence check.
var schemaStatements = []string{
	`DEFINE TABLE IF NOT EXISTS user SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS user_username ON TABLE user COLUMNS username UNIQUE`,
	`DEFINE TABLE IF NOT EXISTS tag SCHEMALESS`,
	`DEFINE TABLE IF NOT EXISTS teacher SCHEMALESS`,
	`DEFINE TABLE IF NOT EXISTS course SCHEMALESS`,
	`DEFINE TABLE IF NOT EXISTS reading SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS reading_identity ON TABLE reading COLUMNS teacher, startDate, endDate, course UNIQUE`,
	`DEFINE TABLE IF NOT EXISTS log SCHEMALESS`,
}

// EnsureSchema applies the table and index definitions. Safe to run on
// every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := surrealdb.Query[any](ctx, s.db, stmt, nil); err != nil {
			return fmt.Errorf("applying schema statement %q: %w", stmt, err)
		}
	}
	s.logger.Debug("schema ensured", "statements", len(schemaStatements))
	return nil
}
