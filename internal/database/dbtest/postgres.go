// Package dbtest starts a disposable PostgreSQL container with the service
// schema applied, for integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"inventory-orders/internal/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	dbName = "testdb"
	dbPwd  = "password"
	dbUser = "user"
)

// Teardown stops the container and closes the pool
type Teardown func(context.Context) error

// MigrationsDir returns the absolute path of the repository migrations
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// Setup runs postgres:15, applies every migration and returns an open pool
func Setup(ctx context.Context) (*sql.DB, Teardown, error) {
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("could not start postgres container: %w", err)
	}

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = dbContainer.Terminate(ctx)
		return nil, nil, err
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		_ = dbContainer.Terminate(ctx)
		return nil, nil, err
	}

	if err := database.RunMigrations(db, MigrationsDir(), zap.NewNop()); err != nil {
		db.Close()
		_ = dbContainer.Terminate(ctx)
		return nil, nil, err
	}

	teardown := func(ctx context.Context) error {
		db.Close()
		return dbContainer.Terminate(ctx)
	}
	return db, teardown, nil
}

// Truncate empties every table and restarts the id sequences
func Truncate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE order_items, orders, products RESTART IDENTITY CASCADE`)
	return err
}
