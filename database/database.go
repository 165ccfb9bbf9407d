package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/XSAM/otelsql"
	"github.com/irsalhamdi/e-learning/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var ErrDBNotFound = errors.New("not found")

func DSN(cfg config.DB) string {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open returns a connection pool whose queries are traced and measured.
func Open(cfg config.DB) (*sqlx.DB, error) {
	db, err := otelsql.Open("postgres", DSN(cfg),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, err
	}

	dbx := sqlx.NewDb(db, "postgres")
	dbx.SetMaxIdleConns(cfg.MaxIdleConns)
	dbx.SetMaxOpenConns(cfg.MaxOpenConns)

	return dbx, nil
}

func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var tmp bool
	return db.QueryRowContext(ctx, `SELECT true`).Scan(&tmp)
}

// Transaction runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise.
func Transaction(ctx context.Context, db *sqlx.DB, fn func(tx sqlx.ExtContext) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback: %v: %w", rerr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
