package trail

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5"
)

// Migrations holds the goose migrations for PostgresStore, rooted at "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// PostgresDB is the subset of *pgxpool.Pool used by PostgresStore.
type PostgresDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps trail lines as rows of the audit_trail table.
type PostgresStore struct {
	db PostgresDB
}

func NewPostgresStore(db PostgresDB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	insertLineSQL = `INSERT INTO audit_trail (trail_key, line) VALUES ($1, $2)`
	trimTrailSQL  = `DELETE FROM audit_trail
WHERE trail_key = $1
  AND id NOT IN (
    SELECT id FROM audit_trail WHERE trail_key = $1 ORDER BY id DESC LIMIT $2
  )`
	listTrailSQL = `SELECT line FROM audit_trail WHERE trail_key = $1 ORDER BY id ASC`
)

func (s *PostgresStore) Push(ctx context.Context, key, line string, limit int) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertLineSQL, key, line); err != nil {
			return err
		}
		if limit <= 0 {
			return nil
		}
		_, err := tx.Exec(ctx, trimTrailSQL, key, limit)
		return err
	})
}

func (s *PostgresStore) List(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.Query(ctx, listTrailSQL, key)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
