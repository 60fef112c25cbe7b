package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type pgDirectory struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

func NewPostgres(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Directory {
	return &pgDirectory{dbPool: dbPool, log: log}
}

func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS portal_accounts (
  id uuid PRIMARY KEY,
  email text NOT NULL UNIQUE,
  created_at timestamptz NOT NULL DEFAULT NOW()
);`)
	return err
}

func (d *pgDirectory) AccountByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	err := d.dbPool.QueryRow(ctx, `SELECT id::text, email FROM portal_accounts WHERE email=$1`, normalize(email)).Scan(&a.ID, &a.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (d *pgDirectory) Ensure(ctx context.Context, email string) (Account, error) {
	email = normalize(email)
	if email == "" {
		return Account{}, errors.New("empty email")
	}
	_, err := d.dbPool.Exec(ctx, `INSERT INTO portal_accounts(id, email) VALUES ($1,$2) ON CONFLICT (email) DO NOTHING`, uuid.New(), email)
	if err != nil {
		return Account{}, err
	}
	return d.AccountByEmail(ctx, email)
}
