package metadata

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tenantportal/pkg/db"
)

// pgStore implements Store on a single portal_meta table.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

func NewPostgres(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the metadata table; safe to call repeatedly.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS portal_meta (
  owner_id text NOT NULL,
  meta_key text NOT NULL,
  position int NOT NULL,
  meta_value text NOT NULL,
  PRIMARY KEY (owner_id, meta_key, position)
);
CREATE INDEX IF NOT EXISTS portal_meta_key_value_idx ON portal_meta(meta_key, meta_value);
`)
	return err
}

func (p *pgStore) Get(ctx context.Context, owner, key string) ([]string, error) {
	rows, err := p.dbPool.Query(ctx, `SELECT meta_value FROM portal_meta WHERE owner_id=$1 AND meta_key=$2 ORDER BY position`, owner, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (p *pgStore) GetAll(ctx context.Context, owner string) (map[string][]string, error) {
	rows, err := p.dbPool.Query(ctx, `SELECT meta_key, meta_value FROM portal_meta WHERE owner_id=$1 ORDER BY meta_key, position`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = append(out[k], v)
	}
	return out, rows.Err()
}

func (p *pgStore) Put(ctx context.Context, owner, key string, values []string) error {
	return p.PutMany(ctx, owner, map[string][]string{key: values})
}

// PutMany replaces every listed key in one transaction, in sorted key order so
// concurrent writers to the same owner take row locks consistently.
func (p *pgStore) PutMany(ctx context.Context, owner string, writes map[string][]string) error {
	keys := make([]string, 0, len(writes))
	for k := range writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return db.InTx(ctx, p.dbPool, func(tx pgx.Tx) error {
		for _, key := range keys {
			if _, err := tx.Exec(ctx, `DELETE FROM portal_meta WHERE owner_id=$1 AND meta_key=$2`, owner, key); err != nil {
				return err
			}
			for i, v := range writes[key] {
				if _, err := tx.Exec(ctx, `INSERT INTO portal_meta(owner_id, meta_key, position, meta_value) VALUES ($1,$2,$3,$4)`, owner, key, i, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (p *pgStore) Delete(ctx context.Context, owner, key string) error {
	_, err := p.dbPool.Exec(ctx, `DELETE FROM portal_meta WHERE owner_id=$1 AND meta_key=$2`, owner, key)
	return err
}

func (p *pgStore) Owners(ctx context.Context, prefix, key, value string) ([]string, error) {
	return p.ownerList(ctx, `SELECT DISTINCT owner_id FROM portal_meta
		WHERE starts_with(owner_id, $1) AND meta_key=$2 AND meta_value=$3 ORDER BY owner_id`, prefix, key, value)
}

func (p *pgStore) OwnersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return p.ownerList(ctx, `SELECT DISTINCT owner_id FROM portal_meta WHERE starts_with(owner_id, $1) ORDER BY owner_id`, prefix)
}

func (p *pgStore) ownerList(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := p.dbPool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
