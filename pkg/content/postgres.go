package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgRepo reads items from portal_content and visibility from portal_meta.
type pgRepo struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

func NewPostgres(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Repository {
	return &pgRepo{dbPool: dbPool, log: log}
}

// EnsureSchema creates the content table (portal_meta is owned by the metadata package).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS portal_content (
  id bigint PRIMARY KEY,
  kind text NOT NULL,
  title text NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS portal_content_kind_idx ON portal_content(kind);
`)
	return err
}

const selectItem = `SELECT c.id, c.kind, c.title,
  COALESCE((SELECT array_agg(m.meta_value ORDER BY m.position) FROM portal_meta m
            WHERE m.owner_id = 'item:' || c.id AND m.meta_key = 'allowed_tenants'), '{}')
FROM portal_content c`

func (p *pgRepo) Put(ctx context.Context, item Item) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO portal_content(id, kind, title) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET kind=EXCLUDED.kind, title=EXCLUDED.title`, item.ID, string(item.Kind), item.Title)
	return err
}

func (p *pgRepo) Item(ctx context.Context, id ID) (Item, error) {
	it, err := scanItem(p.dbPool.QueryRow(ctx, selectItem+` WHERE c.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (p *pgRepo) Find(ctx context.Context, q *Query) ([]Item, error) {
	sql, args := buildFind(q)
	rows, err := p.dbPool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// buildFind renders q as SQL; kept separate so the clause mapping is testable without a database.
func buildFind(q *Query) (string, []any) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Kind != "" {
		where = append(where, "c.kind = "+arg(string(q.Kind)))
	}
	order := "c.id"
	ordered := false
	for _, c := range q.Clauses {
		switch c.Op {
		case OpMatchNone:
			where = append(where, "FALSE")
		case OpIDsOrdered:
			ph := arg(c.IDs)
			where = append(where, "c.id = ANY("+ph+"::bigint[])")
			if !ordered {
				order = "array_position(" + ph + "::bigint[], c.id)"
				ordered = true
			}
		case OpTenantVisible:
			ph := arg(c.TenantID)
			where = append(where, `(NOT EXISTS (SELECT 1 FROM portal_meta m WHERE m.owner_id = 'item:' || c.id AND m.meta_key = 'allowed_tenants')
  OR EXISTS (SELECT 1 FROM portal_meta m WHERE m.owner_id = 'item:' || c.id AND m.meta_key = 'allowed_tenants' AND m.meta_value = `+ph+`))`)
		}
	}
	sql := selectItem
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY " + order
	if q.Limit > 0 {
		sql += " LIMIT " + arg(q.Limit)
	}
	return sql, args
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	var kind string
	var allowed []string
	if err := row.Scan(&it.ID, &kind, &it.Title, &allowed); err != nil {
		return Item{}, err
	}
	it.Kind = Kind(kind)
	if len(allowed) > 0 {
		it.AllowedTenants = allowed
	}
	return it, nil
}
