package provider

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxintake/rxintake/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, npi, name, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.NPI, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Upsert(ctx context.Context, p *Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// The no-op update lets RETURNING yield the existing row's id without
	// overwriting the first-registered name.
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO provider (id, npi, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (npi) DO UPDATE SET npi = EXCLUDED.npi
		RETURNING id`,
		p.ID, p.NPI, p.Name).Scan(&p.ID)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scanProvider(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM provider WHERE id = $1`, id))
}

func (r *repoPG) GetByNPI(ctx context.Context, npi string) (*Provider, error) {
	return scanProvider(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM provider WHERE npi = $1`, npi))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Provider, error) {
	return scanProvider(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM provider WHERE LOWER(name) = LOWER($1) LIMIT 1`, name))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM provider`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM provider ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
