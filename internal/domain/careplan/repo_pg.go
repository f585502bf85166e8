package careplan

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

const cols = `id, order_id, narrative, model, created_at`

func scanPlan(row pgx.Row) (*CarePlan, error) {
	var cp CarePlan
	err := row.Scan(&cp.ID, &cp.OrderID, &cp.Narrative, &cp.Model, &cp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *repoPG) Create(ctx context.Context, cp *CarePlan) error {
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO care_plan (id, order_id, narrative, model)
		VALUES ($1, $2, $3, $4)`,
		cp.ID, cp.OrderID, cp.Narrative, cp.Model)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*CarePlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM care_plan WHERE id = $1`, id))
}

func (r *repoPG) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*CarePlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM care_plan WHERE order_id = $1`, orderID))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*CarePlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM care_plan`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM care_plan ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CarePlan
	for rows.Next() {
		cp, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cp)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ExportRows(ctx context.Context) ([]ExportRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT cp.id, pt.mrn, pt.first_name, pt.last_name,
		       pr.name, pr.npi,
		       mo.medication_name, mo.primary_diagnosis,
		       mo.additional_diagnoses, mo.medication_history,
		       cp.narrative, cp.created_at
		FROM care_plan cp
		JOIN medication_order mo ON mo.id = cp.order_id
		JOIN patient pt ON pt.id = mo.patient_id
		JOIN provider pr ON pr.id = mo.provider_id
		ORDER BY cp.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var er ExportRow
		if err := rows.Scan(&er.ID, &er.PatientMRN, &er.PatientFirstName,
			&er.PatientLastName, &er.ProviderName, &er.ProviderNPI,
			&er.MedicationName, &er.PrimaryDiagnosis,
			&er.AdditionalDiagnoses, &er.MedicationHistory,
			&er.Narrative, &er.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, er)
	}
	return out, rows.Err()
}
