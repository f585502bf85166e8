package order

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

const cols = `id, patient_id, provider_id, medication_name, primary_diagnosis,
	additional_diagnoses, medication_history, patient_records, created_at`

func scanOrder(row pgx.Row) (*MedicationOrder, error) {
	var o MedicationOrder
	err := row.Scan(&o.ID, &o.PatientID, &o.ProviderID, &o.MedicationName,
		&o.PrimaryDiagnosis, &o.AdditionalDiagnoses, &o.MedicationHistory,
		&o.PatientRecords, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) Create(ctx context.Context, o *MedicationOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medication_order (id, patient_id, provider_id, medication_name,
			primary_diagnosis, additional_diagnoses, medication_history, patient_records)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.PatientID, o.ProviderID, o.MedicationName,
		o.PrimaryDiagnosis, o.AdditionalDiagnoses, o.MedicationHistory, o.PatientRecords)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicationOrder, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM medication_order WHERE id = $1`, id))
}

func (r *repoPG) FindMatching(ctx context.Context, patientID uuid.UUID, medicationName, primaryDiagnosis string) (*MedicationOrder, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM medication_order
		 WHERE patient_id = $1
		   AND LOWER(medication_name) = LOWER($2)
		   AND LOWER(primary_diagnosis) = LOWER($3)
		 LIMIT 1`, patientID, medicationName, primaryDiagnosis))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*MedicationOrder, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medication_order`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM medication_order ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicationOrder, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medication_order WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM medication_order WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*MedicationOrder, int, error) {
	var items []*MedicationOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}
