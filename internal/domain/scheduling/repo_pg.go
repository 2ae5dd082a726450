package scheduling

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type appointmentRepoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by the appointments table.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &appointmentRepoPG{pool: pool} }

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_name, phone, email, symptoms, report_ref,
	raw_date, start_time, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientName, &a.Phone, &a.Email, &a.Symptoms, &a.ReportRef,
		&a.RawDate, &a.StartTime, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *appointmentRepoPG) FetchScheduled(ctx context.Context) ([]Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE status = $1 ORDER BY created_at, id`, StatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, sel Selector, status string) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	if !validAppointmentStatuses[status] {
		return fmt.Errorf("invalid status %q", status)
	}

	var (
		tag pgconn.CommandTag
		err error
	)
	if sel.ByID() {
		tag, err = r.conn(ctx).Exec(ctx, `UPDATE appointments SET status = $2, updated_at = NOW()
			WHERE id = $1 AND status = $3`, sel.ID(), status, StatusScheduled)
	} else {
		name, date, start := sel.Fields()
		tag, err = r.conn(ctx).Exec(ctx, `UPDATE appointments SET status = $4, updated_at = NOW()
			WHERE patient_name = $1 AND raw_date = $2 AND start_time = $3 AND status = $5`,
			name, date, start, status, StatusScheduled)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
