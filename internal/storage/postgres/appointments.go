// internal/storage/postgres/appointments.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dressrental/internal/appointment"
	"dressrental/internal/shared"
	"dressrental/internal/storage"
)

const appointmentColumns = `id, booking_id, appointment_date, event_date, customer_name, type, status, history`

var _ storage.AppointmentRepository = (*AppointmentRepository)(nil)

// AppointmentRepository persists appointments. The reschedule history is a JSONB array.
type AppointmentRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db, tracer: tracer()}
}

func (r *AppointmentRepository) Save(ctx context.Context, a *appointment.Appointment) error {
	ctx, span := r.tracer.Start(ctx, "appointments.save",
		trace.WithAttributes(attribute.String("appointment.id", a.ID().String())),
	)
	defer span.End()
	return insertAppointment(ctx, r.db, a)
}

func (r *AppointmentRepository) SaveMany(ctx context.Context, as []*appointment.Appointment) error {
	ctx, span := r.tracer.Start(ctx, "appointments.save_many",
		trace.WithAttributes(attribute.Int("appointment.count", len(as))),
	)
	defer span.End()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, a := range as {
			if err := insertAppointment(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertAppointment(ctx context.Context, q queryer, a *appointment.Appointment) error {
	rec, err := appointmentToRecord(a)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.BookingID, rec.AppointmentDate, rec.EventDate, rec.CustomerName, rec.Type, rec.Status, rec.History)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert appointment %s: %w", rec.ID, err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id shared.ID) (*appointment.Appointment, error) {
	ctx, span := r.tracer.Start(ctx, "appointments.find_by_id",
		trace.WithAttributes(attribute.String("appointment.id", id.String())),
	)
	defer span.End()

	as, err := r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(as) == 0 {
		return nil, shared.NewNotFoundError(storage.EntityAppointment, id)
	}
	return as[0], nil
}

func (r *AppointmentRepository) FindMany(ctx context.Context) ([]*appointment.Appointment, error) {
	ctx, span := r.tracer.Start(ctx, "appointments.find_many")
	defer span.End()
	return r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY created_at, id`)
}

func (r *AppointmentRepository) FindManyByIDs(ctx context.Context, ids []shared.ID) ([]*appointment.Appointment, error) {
	ctx, span := r.tracer.Start(ctx, "appointments.find_many_by_ids",
		trace.WithAttributes(attribute.Int("appointment.count", len(ids))),
	)
	defer span.End()

	return r.query(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, pq.Array(shared.IDStrings(ids)))
}

func (r *AppointmentRepository) FindByBookingID(ctx context.Context, bookingID shared.ID) ([]*appointment.Appointment, error) {
	ctx, span := r.tracer.Start(ctx, "appointments.find_by_booking_id",
		trace.WithAttributes(attribute.String("booking.id", bookingID.String())),
	)
	defer span.End()

	return r.query(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE booking_id = $1
		ORDER BY appointment_date, id
	`, bookingID)
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	ctx, span := r.tracer.Start(ctx, "appointments.update",
		trace.WithAttributes(
			attribute.String("appointment.id", a.ID().String()),
			attribute.String("appointment.status", string(a.Status())),
		),
	)
	defer span.End()

	rec, err := appointmentToRecord(a)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET booking_id = $2, appointment_date = $3, event_date = $4, customer_name = $5,
		    type = $6, status = $7, history = $8, updated_at = NOW()
		WHERE id = $1
	`, rec.ID, rec.BookingID, rec.AppointmentDate, rec.EventDate, rec.CustomerName, rec.Type, rec.Status, rec.History)
	if err != nil {
		return fmt.Errorf("update appointment %s: %w", rec.ID, err)
	}
	ok, err := expectAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewNotFoundError(storage.EntityAppointment, rec.ID)
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id shared.ID) error {
	return r.DeleteManyByIDs(ctx, []shared.ID{id})
}

func (r *AppointmentRepository) DeleteManyByIDs(ctx context.Context, ids []shared.ID) error {
	ctx, span := r.tracer.Start(ctx, "appointments.delete_many",
		trace.WithAttributes(attribute.Int("appointment.count", len(ids))),
	)
	defer span.End()
	return deleteByIDs(ctx, r.db, "appointments", storage.EntityAppointment, ids)
}

func (r *AppointmentRepository) ExistsByID(ctx context.Context, id shared.ID) (bool, error) {
	return existsByID(ctx, r.db, "appointments", id)
}

func (r *AppointmentRepository) query(ctx context.Context, query string, args ...interface{}) ([]*appointment.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var out []*appointment.Appointment
	for rows.Next() {
		var rec appointmentRecord
		err := rows.Scan(
			&rec.ID,
			&rec.BookingID,
			&rec.AppointmentDate,
			&rec.EventDate,
			&rec.CustomerName,
			&rec.Type,
			&rec.Status,
			&rec.History,
		)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a, err := appointmentFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
