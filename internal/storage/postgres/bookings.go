// internal/storage/postgres/bookings.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dressrental/internal/booking"
	"dressrental/internal/product"
	"dressrental/internal/shared"
	"dressrental/internal/storage"
)

const bookingColumns = `id, customer_name, event_date, expected_pick_up_date, expected_return_date,
	pick_up_date, return_date, status, amount_paid`

var _ storage.BookingRepository = (*BookingRepository)(nil)

// BookingRepository persists bookings in the bookings and booking_items tables. Products
// referenced by a booking are loaded from the products table and are not written by it.
type BookingRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db, tracer: tracer()}
}

func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	ctx, span := r.tracer.Start(ctx, "bookings.save",
		trace.WithAttributes(attribute.String("booking.id", b.ID().String())),
	)
	defer span.End()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return insertBooking(ctx, tx, bookingToRecord(b))
	})
}

func (r *BookingRepository) SaveMany(ctx context.Context, bs []*booking.Booking) error {
	ctx, span := r.tracer.Start(ctx, "bookings.save_many",
		trace.WithAttributes(attribute.Int("booking.count", len(bs))),
	)
	defer span.End()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, b := range bs {
			if err := insertBooking(ctx, tx, bookingToRecord(b)); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertBooking(ctx context.Context, tx *sql.Tx, rec bookingRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.CustomerName, rec.EventDate, rec.ExpectedPickUpDate, rec.ExpectedReturnDate,
		rec.PickUpDate, rec.ReturnDate, rec.Status, rec.AmountPaid)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert booking %s: %w", rec.ID, err)
	}
	return insertBookingItems(ctx, tx, rec)
}

func insertBookingItems(ctx context.Context, tx *sql.Tx, rec bookingRecord) error {
	if len(rec.Items) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO booking_items (booking_id, product_id, position, courtesy)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range rec.Items {
		if _, err := stmt.ExecContext(ctx, rec.ID, it.ProductID, it.Position, it.Courtesy); err != nil {
			return fmt.Errorf("insert item %s of booking %s: %w", it.ProductID, rec.ID, err)
		}
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id shared.ID) (*booking.Booking, error) {
	ctx, span := r.tracer.Start(ctx, "bookings.find_by_id",
		trace.WithAttributes(attribute.String("booking.id", id.String())),
	)
	defer span.End()

	bs, err := r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(bs) == 0 {
		return nil, shared.NewNotFoundError(storage.EntityBooking, id)
	}
	return bs[0], nil
}

func (r *BookingRepository) FindMany(ctx context.Context) ([]*booking.Booking, error) {
	ctx, span := r.tracer.Start(ctx, "bookings.find_many")
	defer span.End()
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at, id`)
}

func (r *BookingRepository) FindManyByIDs(ctx context.Context, ids []shared.ID) ([]*booking.Booking, error) {
	ctx, span := r.tracer.Start(ctx, "bookings.find_many_by_ids",
		trace.WithAttributes(attribute.Int("booking.count", len(ids))),
	)
	defer span.End()

	return r.query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, pq.Array(shared.IDStrings(ids)))
}

func (r *BookingRepository) FindByStatus(ctx context.Context, status booking.Status) ([]*booking.Booking, error) {
	ctx, span := r.tracer.Start(ctx, "bookings.find_by_status",
		trace.WithAttributes(attribute.String("booking.status", string(status))),
	)
	defer span.End()

	return r.query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = $1
		ORDER BY created_at, id
	`, string(status))
}

// Update rewrites the booking row and replaces its items.
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	ctx, span := r.tracer.Start(ctx, "bookings.update",
		trace.WithAttributes(
			attribute.String("booking.id", b.ID().String()),
			attribute.String("booking.status", string(b.Status())),
		),
	)
	defer span.End()

	rec := bookingToRecord(b)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET customer_name = $2, event_date = $3, expected_pick_up_date = $4, expected_return_date = $5,
			    pick_up_date = $6, return_date = $7, status = $8, amount_paid = $9, updated_at = NOW()
			WHERE id = $1
		`, rec.ID, rec.CustomerName, rec.EventDate, rec.ExpectedPickUpDate, rec.ExpectedReturnDate,
			rec.PickUpDate, rec.ReturnDate, rec.Status, rec.AmountPaid)
		if err != nil {
			return fmt.Errorf("update booking %s: %w", rec.ID, err)
		}
		ok, err := expectAffected(res)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewNotFoundError(storage.EntityBooking, rec.ID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM booking_items WHERE booking_id = $1`, rec.ID); err != nil {
			return fmt.Errorf("clear items of booking %s: %w", rec.ID, err)
		}
		return insertBookingItems(ctx, tx, rec)
	})
}

func (r *BookingRepository) Delete(ctx context.Context, id shared.ID) error {
	return r.DeleteManyByIDs(ctx, []shared.ID{id})
}

func (r *BookingRepository) DeleteManyByIDs(ctx context.Context, ids []shared.ID) error {
	ctx, span := r.tracer.Start(ctx, "bookings.delete_many",
		trace.WithAttributes(attribute.Int("booking.count", len(ids))),
	)
	defer span.End()
	return deleteByIDs(ctx, r.db, "bookings", storage.EntityBooking, ids)
}

func (r *BookingRepository) ExistsByID(ctx context.Context, id shared.ID) (bool, error) {
	return existsByID(ctx, r.db, "bookings", id)
}

// query loads booking rows, then their items and products in two more round trips.
func (r *BookingRepository) query(ctx context.Context, query string, args ...interface{}) ([]*booking.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	var recs []bookingRecord
	for rows.Next() {
		var rec bookingRecord
		err := rows.Scan(
			&rec.ID,
			&rec.CustomerName,
			&rec.EventDate,
			&rec.ExpectedPickUpDate,
			&rec.ExpectedReturnDate,
			&rec.PickUpDate,
			&rec.ReturnDate,
			&rec.Status,
			&rec.AmountPaid,
		)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		recs = append(recs, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	ids := make([]shared.ID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	var productIDs []shared.ID
	for _, its := range items {
		for _, it := range its {
			productIDs = append(productIDs, it.ProductID)
		}
	}
	products := map[shared.ID]product.Rentable{}
	if len(productIDs) > 0 {
		ps, err := findProductsByIDs(ctx, r.db, productIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			products[p.ID()] = p
		}
	}

	out := make([]*booking.Booking, 0, len(recs))
	for _, rec := range recs {
		rec.Items = items[rec.ID]
		b, err := bookingFromRecord(rec, products)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BookingRepository) loadItems(ctx context.Context, bookingIDs []shared.ID) (map[shared.ID][]bookingItemRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT booking_id, product_id, position, courtesy
		FROM booking_items
		WHERE booking_id = ANY($1::uuid[])
		ORDER BY booking_id, position
	`, pq.Array(shared.IDStrings(bookingIDs)))
	if err != nil {
		return nil, fmt.Errorf("query booking items: %w", err)
	}
	defer rows.Close()

	out := map[shared.ID][]bookingItemRecord{}
	for rows.Next() {
		var bookingID shared.ID
		var it bookingItemRecord
		if err := rows.Scan(&bookingID, &it.ProductID, &it.Position, &it.Courtesy); err != nil {
			return nil, fmt.Errorf("scan booking item: %w", err)
		}
		out[bookingID] = append(out[bookingID], it)
	}
	return out, rows.Err()
}
