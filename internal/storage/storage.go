// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"dressrental/internal/appointment"
	"dressrental/internal/booking"
	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
)

// ErrAlreadyExists is returned by Save when the id is taken.
var ErrAlreadyExists = errors.New("entity already exists")

// Entity names used in NotFoundError messages.
const (
	EntityProduct     = "Product"
	EntityBooking     = "Booking"
	EntityAppointment = "Appointment"
)

// Entity is anything a repository can key by id.
type Entity interface {
	ID() shared.ID
}

// Repository is the persistence contract shared by every aggregate.
// FindByID, Update, Delete and DeleteManyByIDs fail with *shared.NotFoundError when ids are
// missing; DeleteManyByIDs deletes nothing in that case.
type Repository[T Entity] interface {
	Save(ctx context.Context, entity T) error
	SaveMany(ctx context.Context, entities []T) error
	FindByID(ctx context.Context, id shared.ID) (T, error)
	FindMany(ctx context.Context) ([]T, error)
	FindManyByIDs(ctx context.Context, ids []shared.ID) ([]T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id shared.ID) error
	DeleteManyByIDs(ctx context.Context, ids []shared.ID) error
	ExistsByID(ctx context.Context, id shared.ID) (bool, error)
}

// ProductRepository stores dresses and clutches.
type ProductRepository interface {
	Repository[product.Rentable]
	// FindAvailableFor returns products with no reservation period containing d.
	FindAvailableFor(ctx context.Context, d calendar.Date) ([]product.Rentable, error)
	// FindReservedDuring returns products with a reservation period overlapping p,
	// with the same inclusive semantics as calendar.Period.Overlaps.
	FindReservedDuring(ctx context.Context, p calendar.Period) ([]product.Rentable, error)
}

type BookingRepository interface {
	Repository[*booking.Booking]
	FindByStatus(ctx context.Context, status booking.Status) ([]*booking.Booking, error)
}

type AppointmentRepository interface {
	Repository[*appointment.Appointment]
	FindByBookingID(ctx context.Context, bookingID shared.ID) ([]*appointment.Appointment, error)
}
