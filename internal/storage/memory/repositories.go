// internal/storage/memory/repositories.go
package memory

import (
	"context"

	"dressrental/internal/appointment"
	"dressrental/internal/booking"
	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
	"dressrental/internal/storage"
)

var (
	_ storage.ProductRepository     = (*ProductRepository)(nil)
	_ storage.BookingRepository     = (*BookingRepository)(nil)
	_ storage.AppointmentRepository = (*AppointmentRepository)(nil)
)

type ProductRepository struct {
	*Store[product.Rentable]
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{Store: NewStore(storage.EntityProduct, cloneProduct)}
}

func (r *ProductRepository) FindAvailableFor(_ context.Context, d calendar.Date) ([]product.Rentable, error) {
	return r.filter(func(p product.Rentable) bool { return p.IsAvailableFor(d) }), nil
}

func (r *ProductRepository) FindReservedDuring(_ context.Context, period calendar.Period) ([]product.Rentable, error) {
	return r.filter(func(p product.Rentable) bool {
		for _, rp := range p.ReservationPeriods() {
			if rp.Overlaps(period) {
				return true
			}
		}
		return false
	}), nil
}

type BookingRepository struct {
	*Store[*booking.Booking]
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{Store: NewStore(storage.EntityBooking, cloneBooking)}
}

func (r *BookingRepository) FindByStatus(_ context.Context, status booking.Status) ([]*booking.Booking, error) {
	return r.filter(func(b *booking.Booking) bool { return b.Status() == status }), nil
}

type AppointmentRepository struct {
	*Store[*appointment.Appointment]
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{Store: NewStore(storage.EntityAppointment, cloneAppointment)}
}

func (r *AppointmentRepository) FindByBookingID(_ context.Context, bookingID shared.ID) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool {
		id, ok := a.BookingID()
		return ok && id == bookingID
	}), nil
}

func cloneProduct(p product.Rentable) product.Rentable {
	return product.Restore(p.Snapshot())
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	s := b.Snapshot()
	s.Dresses = cloneItems(s.Dresses)
	s.Clutches = cloneItems(s.Clutches)
	return booking.Restore(s)
}

func cloneItems(items []booking.Item) []booking.Item {
	out := make([]booking.Item, len(items))
	for i, it := range items {
		out[i] = booking.Item{Product: cloneProduct(it.Product), Courtesy: it.Courtesy}
	}
	return out
}

func cloneAppointment(a *appointment.Appointment) *appointment.Appointment {
	return appointment.Restore(a.Snapshot())
}
