// internal/rental/service.go
package rental

import (
	"context"

	"dressrental/internal/appointment"
	"dressrental/internal/booking"
	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
)

// Service defines the rental use cases. Operations that leave an aggregate with
// validation errors return a *validation.ValidationError and persist nothing.
type Service interface {
	RegisterDress(ctx context.Context, in product.DressParams) (*product.Dress, error)
	RegisterClutch(ctx context.Context, in product.ClutchParams) (*product.Clutch, error)
	ListAvailableProducts(ctx context.Context, date calendar.Date) ([]product.Rentable, error)

	CreateBooking(ctx context.Context, in CreateBookingInput) (*booking.Booking, error)
	RegisterPayment(ctx context.Context, bookingID shared.ID, amount float64) (*booking.Booking, error)
	StartBooking(ctx context.Context, bookingID shared.ID) (*booking.Booking, error)
	CompleteBooking(ctx context.Context, bookingID shared.ID) (*booking.Booking, error)
	CancelBooking(ctx context.Context, bookingID shared.ID) (*booking.Booking, error)
	RemoveBookingItem(ctx context.Context, bookingID, productID shared.ID) (*booking.Booking, error)

	ScheduleAppointment(ctx context.Context, in appointment.Params) (*appointment.Appointment, error)
	RescheduleAppointment(ctx context.Context, id shared.ID, date calendar.Date) (*appointment.Appointment, error)
	CompleteAppointment(ctx context.Context, id shared.ID) (*appointment.Appointment, error)
	CancelAppointment(ctx context.Context, id shared.ID) (*appointment.Appointment, error)
}

// CreateBookingInput is the untrusted input of a new booking. ReturnDate is optional.
type CreateBookingInput struct {
	CustomerName string
	EventDate    calendar.Date
	PickUpDate   calendar.Date
	ReturnDate   *calendar.Date
	Items        []ItemInput
}

type ItemInput struct {
	ProductID shared.ID
	Courtesy  bool
}
