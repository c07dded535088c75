// internal/calendar/booking_period.go
package calendar

import (
	"time"

	"dressrental/internal/validation"
)

const groupBookingPeriod validation.Group = "bookingPeriod"

type bookingPeriodSnapshot struct {
	PickUpDate time.Time `json:"pickUpDate" validate:"required,notpast"`
	ReturnDate time.Time `json:"returnDate" validate:"omitempty,notpast,gtefield=PickUpDate"`
}

var bookingPeriodRules = validation.Rules{
	Groups: map[validation.Group][]string{
		groupBookingPeriod: {"PickUpDate", "ReturnDate"},
	},
	Messages: map[string]string{
		"pickUpDate.required": "Data de retirada é obrigatória",
		"pickUpDate.notpast":  "Data de retirada não pode estar no passado",
		"returnDate.notpast":  "Data de devolução não pode estar no passado",
		"returnDate.gtefield": "Data de devolução deve ser posterior ou igual à data de retirada",
	},
}

// BookingPeriod is the rental window of a booking. The return date is unknown until the
// dress comes back, so it is optional.
type BookingPeriod struct {
	pickUpDate Date
	returnDate *Date
}

// NewBookingPeriod builds a period without validation. It is the rehydration path:
// stored periods of finished bookings legitimately lie in the past.
func NewBookingPeriod(pickUp Date, returnDate *Date) BookingPeriod {
	bp := BookingPeriod{pickUpDate: pickUp}
	if returnDate != nil {
		rd := *returnDate
		bp.returnDate = &rd
	}
	return bp
}

// CreateBookingPeriod validates untrusted input: a pick-up date is required, neither date
// may lie before today and the return date may not precede the pick-up date.
func CreateBookingPeriod(pickUp Date, returnDate *Date) (BookingPeriod, error) {
	snap := bookingPeriodSnapshot{PickUpDate: pickUp.t}
	if returnDate != nil {
		snap.ReturnDate = returnDate.t
	}
	if vs := validation.Check(snap, bookingPeriodRules, groupBookingPeriod); !vs.Empty() {
		return BookingPeriod{}, validation.NewValidationError(vs)
	}
	return NewBookingPeriod(pickUp, returnDate), nil
}

func (bp BookingPeriod) PickUpDate() Date { return bp.pickUpDate }

// ReturnDate returns the return date and whether it is set.
func (bp BookingPeriod) ReturnDate() (Date, bool) {
	if bp.returnDate == nil {
		return Date{}, false
	}
	return *bp.returnDate, true
}

// WithReturnDate returns a copy of bp closed at d.
func (bp BookingPeriod) WithReturnDate(d Date) BookingPeriod {
	return NewBookingPeriod(bp.pickUpDate, &d)
}

// AsPeriod converts bp into an inclusive Period. An open period runs from the pick-up
// instant to the end of the pick-up day.
func (bp BookingPeriod) AsPeriod() Period {
	end := bp.pickUpDate.EndOfDay()
	if bp.returnDate != nil && !bp.returnDate.Before(bp.pickUpDate) {
		end = *bp.returnDate
	}
	return Period{start: bp.pickUpDate, end: end}
}

func (bp BookingPeriod) Overlaps(p Period) bool {
	return bp.AsPeriod().Overlaps(p)
}
