// internal/booking/booking.go
package booking

import (
	"fmt"

	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
	"dressrental/internal/validation"
)

// Booking is the rental of one or more dresses, optionally with clutches, for an event.
//
// Behavior methods never fail: violations are recorded in the notification and returned,
// and the attempted mutation is kept.
type Booking struct {
	id                    shared.ID
	customerName          string
	eventDate             calendar.Date
	expectedBookingPeriod calendar.BookingPeriod
	bookingPeriod         *calendar.BookingPeriod
	dresses               []Item
	clutches              []Item
	status                Status
	amountPaid            float64
	notification          *validation.Notification
}

// Params carries the input of a new booking. A zero ID is replaced by a fresh one.
type Params struct {
	ID                    shared.ID
	CustomerName          string
	EventDate             calendar.Date
	ExpectedBookingPeriod calendar.BookingPeriod
}

// New starts a booking in NOT_INITIATED. A missing expected period is a hard failure;
// every other field is validated into the notification.
func New(p Params) (*Booking, error) {
	if p.ExpectedBookingPeriod.PickUpDate().IsZero() {
		return nil, validation.NewValidationError(validation.Violations{{
			Field:   FieldExpected,
			Message: "Período previsto da reserva é obrigatório",
		}})
	}
	b := Restore(Snapshot{
		ID:                    p.ID,
		CustomerName:          p.CustomerName,
		EventDate:             p.EventDate.Time(),
		ExpectedBookingPeriod: p.ExpectedBookingPeriod,
		Status:                StatusNotInitiated,
	})
	b.Validate()
	return b, nil
}

// Restore rebuilds a stored booking without validation.
func Restore(s Snapshot) *Booking {
	id := s.ID
	if id.IsZero() {
		id = shared.NewID()
	}
	status := s.Status
	if status == "" {
		status = StatusNotInitiated
	}
	b := &Booking{
		id:                    id,
		customerName:          s.CustomerName,
		eventDate:             calendar.NewDate(s.EventDate),
		expectedBookingPeriod: s.ExpectedBookingPeriod,
		dresses:               append([]Item{}, s.Dresses...),
		clutches:              append([]Item{}, s.Clutches...),
		status:                status,
		amountPaid:            s.AmountPaid,
		notification:          validation.NewNotification(),
	}
	if s.BookingPeriod != nil {
		bp := *s.BookingPeriod
		b.bookingPeriod = &bp
	}
	return b
}

func (b *Booking) ID() shared.ID                                  { return b.id }
func (b *Booking) CustomerName() string                           { return b.customerName }
func (b *Booking) EventDate() calendar.Date                       { return b.eventDate }
func (b *Booking) ExpectedBookingPeriod() calendar.BookingPeriod { return b.expectedBookingPeriod }
func (b *Booking) Status() Status                                 { return b.status }
func (b *Booking) AmountPaid() float64                            { return b.amountPaid }
func (b *Booking) Notification() *validation.Notification         { return b.notification }

// BookingPeriod returns the actual rental window, absent until the rental starts.
func (b *Booking) BookingPeriod() (calendar.BookingPeriod, bool) {
	if b.bookingPeriod == nil {
		return calendar.BookingPeriod{}, false
	}
	return *b.bookingPeriod, true
}

func (b *Booking) Dresses() []Item  { return append([]Item{}, b.dresses...) }
func (b *Booking) Clutches() []Item { return append([]Item{}, b.clutches...) }

// Items returns dresses followed by clutches.
func (b *Booking) Items() []Item {
	return append(b.Dresses(), b.clutches...)
}

// CalculateTotalPrice sums the rent price of every dress and of every non-courtesy clutch.
func (b *Booking) CalculateTotalPrice() float64 {
	var total float64
	for _, it := range b.dresses {
		total += it.Price()
	}
	for _, it := range b.clutches {
		total += it.Price()
	}
	return total
}

func (b *Booking) Snapshot() Snapshot {
	s := Snapshot{
		ID:                    b.id,
		CustomerName:          b.customerName,
		EventDate:             b.eventDate.Time(),
		ExpectedBookingPeriod: b.expectedBookingPeriod,
		Dresses:               b.Dresses(),
		Clutches:              b.Clutches(),
		Status:                b.status,
		AmountPaid:            b.amountPaid,
		TotalPrice:            b.CalculateTotalPrice(),
	}
	if b.bookingPeriod != nil {
		bp := *b.bookingPeriod
		s.BookingPeriod = &bp
	}
	return s
}

// Validate re-checks every field group.
func (b *Booking) Validate() validation.Violations {
	return b.check(allGroups...)
}

func (b *Booking) ChangeCustomerName(name string) validation.Violations {
	b.customerName = name
	return b.check(GroupCustomerName)
}

func (b *Booking) ChangeEventDate(d calendar.Date) validation.Violations {
	b.eventDate = d
	return b.check(GroupEventDate)
}

// AddItem appends a product to the booking. Reservation conflicts with the expected
// period and invalid products are reported, but the item is added regardless.
func (b *Booking) AddItem(item Item) validation.Violations {
	var vs validation.Violations
	field, label := FieldClutches, "Bolsa"
	if item.Product.Kind() == product.KindDress {
		field, label = FieldDresses, "Vestido"
	}

	for _, p := range item.Product.ReservationPeriods() {
		if b.expectedBookingPeriod.Overlaps(p) {
			vs = append(vs, validation.Violation{
				Field:   field,
				Message: fmt.Sprintf("%s %s não está disponível no período da reserva", label, item.Product.ID()),
			})
			break
		}
	}
	if item.Product.Notification().HasErrors() {
		vs = append(vs, validation.Violation{
			Field:   FieldItems,
			Message: fmt.Sprintf("Item %s possui erros de validação", item.Product.ID()),
		})
	}
	b.notification.Append(vs)

	if field == FieldDresses {
		b.dresses = append(b.dresses, item)
	} else {
		b.clutches = append(b.clutches, item)
	}
	return append(vs, b.check(GroupAmountPaid)...)
}

// RemoveItem drops the product with the given id from both collections. Unknown ids are ignored.
func (b *Booking) RemoveItem(id shared.ID) validation.Violations {
	before := len(b.dresses) + len(b.clutches)
	b.dresses = without(b.dresses, id)
	b.clutches = without(b.clutches, id)
	if len(b.dresses)+len(b.clutches) == before {
		return nil
	}
	return b.check(GroupAmountPaid)
}

func without(items []Item, id shared.ID) []Item {
	out := items[:0:0]
	for _, it := range items {
		if it.Product.ID() != id {
			out = append(out, it)
		}
	}
	return out
}

func (b *Booking) check(groups ...validation.Group) validation.Violations {
	vs := validation.Check(b.Snapshot(), rules, groups...)
	b.notification.Append(vs)
	return vs
}

func (b *Booking) record(field, message string) validation.Violations {
	vs := validation.Violations{{Field: field, Message: message}}
	b.notification.Append(vs)
	return vs
}
