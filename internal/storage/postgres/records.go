// internal/storage/postgres/records.go
package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"dressrental/internal/appointment"
	"dressrental/internal/booking"
	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
)

// productRecord is the row shape of the products table.
type productRecord struct {
	ID                 shared.ID
	Kind               string
	RentPrice          float64
	Color              string
	Model              string
	Fabric             sql.NullString
	ImagePath          string
	IsPickedUp         bool
	ReservationPeriods []byte
}

func productToRecord(p product.Rentable) (productRecord, error) {
	s := p.Snapshot()
	periods := s.ReservationPeriods
	if periods == nil {
		periods = []calendar.Period{}
	}
	raw, err := json.Marshal(periods)
	if err != nil {
		return productRecord{}, fmt.Errorf("marshal reservation periods: %w", err)
	}
	return productRecord{
		ID:                 s.ID,
		Kind:               string(s.Kind),
		RentPrice:          s.RentPrice,
		Color:              s.Color,
		Model:              s.Model,
		Fabric:             sql.NullString{String: s.Fabric, Valid: s.Kind == product.KindDress},
		ImagePath:          s.ImagePath,
		IsPickedUp:         s.IsPickedUp,
		ReservationPeriods: raw,
	}, nil
}

func productFromRecord(r productRecord) (product.Rentable, error) {
	var periods []calendar.Period
	if len(r.ReservationPeriods) > 0 {
		if err := json.Unmarshal(r.ReservationPeriods, &periods); err != nil {
			return nil, fmt.Errorf("unmarshal reservation periods of product %s: %w", r.ID, err)
		}
	}
	return product.Restore(product.Snapshot{
		ID:                 r.ID,
		Kind:               product.Kind(r.Kind),
		RentPrice:          r.RentPrice,
		Color:              r.Color,
		Model:              r.Model,
		Fabric:             r.Fabric.String,
		ImagePath:          r.ImagePath,
		IsPickedUp:         r.IsPickedUp,
		ReservationPeriods: periods,
	}), nil
}

// bookingRecord is the row shape of the bookings table plus its booking_items rows.
type bookingRecord struct {
	ID                 shared.ID
	CustomerName       string
	EventDate          time.Time
	ExpectedPickUpDate time.Time
	ExpectedReturnDate sql.NullTime
	PickUpDate         sql.NullTime
	ReturnDate         sql.NullTime
	Status             string
	AmountPaid         float64
	Items              []bookingItemRecord
}

type bookingItemRecord struct {
	ProductID shared.ID
	Position  int
	Courtesy  bool
}

func bookingToRecord(b *booking.Booking) bookingRecord {
	expected := b.ExpectedBookingPeriod()
	r := bookingRecord{
		ID:                 b.ID(),
		CustomerName:       b.CustomerName(),
		EventDate:          b.EventDate().Time(),
		ExpectedPickUpDate: expected.PickUpDate().Time(),
		ExpectedReturnDate: nullableReturn(expected),
		Status:             string(b.Status()),
		AmountPaid:         b.AmountPaid(),
	}
	if bp, ok := b.BookingPeriod(); ok {
		r.PickUpDate = sql.NullTime{Time: bp.PickUpDate().Time(), Valid: true}
		r.ReturnDate = nullableReturn(bp)
	}
	for i, item := range b.Items() {
		r.Items = append(r.Items, bookingItemRecord{
			ProductID: item.Product.ID(),
			Position:  i,
			Courtesy:  item.Courtesy,
		})
	}
	return r
}

func nullableReturn(bp calendar.BookingPeriod) sql.NullTime {
	if d, ok := bp.ReturnDate(); ok {
		return sql.NullTime{Time: d.Time(), Valid: true}
	}
	return sql.NullTime{}
}

func bookingPeriodFrom(pickUp time.Time, ret sql.NullTime) calendar.BookingPeriod {
	if !ret.Valid {
		return calendar.NewBookingPeriod(calendar.NewDate(pickUp), nil)
	}
	d := calendar.NewDate(ret.Time)
	return calendar.NewBookingPeriod(calendar.NewDate(pickUp), &d)
}

// bookingFromRecord rebuilds a booking. products must hold every product referenced by
// r.Items.
func bookingFromRecord(r bookingRecord, products map[shared.ID]product.Rentable) (*booking.Booking, error) {
	s := booking.Snapshot{
		ID:                    r.ID,
		CustomerName:          r.CustomerName,
		EventDate:             r.EventDate,
		ExpectedBookingPeriod: bookingPeriodFrom(r.ExpectedPickUpDate, r.ExpectedReturnDate),
		Status:                booking.Status(r.Status),
		AmountPaid:            r.AmountPaid,
	}
	if r.PickUpDate.Valid {
		bp := bookingPeriodFrom(r.PickUpDate.Time, r.ReturnDate)
		s.BookingPeriod = &bp
	}

	items := append([]bookingItemRecord{}, r.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("booking %s references missing product %s", r.ID, it.ProductID)
		}
		item := booking.Item{Product: p, Courtesy: it.Courtesy}
		if p.Kind() == product.KindDress {
			s.Dresses = append(s.Dresses, item)
		} else {
			s.Clutches = append(s.Clutches, item)
		}
	}
	return booking.Restore(s), nil
}

// appointmentRecord is the row shape of the appointments table.
type appointmentRecord struct {
	ID              shared.ID
	BookingID       *shared.ID
	AppointmentDate time.Time
	EventDate       time.Time
	CustomerName    string
	Type            string
	Status          string
	History         []byte
}

func appointmentToRecord(a *appointment.Appointment) (appointmentRecord, error) {
	s := a.Snapshot()
	history := s.History
	if history == nil {
		history = []appointment.HistoryEntry{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return appointmentRecord{}, fmt.Errorf("marshal appointment history: %w", err)
	}
	return appointmentRecord{
		ID:              s.ID,
		BookingID:       s.BookingID,
		AppointmentDate: s.AppointmentDate,
		EventDate:       s.EventDate,
		CustomerName:    s.CustomerName,
		Type:            string(s.Type),
		Status:          string(s.Status),
		History:         raw,
	}, nil
}

func appointmentFromRecord(r appointmentRecord) (*appointment.Appointment, error) {
	var history []appointment.HistoryEntry
	if len(r.History) > 0 {
		if err := json.Unmarshal(r.History, &history); err != nil {
			return nil, fmt.Errorf("unmarshal history of appointment %s: %w", r.ID, err)
		}
	}
	return appointment.Restore(appointment.Snapshot{
		ID:              r.ID,
		BookingID:       r.BookingID,
		AppointmentDate: r.AppointmentDate,
		EventDate:       r.EventDate,
		CustomerName:    r.CustomerName,
		Type:            appointment.Type(r.Type),
		Status:          appointment.Status(r.Status),
		History:         history,
	}), nil
}
