// internal/appointment/appointment.go
package appointment

import (
	"dressrental/internal/calendar"
	"dressrental/internal/shared"
	"dressrental/internal/validation"
)

// Appointment is a scheduled visit of a customer, possibly before any booking exists.
type Appointment struct {
	id              shared.ID
	bookingID       *shared.ID
	appointmentDate calendar.Date
	eventDate       calendar.Date
	customerName    string
	typ             Type
	status          Status
	history         []HistoryEntry
	notification    *validation.Notification
}

type Params struct {
	ID              shared.ID
	BookingID       *shared.ID
	AppointmentDate calendar.Date
	EventDate       calendar.Date
	CustomerName    string
	Type            Type
}

// New schedules an appointment and validates every field into its notification.
func New(p Params) *Appointment {
	a := Restore(Snapshot{
		ID:              p.ID,
		BookingID:       p.BookingID,
		AppointmentDate: p.AppointmentDate.Time(),
		EventDate:       p.EventDate.Time(),
		CustomerName:    p.CustomerName,
		Type:            p.Type,
		Status:          StatusScheduled,
	})
	a.Validate()
	return a
}

// Restore rebuilds a stored appointment without validation.
func Restore(s Snapshot) *Appointment {
	id := s.ID
	if id.IsZero() {
		id = shared.NewID()
	}
	status := s.Status
	if status == "" {
		status = StatusScheduled
	}
	a := &Appointment{
		id:              id,
		appointmentDate: calendar.NewDate(s.AppointmentDate),
		eventDate:       calendar.NewDate(s.EventDate),
		customerName:    s.CustomerName,
		typ:             s.Type,
		status:          status,
		history:         append([]HistoryEntry{}, s.History...),
		notification:    validation.NewNotification(),
	}
	if s.BookingID != nil {
		bid := *s.BookingID
		a.bookingID = &bid
	}
	return a
}

func (a *Appointment) ID() shared.ID                          { return a.id }
func (a *Appointment) AppointmentDate() calendar.Date         { return a.appointmentDate }
func (a *Appointment) EventDate() calendar.Date               { return a.eventDate }
func (a *Appointment) CustomerName() string                   { return a.customerName }
func (a *Appointment) Type() Type                             { return a.typ }
func (a *Appointment) Status() Status                         { return a.status }
func (a *Appointment) Notification() *validation.Notification { return a.notification }

// BookingID returns the booking the appointment belongs to, if any.
func (a *Appointment) BookingID() (shared.ID, bool) {
	if a.bookingID == nil {
		return shared.ID{}, false
	}
	return *a.bookingID, true
}

// History returns the reschedule log in call order.
func (a *Appointment) History() []HistoryEntry {
	return append([]HistoryEntry{}, a.history...)
}

func (a *Appointment) Snapshot() Snapshot {
	s := Snapshot{
		ID:              a.id,
		AppointmentDate: a.appointmentDate.Time(),
		EventDate:       a.eventDate.Time(),
		CustomerName:    a.customerName,
		Type:            a.typ,
		Status:          a.status,
		History:         a.History(),
	}
	if a.bookingID != nil {
		bid := *a.bookingID
		s.BookingID = &bid
	}
	return s
}

func (a *Appointment) Validate() validation.Violations {
	return a.check(allGroups...)
}

// AttachBooking links the appointment to a booking created after it was scheduled.
func (a *Appointment) AttachBooking(id shared.ID) {
	a.bookingID = &id
}

func (a *Appointment) ChangeCustomerName(name string) validation.Violations {
	a.customerName = name
	return a.check(GroupCustomerName)
}

// Complete marks the visit as done.
func (a *Appointment) Complete() {
	a.status = StatusCompleted
}

// Cancel marks the appointment as cancelled. Cancelling a completed appointment is
// reported but still applied.
func (a *Appointment) Cancel() validation.Violations {
	var vs validation.Violations
	if a.status == StatusCompleted {
		vs = a.record(FieldStatus, "Não é possível cancelar um agendamento concluído")
	}
	a.status = StatusCancelled
	return vs
}

// Reschedule moves the appointment to newDate, logging the status it had at the moment
// of the change. Completed appointments are reported but still rescheduled.
func (a *Appointment) Reschedule(newDate calendar.Date) validation.Violations {
	var vs validation.Violations
	if a.status == StatusCompleted {
		vs = a.record(FieldStatus, "Não é possível reagendar um agendamento concluído")
	}
	a.history = append(a.history, HistoryEntry{
		AppointmentID: a.id,
		Status:        a.status,
		Date:          calendar.Now(),
	})
	a.appointmentDate = newDate
	return append(vs, a.check(GroupAppointmentDate)...)
}

func (a *Appointment) check(groups ...validation.Group) validation.Violations {
	vs := validation.Check(a.Snapshot(), rules, groups...)
	a.notification.Append(vs)
	return vs
}

func (a *Appointment) record(field, message string) validation.Violations {
	vs := validation.Violations{{Field: field, Message: message}}
	a.notification.Append(vs)
	return vs
}
