package appointment

import (
	"testing"
	"time"

	"dressrental/internal/calendar"
	"dressrental/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) calendar.Date { return calendar.MustParseDate(s) }

func newAppointment(t *testing.T) *Appointment {
	t.Helper()
	a := New(Params{
		AppointmentDate: date("2024-01-01"),
		EventDate:       date("2024-02-10"),
		CustomerName:    "Joana Souza",
		Type:            TypeInitialVisit,
	})
	require.False(t, a.Notification().HasErrors())
	return a
}

func TestNew(t *testing.T) {
	a := newAppointment(t)
	assert.Equal(t, StatusScheduled, a.Status())
	assert.Empty(t, a.History())
	_, linked := a.BookingID()
	assert.False(t, linked)
}

func TestNewValidates(t *testing.T) {
	a := New(Params{Type: "BRUNCH"})
	n := a.Notification()
	assert.Equal(t, []string{"Data do agendamento é obrigatória"}, n.Messages("appointmentDate"))
	assert.Equal(t, []string{"Data do evento é obrigatória"}, n.Messages("eventDate"))
	assert.Equal(t, []string{"Nome do cliente é obrigatório"}, n.Messages("customerName"))
	assert.Equal(t, []string{"Tipo do agendamento inválido"}, n.Messages("type"))
}

func TestRescheduleRecordsHistory(t *testing.T) {
	a := newAppointment(t)

	before := time.Now().Add(-time.Millisecond)
	vs := a.Reschedule(date("2024-01-02"))
	after := time.Now()

	assert.Empty(t, vs)
	assert.True(t, a.AppointmentDate().Equal(date("2024-01-02")))

	history := a.History()
	require.Len(t, history, 1)
	assert.Equal(t, a.ID(), history[0].AppointmentID)
	assert.Equal(t, StatusScheduled, history[0].Status)
	stamped := history[0].Date.Time()
	assert.False(t, stamped.Before(before))
	assert.False(t, stamped.After(after))
	assert.False(t, history[0].Date.Equal(date("2024-01-02")), "history keeps the moment of rescheduling")
}

func TestHistoryIsAppendOnly(t *testing.T) {
	a := newAppointment(t)
	a.Reschedule(date("2024-01-02"))
	a.Reschedule(date("2024-01-03"))
	a.Complete()
	a.Reschedule(date("2024-01-04"))

	history := a.History()
	require.Len(t, history, 3)
	assert.Equal(t, StatusScheduled, history[0].Status)
	assert.Equal(t, StatusScheduled, history[1].Status)
	assert.Equal(t, StatusCompleted, history[2].Status)
}

func TestRescheduleCompletedIsAdvisory(t *testing.T) {
	a := newAppointment(t)
	a.Complete()

	vs := a.Reschedule(date("2024-01-05"))
	assert.Equal(t, []string{"Não é possível reagendar um agendamento concluído"}, vs.Messages(FieldStatus))
	assert.True(t, a.AppointmentDate().Equal(date("2024-01-05")))
	assert.Len(t, a.History(), 1)
	assert.Equal(t, StatusCompleted, a.Status())
}

func TestRescheduleValidatesOnlyAppointmentDate(t *testing.T) {
	a := newAppointment(t)
	a.ChangeCustomerName("")
	require.Len(t, a.Notification().Messages("customerName"), 1)

	vs := a.Reschedule(calendar.Date{})
	assert.Equal(t, []string{"Data do agendamento é obrigatória"}, vs.Messages("appointmentDate"))
	assert.Len(t, a.Notification().Messages("customerName"), 1)
}

func TestComplete(t *testing.T) {
	a := newAppointment(t)
	a.Complete()
	assert.Equal(t, StatusCompleted, a.Status())
}

func TestCancel(t *testing.T) {
	a := newAppointment(t)
	assert.Empty(t, a.Cancel())
	assert.Equal(t, StatusCancelled, a.Status())
}

func TestCancelCompletedIsAdvisory(t *testing.T) {
	a := newAppointment(t)
	a.Complete()

	vs := a.Cancel()
	assert.Equal(t, []string{"Não é possível cancelar um agendamento concluído"}, vs.Messages(FieldStatus))
	assert.Equal(t, StatusCancelled, a.Status())
}

func TestAttachBookingAndRestore(t *testing.T) {
	a := newAppointment(t)
	bookingID := shared.NewID()
	a.AttachBooking(bookingID)
	a.Reschedule(date("2024-01-02"))

	got, ok := a.BookingID()
	require.True(t, ok)
	assert.Equal(t, bookingID, got)

	restored := Restore(a.Snapshot())
	assert.Equal(t, a.Snapshot(), restored.Snapshot())
}
