// internal/storage/postgres/records_test.go
package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dressrental/internal/appointment"
	"dressrental/internal/booking"
	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
)

func day(s string) calendar.Date { return calendar.MustParseDate(s) }

func sampleDress() *product.Dress {
	d := product.NewDress(product.DressParams{
		RentPrice: 300,
		Color:     "vermelho",
		Model:     "longo",
		Fabric:    "cetim",
		ImagePath: "https://cdn.example.com/vermelho.png",
	})
	d.AddReservationPeriod(calendar.MustPeriod(day("2030-04-01"), day("2030-04-03")))
	return d
}

func sampleClutch() *product.Clutch {
	return product.NewClutch(product.ClutchParams{
		RentPrice: 40,
		Color:     "dourado",
		Model:     "envelope",
		ImagePath: "https://cdn.example.com/dourada.png",
	})
}

func TestProductRecordRoundTrip(t *testing.T) {
	for _, p := range []product.Rentable{sampleDress(), sampleClutch()} {
		rec, err := productToRecord(p)
		require.NoError(t, err)
		assert.Equal(t, p.Kind() == product.KindDress, rec.Fabric.Valid)

		back, err := productFromRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, p.Kind(), back.Kind())
		assert.Equal(t, p.Snapshot(), back.Snapshot())
	}
}

func TestProductRecordStoresEmptyPeriodsAsArray(t *testing.T) {
	rec, err := productToRecord(sampleClutch())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(rec.ReservationPeriods))

	rec, err = productToRecord(sampleDress())
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"startDate":"2030-04-01T00:00:00.000Z","endDate":"2030-04-03T00:00:00.000Z"}]`,
		string(rec.ReservationPeriods))
}

func TestBookingRecordRoundTrip(t *testing.T) {
	dress, clutch := sampleDress(), sampleClutch()
	ret := day("2030-05-22")
	b := booking.Restore(booking.Snapshot{
		ID:                    shared.NewID(),
		CustomerName:          "Joana",
		EventDate:             day("2030-05-20").Time(),
		ExpectedBookingPeriod: calendar.NewBookingPeriod(day("2030-05-18"), &ret),
		Dresses:               []booking.Item{{Product: dress}},
		Clutches:              []booking.Item{{Product: clutch, Courtesy: true}},
		Status:                booking.StatusReady,
		AmountPaid:            300,
	})

	rec := bookingToRecord(b)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, dress.ID(), rec.Items[0].ProductID)
	assert.True(t, rec.Items[1].Courtesy)
	assert.True(t, rec.ExpectedReturnDate.Valid)
	assert.False(t, rec.PickUpDate.Valid)

	rec.Items[0], rec.Items[1] = rec.Items[1], rec.Items[0]
	products := map[shared.ID]product.Rentable{dress.ID(): dress, clutch.ID(): clutch}
	back, err := bookingFromRecord(rec, products)
	require.NoError(t, err)
	assert.Equal(t, b.Snapshot(), back.Snapshot())
	assert.Equal(t, 300.0, back.CalculateTotalPrice())
}

func TestBookingRecordKeepsActualPeriod(t *testing.T) {
	b := booking.Restore(booking.Snapshot{
		CustomerName:          "Joana",
		EventDate:             day("2030-05-20").Time(),
		ExpectedBookingPeriod: calendar.NewBookingPeriod(day("2030-05-18"), nil),
		Status:                booking.StatusInProgress,
	})
	bp := calendar.NewBookingPeriod(day("2030-05-19"), nil)
	s := b.Snapshot()
	s.BookingPeriod = &bp
	b = booking.Restore(s)

	rec := bookingToRecord(b)
	assert.True(t, rec.PickUpDate.Valid)
	assert.False(t, rec.ReturnDate.Valid)

	back, err := bookingFromRecord(rec, nil)
	require.NoError(t, err)
	got, ok := back.BookingPeriod()
	require.True(t, ok)
	assert.True(t, got.PickUpDate().Equal(day("2030-05-19")))
	_, hasReturn := got.ReturnDate()
	assert.False(t, hasReturn)
}

func TestBookingRecordMissingProduct(t *testing.T) {
	b := booking.Restore(booking.Snapshot{
		CustomerName:          "Joana",
		EventDate:             day("2030-05-20").Time(),
		ExpectedBookingPeriod: calendar.NewBookingPeriod(day("2030-05-18"), nil),
		Dresses:               []booking.Item{{Product: sampleDress()}},
	})
	_, err := bookingFromRecord(bookingToRecord(b), map[shared.ID]product.Rentable{})
	assert.Error(t, err)
}

func TestAppointmentRecordRoundTrip(t *testing.T) {
	bookingID := shared.NewID()
	id := shared.NewID()
	a := appointment.Restore(appointment.Snapshot{
		ID:              id,
		BookingID:       &bookingID,
		AppointmentDate: day("2030-05-12").Time(),
		EventDate:       day("2030-05-20").Time(),
		CustomerName:    "Joana",
		Type:            appointment.TypeAdjustmentReturn,
		Status:          appointment.StatusScheduled,
		History: []appointment.HistoryEntry{
			{AppointmentID: id, Status: appointment.StatusScheduled, Date: day("2030-05-01")},
		},
	})

	rec, err := appointmentToRecord(a)
	require.NoError(t, err)
	back, err := appointmentFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, a.Snapshot(), back.Snapshot())

	loose := appointment.Restore(appointment.Snapshot{
		AppointmentDate: day("2030-05-12").Time(),
		EventDate:       day("2030-05-20").Time(),
		CustomerName:    "Ana",
		Type:            appointment.TypeInitialVisit,
	})
	rec, err = appointmentToRecord(loose)
	require.NoError(t, err)
	assert.Nil(t, rec.BookingID)
	assert.JSONEq(t, `[]`, string(rec.History))
}
