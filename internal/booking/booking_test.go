package booking

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
	"dressrental/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func date(s string) calendar.Date { return calendar.MustParseDate(s) }

func expectedPeriod() calendar.BookingPeriod {
	ret := date("2024-10-12")
	return calendar.NewBookingPeriod(date("2024-10-10"), &ret)
}

func newDress(price float64) *product.Dress {
	return product.NewDress(product.DressParams{
		RentPrice: price,
		Color:     "azul",
		Model:     "sereia",
		Fabric:    "seda",
		ImagePath: "https://cdn.example.com/dresses/sereia.png",
	})
}

func newClutch(price float64) *product.Clutch {
	return product.NewClutch(product.ClutchParams{
		RentPrice: price,
		Color:     "dourada",
		Model:     "envelope",
		ImagePath: "https://cdn.example.com/clutches/envelope.png",
	})
}

func newBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := New(Params{
		CustomerName:          "Maria Silva",
		EventDate:             date("2024-10-11"),
		ExpectedBookingPeriod: expectedPeriod(),
	})
	require.NoError(t, err)
	require.False(t, b.Notification().HasErrors())
	return b
}

// bookingWith returns a booking holding a 100 dress and a 50 clutch.
func bookingWith(t *testing.T) *Booking {
	t.Helper()
	b := newBooking(t)
	b.AddItem(Item{Product: newDress(100)})
	b.AddItem(Item{Product: newClutch(50)})
	require.False(t, b.Notification().HasErrors())
	return b
}

func TestNewRequiresExpectedPeriod(t *testing.T) {
	_, err := New(Params{CustomerName: "Maria", EventDate: date("2024-10-11")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrValidation))
}

func TestNewValidatesFields(t *testing.T) {
	b, err := New(Params{ExpectedBookingPeriod: expectedPeriod()})
	require.NoError(t, err)

	assert.Equal(t, StatusNotInitiated, b.Status())
	assert.Equal(t, []string{"Nome do cliente é obrigatório"}, b.Notification().Messages("customerName"))
	assert.Equal(t, []string{"Data do evento é obrigatória"}, b.Notification().Messages("eventDate"))
}

func TestCalculateTotalPrice(t *testing.T) {
	b := newBooking(t)
	b.AddItem(Item{Product: newDress(100)})
	b.AddItem(Item{Product: newDress(80)})
	b.AddItem(Item{Product: newClutch(50)})
	b.AddItem(Item{Product: newClutch(40), Courtesy: true})

	assert.Equal(t, 230.0, b.CalculateTotalPrice())
	assert.Len(t, b.Dresses(), 2)
	assert.Len(t, b.Clutches(), 2)
	assert.Len(t, b.Items(), 4)
}

func TestCourtesyDressStillCounts(t *testing.T) {
	b := newBooking(t)
	b.AddItem(Item{Product: newDress(100), Courtesy: true})
	assert.Equal(t, 100.0, b.CalculateTotalPrice())
}

func TestInitBookingProcess(t *testing.T) {
	b := bookingWith(t)

	vs := b.InitBookingProcess()
	assert.Empty(t, vs)
	assert.Equal(t, StatusPaymentPending, b.Status())
}

func TestInitBookingProcessWithoutDressIsAdvisory(t *testing.T) {
	b := newBooking(t)
	b.AddItem(Item{Product: newClutch(50)})

	vs := b.InitBookingProcess()
	assert.Equal(t, []string{"A reserva deve ter pelo menos um vestido"}, vs.Messages(FieldDresses))
	assert.Equal(t, StatusPaymentPending, b.Status())
}

func TestInitBookingProcessTwice(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()

	vs := b.InitBookingProcess()
	assert.Equal(t, []string{"O processo de reserva já foi iniciado"}, vs.Messages(FieldStatus))
	assert.Equal(t, StatusPaymentPending, b.Status())
}

func TestUpdatePaymentRequiresInitiatedProcess(t *testing.T) {
	b := bookingWith(t)

	vs := b.UpdatePayment(150)
	assert.Equal(t, []string{"O processo de reserva ainda não foi iniciado"}, vs.Messages(FieldStatus))
	assert.Equal(t, 0.0, b.AmountPaid())
	assert.Equal(t, StatusNotInitiated, b.Status())
}

func TestFullPaymentMakesBookingReady(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()

	vs := b.UpdatePayment(150)
	assert.Empty(t, vs)
	assert.Equal(t, StatusReady, b.Status())
	assert.Equal(t, 150.0, b.AmountPaid())
}

func TestPartialPaymentsAccumulate(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()

	b.UpdatePayment(100)
	assert.Equal(t, StatusPaymentPending, b.Status())

	b.UpdatePayment(50)
	assert.Equal(t, StatusReady, b.Status())
}

func TestNegativePayment(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()

	vs := b.UpdatePayment(-50)
	assert.Equal(t, []string{"Valor pago deve ser maior ou igual a 0"}, vs.Messages("amountPaid"))
	assert.Equal(t, -50.0, b.AmountPaid(), "advisory validation keeps the mutation")
	assert.Equal(t, StatusPaymentPending, b.Status())
}

func TestOverpaymentDoesNotAdvance(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()

	vs := b.UpdatePayment(200)
	assert.Equal(t,
		[]string{"Valor pago deve ser menor ou igual ao valor total da reserva"},
		vs.Messages("amountPaid"))
	assert.Equal(t, StatusPaymentPending, b.Status())
}

func TestStartRequiresReady(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()

	vs := b.Start()
	assert.Equal(t, []string{"A reserva ainda não foi paga"}, vs.Messages(FieldStatus))
	assert.Equal(t, StatusPaymentPending, b.Status())
	_, started := b.BookingPeriod()
	assert.False(t, started)
}

func TestStartOpensBookingPeriod(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()
	b.UpdatePayment(150)

	before := time.Now().Add(-time.Millisecond)
	assert.Empty(t, b.Start())
	assert.Equal(t, StatusInProgress, b.Status())

	bp, ok := b.BookingPeriod()
	require.True(t, ok)
	assert.False(t, bp.PickUpDate().Time().Before(before))
	_, returned := bp.ReturnDate()
	assert.False(t, returned)
}

func TestCompleteGuards(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(b *Booking)
		want    string
	}{
		{"not initiated", func(b *Booking) {}, "A reserva ainda não foi iniciada"},
		{"payment pending", func(b *Booking) { b.InitBookingProcess() }, "A reserva possui pagamento pendente"},
		{"canceled", func(b *Booking) { b.Cancel() }, "A reserva foi cancelada"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := bookingWith(t)
			tc.prepare(b)
			before := b.Status()

			vs := b.Complete()
			assert.Equal(t, []string{tc.want}, vs.Messages(FieldStatus))
			assert.Equal(t, before, b.Status())
		})
	}
}

func TestCompleteStampsReturnDate(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()
	b.UpdatePayment(150)
	b.Start()
	started, _ := b.BookingPeriod()

	assert.Empty(t, b.Complete())
	assert.Equal(t, StatusCompleted, b.Status())

	bp, ok := b.BookingPeriod()
	require.True(t, ok)
	assert.True(t, bp.PickUpDate().Equal(started.PickUpDate()))
	returned, ok := bp.ReturnDate()
	require.True(t, ok)
	assert.False(t, returned.Before(started.PickUpDate()))
}

func TestCompleteFromReadyUsesExpectedPickUp(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()
	b.UpdatePayment(150)

	assert.Empty(t, b.Complete())
	bp, ok := b.BookingPeriod()
	require.True(t, ok)
	assert.True(t, bp.PickUpDate().Equal(date("2024-10-10")))
}

func TestCancel(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()

	assert.Empty(t, b.Cancel())
	assert.Equal(t, StatusCanceled, b.Status())

	assert.Empty(t, b.Cancel(), "cancelling twice is idempotent")
	assert.Equal(t, StatusCanceled, b.Status())
}

func TestCancelCompletedIsAdvisory(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()
	b.UpdatePayment(150)
	b.Start()
	b.Complete()

	vs := b.Cancel()
	assert.Equal(t, []string{"A reserva já foi finalizada"}, vs.Messages(FieldStatus))
	assert.Equal(t, StatusCanceled, b.Status())
}

func TestAddItemFlagsReservedProduct(t *testing.T) {
	b := newBooking(t)
	dress := newDress(100)
	dress.AddReservationPeriod(calendar.MustPeriod(date("2024-10-12"), date("2024-10-14")))
	clutch := newClutch(50)
	clutch.AddReservationPeriod(calendar.MustPeriod(date("2024-10-01"), date("2024-10-10")))
	free := newClutch(30)
	free.AddReservationPeriod(calendar.MustPeriod(date("2024-10-13"), date("2024-10-20")))

	vs := b.AddItem(Item{Product: dress})
	assert.Equal(t,
		[]string{fmt.Sprintf("Vestido %s não está disponível no período da reserva", dress.ID())},
		vs.Messages(FieldDresses))

	vs = b.AddItem(Item{Product: clutch})
	assert.Equal(t,
		[]string{fmt.Sprintf("Bolsa %s não está disponível no período da reserva", clutch.ID())},
		vs.Messages(FieldClutches))

	assert.Empty(t, b.AddItem(Item{Product: free}))
	assert.Len(t, b.Items(), 3, "conflicting items are still added")
}

func TestAddItemFlagsInvalidProduct(t *testing.T) {
	b := newBooking(t)
	dress := newDress(0)

	vs := b.AddItem(Item{Product: dress})
	assert.Equal(t,
		[]string{fmt.Sprintf("Item %s possui erros de validação", dress.ID())},
		vs.Messages(FieldItems))
	assert.Len(t, b.Dresses(), 1)
}

func TestRemoveItem(t *testing.T) {
	b := newBooking(t)
	dress := newDress(100)
	clutch := newClutch(50)
	b.AddItem(Item{Product: dress})
	b.AddItem(Item{Product: clutch})

	assert.Empty(t, b.RemoveItem(shared.NewID()))
	assert.Len(t, b.Items(), 2)

	b.RemoveItem(clutch.ID())
	assert.Len(t, b.Clutches(), 0)
	assert.Len(t, b.Dresses(), 1)
	assert.Equal(t, 100.0, b.CalculateTotalPrice())
}

func TestRemoveItemRevalidatesAmountPaid(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()
	b.UpdatePayment(150)
	clutch := b.Clutches()[0].Product

	vs := b.RemoveItem(clutch.ID())
	assert.Equal(t,
		[]string{"Valor pago deve ser menor ou igual ao valor total da reserva"},
		vs.Messages("amountPaid"))
}

func TestChangeCustomerNameAccumulates(t *testing.T) {
	b := newBooking(t)
	b.ChangeCustomerName("")
	b.ChangeCustomerName("")
	assert.Len(t, b.Notification().Messages("customerName"), 2)
	assert.Empty(t, b.ChangeEventDate(date("2024-10-12")))
}

func TestSnapshotRestore(t *testing.T) {
	b := bookingWith(t)
	b.InitBookingProcess()
	b.UpdatePayment(150)
	b.Start()

	restored := Restore(b.Snapshot())
	assert.Equal(t, b.Snapshot(), restored.Snapshot())
	assert.False(t, restored.Notification().HasErrors())
}

// Paying exactly the total is the only way to reach READY.
func TestReadyIffPaidInFull(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b, err := New(Params{CustomerName: "Ana", EventDate: date("2024-10-11"), ExpectedBookingPeriod: expectedPeriod()})
		if err != nil {
			t.Fatal(err)
		}
		n := rapid.IntRange(1, 4).Draw(t, "dresses")
		for i := 0; i < n; i++ {
			b.AddItem(Item{Product: newDress(float64(rapid.IntRange(1, 500).Draw(t, "price")))})
		}
		b.InitBookingProcess()

		total := b.CalculateTotalPrice()
		amount := float64(rapid.IntRange(-100, 2500).Draw(t, "amount"))
		b.UpdatePayment(amount)

		if (amount == total) != (b.Status() == StatusReady) {
			t.Fatalf("amount=%v total=%v status=%s", amount, total, b.Status())
		}
		if amount != total && b.Status() != StatusPaymentPending {
			t.Fatalf("status changed to %s", b.Status())
		}
	})
}
