// internal/booking/lifecycle.go
package booking

import (
	"dressrental/internal/calendar"
	"dressrental/internal/validation"
)

// InitBookingProcess moves the booking to PAYMENT_PENDING. Missing dresses and a repeated
// initiation are reported but do not block the transition.
func (b *Booking) InitBookingProcess() validation.Violations {
	var vs validation.Violations
	if len(b.dresses) == 0 {
		vs = append(vs, b.record(FieldDresses, "A reserva deve ter pelo menos um vestido")...)
	}
	if b.status != StatusNotInitiated {
		vs = append(vs, b.record(FieldStatus, "O processo de reserva já foi iniciado")...)
	}
	b.status = StatusPaymentPending
	return vs
}

// UpdatePayment adds delta to the amount paid. A booking whose process was not initiated
// rejects payments.
func (b *Booking) UpdatePayment(delta float64) validation.Violations {
	if b.status == StatusNotInitiated {
		return b.record(FieldStatus, "O processo de reserva ainda não foi iniciado")
	}
	b.amountPaid += delta
	vs := b.check(GroupAmountPaid)
	b.afterPaymentUpdated()
	return vs
}

// afterPaymentUpdated marks the booking READY once it is paid in full. Overpayment does not
// count as paid.
func (b *Booking) afterPaymentUpdated() {
	if b.amountPaid == b.CalculateTotalPrice() {
		b.status = StatusReady
	}
}

// Start hands the items to the customer and opens the actual booking period.
func (b *Booking) Start() validation.Violations {
	if b.status != StatusReady {
		return b.record(FieldStatus, "A reserva ainda não foi paga")
	}
	b.status = StatusInProgress
	bp := calendar.NewBookingPeriod(calendar.Now(), nil)
	b.bookingPeriod = &bp
	return nil
}

// Complete closes the booking once the items are back.
func (b *Booking) Complete() validation.Violations {
	switch b.status {
	case StatusNotInitiated:
		return b.record(FieldStatus, "A reserva ainda não foi iniciada")
	case StatusCanceled:
		return b.record(FieldStatus, "A reserva foi cancelada")
	case StatusPaymentPending:
		return b.record(FieldStatus, "A reserva possui pagamento pendente")
	}
	b.status = StatusCompleted
	b.afterCompleted()
	return nil
}

// afterCompleted stamps the return date, keeping the pick-up date of the actual period.
// A booking completed without being started falls back to the expected pick-up date.
func (b *Booking) afterCompleted() {
	pickUp := b.expectedBookingPeriod.PickUpDate()
	if b.bookingPeriod != nil {
		pickUp = b.bookingPeriod.PickUpDate()
	}
	now := calendar.Now()
	bp := calendar.NewBookingPeriod(pickUp, &now)
	b.bookingPeriod = &bp
}

// Cancel moves the booking to CANCELED. Cancelling a completed booking is reported but
// still applied; cancelling twice is a no-op.
func (b *Booking) Cancel() validation.Violations {
	var vs validation.Violations
	if b.status == StatusCompleted {
		vs = b.record(FieldStatus, "A reserva já foi finalizada")
	}
	b.status = StatusCanceled
	return vs
}
