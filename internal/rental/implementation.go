// internal/rental/implementation.go
package rental

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"dressrental/internal/appointment"
	"dressrental/internal/booking"
	"dressrental/internal/calendar"
	"dressrental/internal/platform/logger"
	"dressrental/internal/product"
	"dressrental/internal/shared"
	"dressrental/internal/storage"
	"dressrental/internal/validation"
)

const instrumentationName = "dressrental/rental"

// service implements the Service interface.
type service struct {
	products     storage.ProductRepository
	bookings     storage.BookingRepository
	appointments storage.AppointmentRepository
	log          *logger.Logger
	tracer       trace.Tracer

	bookingTransitions     metric.Int64Counter
	appointmentTransitions metric.Int64Counter
}

// Option configures the rental service.
type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records the transition counters with mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// NewService creates a new rental service instance.
func NewService(
	products storage.ProductRepository,
	bookings storage.BookingRepository,
	appointments storage.AppointmentRepository,
	log *logger.Logger,
	opts ...Option,
) (Service, error) {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	bookingTransitions, err := meter.Int64Counter("rental.booking.transitions",
		metric.WithDescription("Booking status transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("create booking counter: %w", err)
	}
	appointmentTransitions, err := meter.Int64Counter("rental.appointment.transitions",
		metric.WithDescription("Appointment status transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("create appointment counter: %w", err)
	}

	return &service{
		products:               products,
		bookings:               bookings,
		appointments:           appointments,
		log:                    log.With("service", "rental"),
		tracer:                 otel.Tracer(instrumentationName),
		bookingTransitions:     bookingTransitions,
		appointmentTransitions: appointmentTransitions,
	}, nil
}

// invalid converts a dirty notification into an error.
func invalid(n *validation.Notification) error {
	if !n.HasErrors() {
		return nil
	}
	return validation.FromNotification(n)
}

func (s *service) RegisterDress(ctx context.Context, in product.DressParams) (*product.Dress, error) {
	ctx, span := s.tracer.Start(ctx, "rental.register_dress")
	defer span.End()

	d := product.NewDress(in)
	if err := s.register(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) RegisterClutch(ctx context.Context, in product.ClutchParams) (*product.Clutch, error) {
	ctx, span := s.tracer.Start(ctx, "rental.register_clutch")
	defer span.End()

	c := product.NewClutch(in)
	if err := s.register(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) register(ctx context.Context, p product.Rentable) error {
	if err := invalid(p.Notification()); err != nil {
		return err
	}
	if err := s.products.Save(ctx, p); err != nil {
		return fmt.Errorf("save %s: %w", p.Kind(), err)
	}
	s.log.Info("product registered", "product_id", p.ID().String(), "kind", string(p.Kind()))
	return nil
}

func (s *service) ListAvailableProducts(ctx context.Context, date calendar.Date) ([]product.Rentable, error) {
	ctx, span := s.tracer.Start(ctx, "rental.list_available_products",
		trace.WithAttributes(attribute.String("date", date.String())),
	)
	defer span.End()

	ps, err := s.products.FindAvailableFor(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("find available products: %w", err)
	}
	return ps, nil
}

// CreateBooking validates the requested period, attaches the products, starts the
// booking process and reserves the products for the period. Reservations are rolled
// back if the booking cannot be stored.
func (s *service) CreateBooking(ctx context.Context, in CreateBookingInput) (*booking.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "rental.create_booking",
		trace.WithAttributes(attribute.Int("item.count", len(in.Items))),
	)
	defer span.End()

	period, err := calendar.CreateBookingPeriod(in.PickUpDate, in.ReturnDate)
	if err != nil {
		return nil, err
	}
	b, err := booking.New(booking.Params{
		CustomerName:          in.CustomerName,
		EventDate:             in.EventDate,
		ExpectedBookingPeriod: period,
	})
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	for _, it := range in.Items {
		b.AddItem(booking.Item{Product: products[it.ProductID], Courtesy: it.Courtesy})
	}
	b.InitBookingProcess()
	if err := invalid(b.Notification()); err != nil {
		return nil, err
	}

	reserved, err := s.reserve(ctx, b.Items(), period.AsPeriod())
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		s.release(ctx, reserved)
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.recordBookingTransition(ctx, booking.StatusNotInitiated, b.Status())
	s.log.Info("booking created",
		"booking_id", b.ID().String(),
		"items", len(in.Items),
		"total_price", b.CalculateTotalPrice(),
	)
	return b, nil
}

// loadProducts fetches the requested products. A product may appear only once per booking.
func (s *service) loadProducts(ctx context.Context, items []ItemInput) (map[shared.ID]product.Rentable, error) {
	ids := make([]shared.ID, 0, len(items))
	seen := make(map[shared.ID]struct{}, len(items))
	var repeated validation.Violations
	for _, it := range items {
		if _, dup := seen[it.ProductID]; dup {
			repeated = append(repeated, validation.Violation{
				Field:   booking.FieldItems,
				Message: fmt.Sprintf("Item %s informado mais de uma vez", it.ProductID),
			})
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	if len(repeated) > 0 {
		return nil, validation.NewValidationError(repeated)
	}

	found, err := s.products.FindManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	byID := make(map[shared.ID]product.Rentable, len(found))
	for _, p := range found {
		byID[p.ID()] = p
	}
	var missing []shared.ID
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, shared.NewNotFoundError(storage.EntityProduct, missing...)
	}
	return byID, nil
}

// reserve adds period to every product and returns the pre-reservation snapshots of the
// products already written, for compensation.
func (s *service) reserve(ctx context.Context, items []booking.Item, period calendar.Period) ([]product.Snapshot, error) {
	var written []product.Snapshot
	for _, it := range items {
		before := it.Product.Snapshot()
		it.Product.AddReservationPeriod(period)
		if err := s.products.Update(ctx, it.Product); err != nil {
			s.release(ctx, written)
			return nil, fmt.Errorf("reserve product %s: %w", it.Product.ID(), err)
		}
		written = append(written, before)
	}
	return written, nil
}

// release restores products to their pre-reservation state. Failures are logged.
func (s *service) release(ctx context.Context, snapshots []product.Snapshot) {
	for _, snap := range snapshots {
		if err := s.products.Update(ctx, product.Restore(snap)); err != nil {
			s.log.Error("failed to release reservation", "product_id", snap.ID.String(), "error", err)
		}
	}
}

func (s *service) RegisterPayment(ctx context.Context, bookingID shared.ID, amount float64) (*booking.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "rental.register_payment",
		trace.WithAttributes(
			attribute.String("booking.id", bookingID.String()),
			attribute.Float64("payment.amount", amount),
		),
	)
	defer span.End()

	return s.transitionBooking(ctx, bookingID, func(b *booking.Booking) { b.UpdatePayment(amount) }, nil)
}

// StartBooking hands the items to the customer.
func (s *service) StartBooking(ctx context.Context, bookingID shared.ID) (*booking.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "rental.start_booking",
		trace.WithAttributes(attribute.String("booking.id", bookingID.String())),
	)
	defer span.End()

	return s.transitionBooking(ctx, bookingID,
		func(b *booking.Booking) { b.Start() },
		func(ctx context.Context, b *booking.Booking) ([]product.Snapshot, error) {
			return s.updateProducts(ctx, itemIDs(b.Items()), product.Rentable.PickUp)
		},
	)
}

// CompleteBooking takes the items back.
func (s *service) CompleteBooking(ctx context.Context, bookingID shared.ID) (*booking.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "rental.complete_booking",
		trace.WithAttributes(attribute.String("booking.id", bookingID.String())),
	)
	defer span.End()

	return s.transitionBooking(ctx, bookingID,
		func(b *booking.Booking) { b.Complete() },
		func(ctx context.Context, b *booking.Booking) ([]product.Snapshot, error) {
			return s.updateProducts(ctx, itemIDs(b.Items()), product.Rentable.Return)
		},
	)
}

// CancelBooking cancels the booking and frees its items for the expected period.
func (s *service) CancelBooking(ctx context.Context, bookingID shared.ID) (*booking.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "rental.cancel_booking",
		trace.WithAttributes(attribute.String("booking.id", bookingID.String())),
	)
	defer span.End()

	// a canceled booking no longer owns its periods
	var alreadyCanceled bool
	return s.transitionBooking(ctx, bookingID,
		func(b *booking.Booking) {
			alreadyCanceled = b.Status() == booking.StatusCanceled
			b.Cancel()
		},
		func(ctx context.Context, b *booking.Booking) ([]product.Snapshot, error) {
			if alreadyCanceled {
				return nil, nil
			}
			return s.unreserve(ctx, b, itemIDs(b.Items()))
		},
	)
}

// RemoveBookingItem drops a product from the booking and frees it for the expected period.
func (s *service) RemoveBookingItem(ctx context.Context, bookingID, productID shared.ID) (*booking.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "rental.remove_booking_item",
		trace.WithAttributes(
			attribute.String("booking.id", bookingID.String()),
			attribute.String("product.id", productID.String()),
		),
	)
	defer span.End()

	var removed bool
	return s.transitionBooking(ctx, bookingID,
		func(b *booking.Booking) {
			removed = hasItem(b.Items(), productID) && b.Status() != booking.StatusCanceled
			b.RemoveItem(productID)
		},
		func(ctx context.Context, b *booking.Booking) ([]product.Snapshot, error) {
			if !removed {
				return nil, nil
			}
			return s.unreserve(ctx, b, []shared.ID{productID})
		},
	)
}

// unreserve removes b's expected period from the given products.
func (s *service) unreserve(ctx context.Context, b *booking.Booking, ids []shared.ID) ([]product.Snapshot, error) {
	period := b.ExpectedBookingPeriod().AsPeriod()
	return s.updateProducts(ctx, ids, func(p product.Rentable) { p.RemoveReservationPeriod(period) })
}

// productEffect writes the product side of a booking transition and returns the
// snapshots needed to undo it.
type productEffect func(context.Context, *booking.Booking) ([]product.Snapshot, error)

// transitionBooking loads a booking, applies mutate and stores the result unless the
// booking's notification picked up errors. Products are written before the booking;
// if the booking write fails they are restored.
func (s *service) transitionBooking(ctx context.Context, id shared.ID, mutate func(*booking.Booking), effect productEffect) (*booking.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := b.Status()

	mutate(b)
	if err := invalid(b.Notification()); err != nil {
		s.log.Debug("booking transition rejected", "booking_id", id.String(), "error", err)
		return nil, err
	}

	var touched []product.Snapshot
	if effect != nil {
		if touched, err = effect(ctx, b); err != nil {
			return nil, err
		}
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		s.release(ctx, touched)
		return nil, fmt.Errorf("update booking: %w", err)
	}

	if from != b.Status() {
		s.recordBookingTransition(ctx, from, b.Status())
		s.log.Info("booking status changed",
			"booking_id", id.String(),
			"from", string(from),
			"to", string(b.Status()),
		)
	}
	return b, nil
}

// updateProducts applies change to the stored version of every product in ids and
// returns their previous snapshots. A failed write restores the products already written.
func (s *service) updateProducts(ctx context.Context, ids []shared.ID, change func(product.Rentable)) ([]product.Snapshot, error) {
	ps, err := s.products.FindManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	written := make([]product.Snapshot, 0, len(ps))
	for _, p := range ps {
		before := p.Snapshot()
		change(p)
		if err := s.products.Update(ctx, p); err != nil {
			s.release(ctx, written)
			return nil, fmt.Errorf("update product %s: %w", p.ID(), err)
		}
		written = append(written, before)
	}
	return written, nil
}

func itemIDs(items []booking.Item) []shared.ID {
	ids := make([]shared.ID, len(items))
	for i, it := range items {
		ids[i] = it.Product.ID()
	}
	return ids
}

func hasItem(items []booking.Item, id shared.ID) bool {
	for _, it := range items {
		if it.Product.ID() == id {
			return true
		}
	}
	return false
}

func (s *service) recordBookingTransition(ctx context.Context, from, to booking.Status) {
	s.bookingTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
}

// ScheduleAppointment creates an appointment. A referenced booking must exist.
func (s *service) ScheduleAppointment(ctx context.Context, in appointment.Params) (*appointment.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "rental.schedule_appointment",
		trace.WithAttributes(attribute.String("appointment.type", string(in.Type))),
	)
	defer span.End()

	if in.BookingID != nil {
		ok, err := s.bookings.ExistsByID(ctx, *in.BookingID)
		if err != nil {
			return nil, fmt.Errorf("check booking: %w", err)
		}
		if !ok {
			return nil, shared.NewNotFoundError(storage.EntityBooking, *in.BookingID)
		}
	}

	a := appointment.New(in)
	if err := invalid(a.Notification()); err != nil {
		return nil, err
	}
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save appointment: %w", err)
	}

	s.recordAppointmentTransition(ctx, "", a.Status())
	s.log.Info("appointment scheduled",
		"appointment_id", a.ID().String(),
		"type", string(a.Type()),
		"date", a.AppointmentDate().String(),
	)
	return a, nil
}

func (s *service) RescheduleAppointment(ctx context.Context, id shared.ID, date calendar.Date) (*appointment.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "rental.reschedule_appointment",
		trace.WithAttributes(attribute.String("appointment.id", id.String())),
	)
	defer span.End()

	return s.transitionAppointment(ctx, id, func(a *appointment.Appointment) {
		a.Reschedule(date)
	})
}

func (s *service) CompleteAppointment(ctx context.Context, id shared.ID) (*appointment.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "rental.complete_appointment",
		trace.WithAttributes(attribute.String("appointment.id", id.String())),
	)
	defer span.End()

	return s.transitionAppointment(ctx, id, func(a *appointment.Appointment) {
		a.Complete()
	})
}

func (s *service) CancelAppointment(ctx context.Context, id shared.ID) (*appointment.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "rental.cancel_appointment",
		trace.WithAttributes(attribute.String("appointment.id", id.String())),
	)
	defer span.End()

	return s.transitionAppointment(ctx, id, func(a *appointment.Appointment) {
		a.Cancel()
	})
}

func (s *service) transitionAppointment(ctx context.Context, id shared.ID, mutate func(*appointment.Appointment)) (*appointment.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := a.Status()

	mutate(a)
	if err := invalid(a.Notification()); err != nil {
		s.log.Debug("appointment change rejected", "appointment_id", id.String(), "error", err)
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	if from != a.Status() {
		s.recordAppointmentTransition(ctx, from, a.Status())
	}
	s.log.Info("appointment updated",
		"appointment_id", id.String(),
		"status", string(a.Status()),
		"date", a.AppointmentDate().String(),
	)
	return a, nil
}

func (s *service) recordAppointmentTransition(ctx context.Context, from, to appointment.Status) {
	s.appointmentTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
}
