// internal/booking/domain.go
package booking

import (
	"time"

	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
	"dressrental/internal/validation"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusNotInitiated   Status = "NOT_INITIATED"
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusReady          Status = "READY"
	StatusInProgress     Status = "IN_PROGRESS"
	StatusCompleted      Status = "COMPLETED"
	StatusCanceled       Status = "CANCELED"
)

// Validation groups of a booking.
const (
	GroupCustomerName validation.Group = "customerName"
	GroupEventDate    validation.Group = "eventDate"
	GroupAmountPaid   validation.Group = "amountPaid"
)

// Notification fields used by behavior methods.
const (
	FieldStatus   = "status"
	FieldDresses  = "dresses"
	FieldClutches = "clutches"
	FieldItems    = "items"
	FieldExpected = "expectedBookingPeriod"
)

var rules = validation.Rules{
	Groups: map[validation.Group][]string{
		GroupCustomerName: {"CustomerName"},
		GroupEventDate:    {"EventDate"},
		GroupAmountPaid:   {"AmountPaid"},
	},
	Messages: map[string]string{
		"customerName.required": "Nome do cliente é obrigatório",
		"eventDate.required":    "Data do evento é obrigatória",
		"amountPaid.gte":        "Valor pago deve ser maior ou igual a 0",
		"amountPaid.ltefield":   "Valor pago deve ser menor ou igual ao valor total da reserva",
	},
}

var allGroups = []validation.Group{GroupCustomerName, GroupEventDate, GroupAmountPaid}

// Item is a product line of a booking. Courtesy clutches are lent for free.
type Item struct {
	Product  product.Rentable
	Courtesy bool
}

// Price is the contribution of the item to the booking total.
func (i Item) Price() float64 {
	if i.Courtesy && i.Product.Kind() == product.KindClutch {
		return 0
	}
	return i.Product.RentPrice()
}

// Snapshot is the flat state of a booking, used for validation and rehydration.
// TotalPrice is derived and ignored by Restore.
type Snapshot struct {
	ID                    shared.ID               `json:"id"`
	CustomerName          string                  `json:"customerName" validate:"required"`
	EventDate             time.Time               `json:"eventDate" validate:"required"`
	ExpectedBookingPeriod calendar.BookingPeriod  `json:"-"`
	BookingPeriod         *calendar.BookingPeriod `json:"-"`
	Dresses               []Item                  `json:"-"`
	Clutches              []Item                  `json:"-"`
	Status                Status                  `json:"status"`
	AmountPaid            float64                 `json:"amountPaid" validate:"gte=0,ltefield=TotalPrice"`
	TotalPrice            float64                 `json:"totalPrice"`
}
