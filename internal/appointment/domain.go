// internal/appointment/domain.go
package appointment

import (
	"time"

	"dressrental/internal/calendar"
	"dressrental/internal/shared"
	"dressrental/internal/validation"
)

// Type is the purpose of a visit to the store.
type Type string

const (
	TypeInitialVisit     Type = "INITIAL_VISIT"
	TypeAdjustmentReturn Type = "ADJUSTMENT_RETURN"
	TypePickup           Type = "PICKUP"
	TypeReturn           Type = "RETURN"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

const (
	GroupAppointmentDate validation.Group = "appointmentDate"
	GroupEventDate       validation.Group = "eventDate"
	GroupCustomerName    validation.Group = "customerName"
	GroupType            validation.Group = "type"
)

const FieldStatus = "status"

var rules = validation.Rules{
	Groups: map[validation.Group][]string{
		GroupAppointmentDate: {"AppointmentDate"},
		GroupEventDate:       {"EventDate"},
		GroupCustomerName:    {"CustomerName"},
		GroupType:            {"Type"},
	},
	Messages: map[string]string{
		"appointmentDate.required": "Data do agendamento é obrigatória",
		"eventDate.required":       "Data do evento é obrigatória",
		"customerName.required":    "Nome do cliente é obrigatório",
		"type.required":            "Tipo do agendamento é obrigatório",
		"type.oneof":               "Tipo do agendamento inválido",
	},
}

var allGroups = []validation.Group{GroupAppointmentDate, GroupEventDate, GroupCustomerName, GroupType}

// HistoryEntry records the status an appointment had when it was rescheduled.
type HistoryEntry struct {
	AppointmentID shared.ID     `json:"appointmentId"`
	Status        Status        `json:"status"`
	Date          calendar.Date `json:"date"`
}

// Snapshot is the flat state of an appointment.
type Snapshot struct {
	ID              shared.ID      `json:"id"`
	BookingID       *shared.ID     `json:"bookingId,omitempty"`
	AppointmentDate time.Time      `json:"appointmentDate" validate:"required"`
	EventDate       time.Time      `json:"eventDate" validate:"required"`
	CustomerName    string         `json:"customerName" validate:"required"`
	Type            Type           `json:"type" validate:"required,oneof=INITIAL_VISIT ADJUSTMENT_RETURN PICKUP RETURN"`
	Status          Status         `json:"status"`
	History         []HistoryEntry `json:"history"`
}
