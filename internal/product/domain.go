// internal/product/domain.go
package product

import (
	"dressrental/internal/calendar"
	"dressrental/internal/shared"
	"dressrental/internal/validation"
)

// Kind distinguishes the rentable product lines.
type Kind string

const (
	KindDress  Kind = "dress"
	KindClutch Kind = "clutch"
)

// Validation groups re-checked after a partial mutation.
const (
	GroupRentPrice validation.Group = "rentPrice"
	GroupColor     validation.Group = "color"
	GroupModel     validation.Group = "model"
	GroupFabric    validation.Group = "fabric"
	GroupImagePath validation.Group = "imagePath"
)

var (
	commonGroups = []validation.Group{GroupRentPrice, GroupColor, GroupModel, GroupImagePath}
	dressGroups  = []validation.Group{GroupRentPrice, GroupColor, GroupModel, GroupFabric, GroupImagePath}
)

var rules = validation.Rules{
	Groups: map[validation.Group][]string{
		GroupRentPrice: {"RentPrice"},
		GroupColor:     {"Color"},
		GroupModel:     {"Model"},
		GroupFabric:    {"Fabric"},
		GroupImagePath: {"ImagePath"},
	},
	Messages: map[string]string{
		"rentPrice.gt":       "Preço de aluguel deve ser maior que 0",
		"color.required":     "Cor é obrigatória",
		"model.required":     "Modelo é obrigatório",
		"fabric.required":    "Tecido é obrigatório",
		"imagePath.required": "Imagem é obrigatória",
		"imagePath.url":      "Imagem deve ser uma URL válida",
	},
}

// Rentable is a product that can be reserved for a booking.
type Rentable interface {
	ID() shared.ID
	Kind() Kind
	RentPrice() float64
	IsPickedUp() bool
	PickUp()
	Return()
	ReservationPeriods() []calendar.Period
	AddReservationPeriod(p calendar.Period)
	RemoveReservationPeriod(p calendar.Period) bool
	IsAvailableFor(d calendar.Date) bool
	Notification() *validation.Notification
	Snapshot() Snapshot
}

// Snapshot is the flat state of a product. It doubles as the validation target and the
// rehydration input.
type Snapshot struct {
	ID                 shared.ID         `json:"id"`
	Kind               Kind              `json:"kind"`
	RentPrice          float64           `json:"rentPrice" validate:"gt=0"`
	Color              string            `json:"color" validate:"required"`
	Model              string            `json:"model" validate:"required"`
	Fabric             string            `json:"fabric,omitempty" validate:"required"`
	ImagePath          string            `json:"imagePath" validate:"required,url"`
	IsPickedUp         bool              `json:"isPickedUp"`
	ReservationPeriods []calendar.Period `json:"reservationPeriods"`
}

// Restore rebuilds the product described by s without validating it.
func Restore(s Snapshot) Rentable {
	if s.Kind == KindDress {
		return RestoreDress(s)
	}
	return RestoreClutch(s)
}

// base holds the state shared by every product line.
type base struct {
	id                 shared.ID
	rentPrice          float64
	color              string
	model              string
	imagePath          string
	isPickedUp         bool
	reservationPeriods []calendar.Period
	notification       *validation.Notification
}

func newBase(s Snapshot) base {
	id := s.ID
	if id.IsZero() {
		id = shared.NewID()
	}
	return base{
		id:                 id,
		rentPrice:          s.RentPrice,
		color:              s.Color,
		model:              s.Model,
		imagePath:          s.ImagePath,
		isPickedUp:         s.IsPickedUp,
		reservationPeriods: append([]calendar.Period{}, s.ReservationPeriods...),
		notification:       validation.NewNotification(),
	}
}

func (b *base) ID() shared.ID                          { return b.id }
func (b *base) RentPrice() float64                     { return b.rentPrice }
func (b *base) Color() string                          { return b.color }
func (b *base) Model() string                          { return b.model }
func (b *base) ImagePath() string                      { return b.imagePath }
func (b *base) IsPickedUp() bool                       { return b.isPickedUp }
func (b *base) Notification() *validation.Notification { return b.notification }

// ReservationPeriods returns a copy of the committed rental windows.
func (b *base) ReservationPeriods() []calendar.Period {
	return append([]calendar.Period{}, b.reservationPeriods...)
}

// PickUp marks the product as out of the store. Picking up twice is allowed.
func (b *base) PickUp() { b.isPickedUp = true }

// Return marks the product as back in the store.
func (b *base) Return() { b.isPickedUp = false }

// AddReservationPeriod commits a rental window. Conflicts with existing windows are the
// caller's concern.
func (b *base) AddReservationPeriod(p calendar.Period) {
	b.reservationPeriods = append(b.reservationPeriods, p)
}

// RemoveReservationPeriod drops the first window equal to p and reports whether one was found.
func (b *base) RemoveReservationPeriod(p calendar.Period) bool {
	for i, r := range b.reservationPeriods {
		if r.Equal(p) {
			b.reservationPeriods = append(b.reservationPeriods[:i:i], b.reservationPeriods[i+1:]...)
			return true
		}
	}
	return false
}

// IsAvailableFor reports whether no reservation period contains d.
func (b *base) IsAvailableFor(d calendar.Date) bool {
	for _, p := range b.reservationPeriods {
		if p.Contains(d) {
			return false
		}
	}
	return true
}

// IsAvailableForDate is an alias of IsAvailableFor.
func (b *base) IsAvailableForDate(d calendar.Date) bool {
	return b.IsAvailableFor(d)
}

// IsAvailableDuring reports whether no reservation period overlaps p.
func (b *base) IsAvailableDuring(p calendar.Period) bool {
	for _, r := range b.reservationPeriods {
		if r.Overlaps(p) {
			return false
		}
	}
	return true
}

func (b *base) ChangeRentPrice(price float64) validation.Violations {
	b.rentPrice = price
	return b.revalidate(GroupRentPrice)
}

func (b *base) ChangeColor(color string) validation.Violations {
	b.color = color
	return b.revalidate(GroupColor)
}

func (b *base) ChangeModel(model string) validation.Violations {
	b.model = model
	return b.revalidate(GroupModel)
}

func (b *base) ChangeImagePath(path string) validation.Violations {
	b.imagePath = path
	return b.revalidate(GroupImagePath)
}

func (b *base) snapshot(kind Kind) Snapshot {
	return Snapshot{
		ID:                 b.id,
		Kind:               kind,
		RentPrice:          b.rentPrice,
		Color:              b.color,
		Model:              b.model,
		ImagePath:          b.imagePath,
		IsPickedUp:         b.isPickedUp,
		ReservationPeriods: b.ReservationPeriods(),
	}
}

func (b *base) revalidate(groups ...validation.Group) validation.Violations {
	vs := validation.Check(b.snapshot(""), rules, groups...)
	b.notification.Append(vs)
	return vs
}
