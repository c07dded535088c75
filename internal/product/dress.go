// internal/product/dress.go
package product

import (
	"dressrental/internal/shared"
	"dressrental/internal/validation"
)

// Dress is the main rental product. A booking needs at least one.
type Dress struct {
	base
	fabric string
}

// DressParams carries the input of a new dress. A zero ID is replaced by a fresh one.
type DressParams struct {
	ID        shared.ID
	RentPrice float64
	Color     string
	Model     string
	Fabric    string
	ImagePath string
}

// NewDress builds a dress and validates every field into its notification.
func NewDress(p DressParams) *Dress {
	d := RestoreDress(Snapshot{
		ID:        p.ID,
		RentPrice: p.RentPrice,
		Color:     p.Color,
		Model:     p.Model,
		Fabric:    p.Fabric,
		ImagePath: p.ImagePath,
	})
	d.Validate()
	return d
}

// RestoreDress rebuilds a stored dress without validation.
func RestoreDress(s Snapshot) *Dress {
	return &Dress{base: newBase(s), fabric: s.Fabric}
}

func (d *Dress) Kind() Kind     { return KindDress }
func (d *Dress) Fabric() string { return d.fabric }

func (d *Dress) ChangeFabric(fabric string) validation.Violations {
	d.fabric = fabric
	vs := validation.Check(d.Snapshot(), rules, GroupFabric)
	d.notification.Append(vs)
	return vs
}

// Validate checks every field group, recording the result in the notification.
func (d *Dress) Validate() validation.Violations {
	vs := validation.Check(d.Snapshot(), rules, dressGroups...)
	d.notification.Append(vs)
	return vs
}

func (d *Dress) Snapshot() Snapshot {
	s := d.snapshot(KindDress)
	s.Fabric = d.fabric
	return s
}
