// internal/product/clutch.go
package product

import (
	"dressrental/internal/shared"
	"dressrental/internal/validation"
)

// Clutch is an accessory rented alongside dresses, sometimes as a courtesy.
type Clutch struct {
	base
}

type ClutchParams struct {
	ID        shared.ID
	RentPrice float64
	Color     string
	Model     string
	ImagePath string
}

func NewClutch(p ClutchParams) *Clutch {
	c := RestoreClutch(Snapshot{
		ID:        p.ID,
		RentPrice: p.RentPrice,
		Color:     p.Color,
		Model:     p.Model,
		ImagePath: p.ImagePath,
	})
	c.Validate()
	return c
}

func RestoreClutch(s Snapshot) *Clutch {
	return &Clutch{base: newBase(s)}
}

func (c *Clutch) Kind() Kind { return KindClutch }

func (c *Clutch) Validate() validation.Violations {
	vs := validation.Check(c.Snapshot(), rules, commonGroups...)
	c.notification.Append(vs)
	return vs
}

func (c *Clutch) Snapshot() Snapshot {
	return c.snapshot(KindClutch)
}
