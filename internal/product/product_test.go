package product

import (
	"testing"

	"dressrental/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) calendar.Date { return calendar.MustParseDate(s) }

func period(start, end string) calendar.Period {
	return calendar.MustPeriod(date(start), date(end))
}

func validDress() *Dress {
	return NewDress(DressParams{
		RentPrice: 100,
		Color:     "azul",
		Model:     "sereia",
		Fabric:    "seda",
		ImagePath: "https://cdn.example.com/dresses/sereia.png",
	})
}

func validClutch() *Clutch {
	return NewClutch(ClutchParams{
		RentPrice: 50,
		Color:     "dourada",
		Model:     "envelope",
		ImagePath: "https://cdn.example.com/clutches/envelope.png",
	})
}

func TestNewDressValid(t *testing.T) {
	d := validDress()
	assert.False(t, d.Notification().HasErrors())
	assert.False(t, d.ID().IsZero())
	assert.Equal(t, KindDress, d.Kind())
	assert.False(t, d.IsPickedUp())
	assert.Empty(t, d.ReservationPeriods())
}

func TestNewDressInvalid(t *testing.T) {
	d := NewDress(DressParams{RentPrice: 0, ImagePath: "sereia.png"})
	n := d.Notification()

	assert.Equal(t, []string{"Preço de aluguel deve ser maior que 0"}, n.Messages("rentPrice"))
	assert.Equal(t, []string{"Cor é obrigatória"}, n.Messages("color"))
	assert.Equal(t, []string{"Modelo é obrigatório"}, n.Messages("model"))
	assert.Equal(t, []string{"Tecido é obrigatório"}, n.Messages("fabric"))
	assert.Equal(t, []string{"Imagem deve ser uma URL válida"}, n.Messages("imagePath"))
}

func TestNewClutchIgnoresFabric(t *testing.T) {
	c := validClutch()
	assert.False(t, c.Notification().HasErrors())
	assert.Equal(t, KindClutch, c.Kind())
}

func TestChangeRentPriceIsAdvisory(t *testing.T) {
	d := validDress()

	vs := d.ChangeRentPrice(-10)
	require.Len(t, vs, 1)
	assert.Equal(t, -10.0, d.RentPrice(), "invalid value is kept")
	assert.Len(t, d.Notification().Messages("rentPrice"), 1)

	d.ChangeRentPrice(-10)
	assert.Len(t, d.Notification().Messages("rentPrice"), 2, "errors are not de-duplicated")
	assert.Empty(t, d.Notification().Messages("color"), "only the changed group is validated")
}

func TestChangeFieldsValid(t *testing.T) {
	d := validDress()

	assert.Empty(t, d.ChangeRentPrice(180))
	assert.Empty(t, d.ChangeColor("vermelho"))
	assert.Empty(t, d.ChangeModel("princesa"))
	assert.Empty(t, d.ChangeFabric("tule"))
	assert.Empty(t, d.ChangeImagePath("https://cdn.example.com/dresses/princesa.png"))

	assert.False(t, d.Notification().HasErrors())
	assert.Equal(t, 180.0, d.RentPrice())
	assert.Equal(t, "vermelho", d.Color())
	assert.Equal(t, "princesa", d.Model())
	assert.Equal(t, "tule", d.Fabric())
	assert.Equal(t, "https://cdn.example.com/dresses/princesa.png", d.ImagePath())
}

func TestChangeFieldsInvalid(t *testing.T) {
	d := validDress()

	d.ChangeColor("")
	d.ChangeModel("")
	d.ChangeFabric("")
	d.ChangeImagePath("")

	n := d.Notification()
	assert.Equal(t, []string{"Cor é obrigatória"}, n.Messages("color"))
	assert.Equal(t, []string{"Modelo é obrigatório"}, n.Messages("model"))
	assert.Equal(t, []string{"Tecido é obrigatório"}, n.Messages("fabric"))
	assert.Equal(t, []string{"Imagem é obrigatória"}, n.Messages("imagePath"))
}

func TestPickUpAndReturn(t *testing.T) {
	d := validDress()

	d.PickUp()
	d.PickUp()
	assert.True(t, d.IsPickedUp())

	d.Return()
	assert.False(t, d.IsPickedUp())
}

func TestClutchAvailability(t *testing.T) {
	c := validClutch()
	c.AddReservationPeriod(period("2024-10-10", "2024-10-20"))
	c.AddReservationPeriod(period("2024-10-25", "2024-10-27"))

	assert.False(t, c.IsAvailableForDate(date("2024-10-15")))
	assert.True(t, c.IsAvailableForDate(date("2024-10-22")))
	assert.False(t, c.IsAvailableForDate(date("2024-10-27")))
	assert.True(t, c.IsAvailableForDate(date("2024-10-28")))
}

func TestAddReservationPeriodDoesNotCheckConflicts(t *testing.T) {
	d := validDress()
	d.AddReservationPeriod(period("2024-10-10", "2024-10-20"))
	d.AddReservationPeriod(period("2024-10-15", "2024-10-25"))

	assert.Len(t, d.ReservationPeriods(), 2)
	assert.False(t, d.IsAvailableDuring(period("2024-10-20", "2024-10-21")))
	assert.True(t, d.IsAvailableDuring(period("2024-10-26", "2024-10-30")))
}

func TestRemoveReservationPeriod(t *testing.T) {
	d := validDress()
	d.AddReservationPeriod(period("2024-10-10", "2024-10-20"))
	d.AddReservationPeriod(period("2024-10-25", "2024-10-27"))

	assert.True(t, d.RemoveReservationPeriod(period("2024-10-10", "2024-10-20")))
	assert.True(t, d.IsAvailableFor(date("2024-10-15")))
	assert.False(t, d.IsAvailableFor(date("2024-10-26")))
	require.Len(t, d.ReservationPeriods(), 1)

	assert.False(t, d.RemoveReservationPeriod(period("2024-10-10", "2024-10-20")))
	assert.False(t, d.RemoveReservationPeriod(period("2024-10-25", "2024-10-28")))
	assert.Len(t, d.ReservationPeriods(), 1)
}

func TestReservationPeriodsIsACopy(t *testing.T) {
	d := validDress()
	d.AddReservationPeriod(period("2024-10-10", "2024-10-20"))

	periods := d.ReservationPeriods()
	periods[0] = period("2030-01-01", "2030-01-02")

	assert.False(t, d.IsAvailableFor(date("2024-10-12")))
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := validDress()
	d.AddReservationPeriod(period("2024-10-10", "2024-10-20"))
	d.PickUp()

	restored := Restore(d.Snapshot())
	require.IsType(t, &Dress{}, restored)
	assert.Equal(t, d, restored)

	c := validClutch()
	assert.Equal(t, c, Restore(c.Snapshot()))
}
