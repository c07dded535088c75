// internal/calendar/period.go
package calendar

import (
	"encoding/json"
	"fmt"
	"time"

	"dressrental/internal/validation"
)

const groupOrder validation.Group = "order"

type periodSnapshot struct {
	StartDate time.Time `json:"startDate" validate:"required,ltefield=EndDate"`
	EndDate   time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
}

var periodRules = validation.Rules{
	Groups: map[validation.Group][]string{
		groupOrder: {"StartDate", "EndDate"},
	},
	Messages: map[string]string{
		"startDate.required": "Data inicial é obrigatória",
		"startDate.ltefield": "Data inicial deve ser anterior ou igual à data final",
		"endDate.required":   "Data final é obrigatória",
		"endDate.gtefield":   "Data final deve ser posterior ou igual à data inicial",
	},
}

// Period is an inclusive date range.
type Period struct {
	start Date
	end   Date
}

// NewPeriod builds a period, failing with a *validation.ValidationError when start is
// after end or either bound is missing.
func NewPeriod(start, end Date) (Period, error) {
	vs := validation.Check(periodSnapshot{StartDate: start.t, EndDate: end.t}, periodRules, groupOrder)
	if !vs.Empty() {
		return Period{}, validation.NewValidationError(vs)
	}
	return Period{start: start, end: end}, nil
}

// MustPeriod is like NewPeriod but panics on invalid bounds.
func MustPeriod(start, end Date) Period {
	p, err := NewPeriod(start, end)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) StartDate() Date { return p.start }
func (p Period) EndDate() Date   { return p.end }

// TotalDays counts both boundary days: ceil(|end-start| / 24h) + 1.
func (p Period) TotalDays() int {
	diff := p.end.t.Sub(p.start.t)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days + 1
}

func (p Period) Contains(d Date) bool {
	return !d.Before(p.start) && !d.After(p.end)
}

// Overlaps reports whether p and o share at least one instant. Touching bounds overlap.
func (p Period) Overlaps(o Period) bool {
	return !p.start.After(o.end) && !p.end.Before(o.start)
}

func (p Period) Equal(o Period) bool {
	return p.start.Equal(o.start) && p.end.Equal(o.end)
}

func (p Period) String() string {
	return fmt.Sprintf("%s/%s", p.start, p.end)
}

type periodJSON struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(periodJSON{StartDate: p.start, EndDate: p.end})
}

func (p *Period) UnmarshalJSON(b []byte) error {
	var raw periodJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewPeriod(raw.StartDate, raw.EndDate)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
