// internal/validation/check.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Group tags a set of fields that are re-validated together after a partial mutation.
type Group string

// Rules binds groups to the struct fields they cover and translates validator failures
// into user-facing messages keyed by "<json field>.<tag>".
type Rules struct {
	Groups   map[Group][]string
	Messages map[string]string
}

// AllGroups returns every group declared by r.
func (r Rules) AllGroups() []Group {
	out := make([]Group, 0, len(r.Groups))
	for g := range r.Groups {
		out = append(out, g)
	}
	return out
}

func (r Rules) fields(groups []Group) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range groups {
		for _, f := range r.Groups[g] {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

func (r Rules) message(fe validator.FieldError) string {
	if msg, ok := r.Messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s inválido", fe.Field())
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notpast", notPast); err != nil {
		panic(fmt.Sprintf("register notpast validation: %v", err))
	}
	return v
}

var now = time.Now

// notPast accepts instants from the start of the current day onwards, in the
// instant's own location.
func notPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	today := now().In(t.Location())
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return !t.Before(midnight)
}

// Check validates the fields of snapshot covered by groups. It is pure: the snapshot is
// only read and violations come back in struct field order.
func Check(snapshot interface{}, rules Rules, groups ...Group) Violations {
	fields := rules.fields(groups)
	if len(fields) == 0 {
		return nil
	}

	err := validate.StructPartial(snapshot, fields...)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Violations{{Message: err.Error()}}
	}

	out := make(Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{Field: fe.Field(), Message: rules.message(fe)})
	}
	return out
}
