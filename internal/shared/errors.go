// internal/shared/errors.go
package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound matches every NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports ids missing from a repository.
type NotFoundError struct {
	Entity string
	IDs    []ID
}

func NewNotFoundError(entity string, ids ...ID) *NotFoundError {
	return &NotFoundError{Entity: entity, IDs: ids}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id(s) %s not found", e.Entity, strings.Join(IDStrings(e.IDs), ","))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
