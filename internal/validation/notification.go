// internal/validation/notification.go
package validation

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Violation is a single validation message, optionally scoped to a field.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Violations is the result of a validation pass or of a behavior method.
type Violations []Violation

func (vs Violations) Empty() bool {
	return len(vs) == 0
}

// Messages returns the messages recorded under field, in order.
func (vs Violations) Messages(field string) []string {
	var out []string
	for _, v := range vs {
		if v.Field == field {
			out = append(out, v.Message)
		}
	}
	return out
}

// Notification accumulates violations for the lifetime of an aggregate instance.
// It never de-duplicates and is never cleared.
type Notification struct {
	fields map[string][]string
	order  []string
	global []string
}

func NewNotification() *Notification {
	return &Notification{fields: map[string][]string{}}
}

// AddError records message under field, or as a fieldless message when field is empty.
func (n *Notification) AddError(message, field string) {
	if field == "" {
		n.global = append(n.global, message)
		return
	}
	if _, ok := n.fields[field]; !ok {
		n.order = append(n.order, field)
	}
	n.fields[field] = append(n.fields[field], message)
}

// Append records every violation in vs.
func (n *Notification) Append(vs Violations) {
	for _, v := range vs {
		n.AddError(v.Message, v.Field)
	}
}

func (n *Notification) HasErrors() bool {
	return len(n.global) > 0 || len(n.order) > 0
}

// Messages returns the messages recorded for field.
func (n *Notification) Messages(field string) []string {
	return append([]string(nil), n.fields[field]...)
}

// Global returns the fieldless messages.
func (n *Notification) Global() []string {
	return append([]string(nil), n.global...)
}

// Errors returns a copy of the field-keyed messages.
func (n *Notification) Errors() map[string][]string {
	out := make(map[string][]string, len(n.fields))
	for field, msgs := range n.fields {
		out[field] = append([]string(nil), msgs...)
	}
	return out
}

// Violations flattens the notification: fields in first-seen order, then fieldless messages.
func (n *Notification) Violations() Violations {
	var out Violations
	for _, field := range n.order {
		for _, msg := range n.fields[field] {
			out = append(out, Violation{Field: field, Message: msg})
		}
	}
	for _, msg := range n.global {
		out = append(out, Violation{Message: msg})
	}
	return out
}

func (n *Notification) String() string {
	parts := make([]string, 0, len(n.order)+len(n.global))
	for _, field := range n.order {
		parts = append(parts, field+": "+strings.Join(n.fields[field], ", "))
	}
	parts = append(parts, n.global...)
	return strings.Join(parts, "; ")
}

// MarshalJSON renders [{"field": ["msg", ...]}, ..., "fieldless msg", ...].
func (n *Notification) MarshalJSON() ([]byte, error) {
	items := make([]interface{}, 0, len(n.order)+len(n.global))
	for _, field := range n.order {
		items = append(items, map[string][]string{field: n.fields[field]})
	}
	for _, msg := range n.global {
		items = append(items, msg)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
