// Package contact holds messages submitted through the contact and
// recruitment forms.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing or invalid field: " + e.Field
}

// Message is a submitted contact form entry.
type Message struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// Validate checks the required fields. Name, email and message body are
// mandatory; phone and subject are optional.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	email := strings.TrimSpace(m.Email)
	if email == "" || !strings.Contains(email, "@") {
		return &ValidationError{Field: "email"}
	}
	if strings.TrimSpace(m.Message) == "" {
		return &ValidationError{Field: "message"}
	}
	return nil
}

// ErrNotFound is returned when a requested message does not exist.
var ErrNotFound = errors.New("message not found")

// Repository defines persistence operations for contact messages.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	List(ctx context.Context) ([]Message, error)
}
