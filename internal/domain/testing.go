package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TestingCard is one entry of a project's client testing checklist.
type TestingCard struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Order       int
	IsCompleted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *TestingCard) ElementID() string { return c.ID }

func (c *TestingCard) SetOrder(order int) { c.Order = order }

func (c *TestingCard) Clone() *TestingCard {
	cp := *c
	return &cp
}

// ApplyField sets a single field from its string form.
func (c *TestingCard) ApplyField(field, value string) error {
	switch field {
	case FieldTitle:
		title := strings.TrimSpace(value)
		if title == "" {
			return fmt.Errorf("%w: title must not be empty", ErrInvalidField)
		}
		c.Title = title
	case FieldDescription:
		c.Description = value
	case FieldCompleted:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: is_completed %q is not a boolean", ErrInvalidField, value)
		}
		c.IsCompleted = b
	default:
		return fmt.Errorf("%w: unknown testing field %q", ErrInvalidField, field)
	}
	return nil
}
