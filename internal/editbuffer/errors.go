package editbuffer

import (
	"errors"

	"github.com/alexanderramin/waypoint/internal/domain"
)

var (
	// ErrPublishInFlight rejects publishes and mutations while a publish runs.
	ErrPublishInFlight = errors.New("publish in progress")
	// ErrIndexOutOfRange is returned by Reorder for indices outside the list.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownItem is returned when an ID is not in the buffer.
	ErrUnknownItem = errors.New("unknown item")
	// ErrInvalidField is returned for rejected field edits and titles.
	ErrInvalidField = domain.ErrInvalidField
)
