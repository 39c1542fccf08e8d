package domain

import "errors"

// ErrInvalidField is returned when a field edit names an unknown field or
// carries a value that does not satisfy the field's rules.
var ErrInvalidField = errors.New("invalid field")
