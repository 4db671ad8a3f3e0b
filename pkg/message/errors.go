package message

import "errors"

// ErrNilValue is returned when an adapter is asked to describe or encode a nil value.
var ErrNilValue = errors.New("message value cannot be nil")
