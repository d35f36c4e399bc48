package routing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned for unknown lines or stations.
	ErrInvalidQuery = errors.New("invalid route query")
	// ErrNoPath is returned when the destination cannot be reached.
	ErrNoPath = errors.New("no path")
)

// NoPathReason explains why a search failed.
type NoPathReason string

const (
	// ReasonDisconnected means no chain of transfers links the two stations.
	ReasonDisconnected NoPathReason = "disconnected"
	// ReasonIncompatible means a chain exists but needs a transfer between
	// operators that do not honour each other.
	ReasonIncompatible NoPathReason = "incompatible operators"
)

// NoPathError is the detailed form of ErrNoPath.
type NoPathError struct {
	From   Endpoint
	To     Endpoint
	Reason NoPathReason
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from %s to %s: %s", e.From, e.To, e.Reason)
}

func (e *NoPathError) Unwrap() error {
	return ErrNoPath
}

func invalidQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
