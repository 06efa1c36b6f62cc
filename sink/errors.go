package sink

import "fmt"

// EventError identifies the structural event that aborted construction.
type EventError struct {
	Event string
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("sink: %s: %v", e.Event, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
