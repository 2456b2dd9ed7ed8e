package tracking

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a reference to a room or status that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InUseError blocks deleting a status that is still some room's current status.
type InUseError struct {
	StatusID string
	Name     string
	Rooms    int
}

func (e InUseError) Error() string {
	label := e.StatusID
	if e.Name != "" {
		label = fmt.Sprintf("%q", e.Name)
	}
	if e.Rooms <= 0 {
		return fmt.Sprintf("status %s is the current status of at least one room", label)
	}
	return fmt.Sprintf("status %s is the current status of %d room(s)", label, e.Rooms)
}

// TransactionError reports that the atomic transition write did not commit.
// No partial state is visible when it is returned.
type TransactionError struct {
	Op  string
	Err error
}

func (e TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Err)
}

func (e TransactionError) Unwrap() error { return e.Err }

// ErrRecordNotFound is returned by Store and Tx implementations for missing rows.
var ErrRecordNotFound = errors.New("record not found")

func isDomainError(err error) bool {
	var (
		ve ValidationError
		ne NotFoundError
		ie InUseError
	)
	return errors.As(err, &ve) || errors.As(err, &ne) || errors.As(err, &ie)
}
