package booking

import (
	"errors"
	"fmt"
	"terena/src/types"
)

var (
	ErrNotFound        = errors.New("booking or venue not found")
	ErrConflict        = errors.New("this time slot is already booked")
	ErrAlreadyPaid     = errors.New("booking is already paid")
	ErrNotPaid         = errors.New("only paid bookings can be refunded")
	ErrAlreadyRefunded = errors.New("booking is already refunded")
	ErrGateway         = errors.New("payment gateway error")
	ErrInvalidInterval = errors.New("end time must be after start time")
	ErrInvalidAmount   = errors.New("refund amount must be positive and not exceed the total price")

	// ErrInvalidTransition is the errors.Is target for every
	// InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// InvalidTransitionError names the current and attempted state of a rejected
// transition. The booking is left unmodified.
type InvalidTransitionError struct {
	From types.BookingStatus
	To   types.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func invalidTransition(from, to types.BookingStatus) error {
	return &InvalidTransitionError{From: from, To: to}
}
