package domain

import "errors"

// kindError is a sentinel that belongs to a broader kind, so errors.Is
// matches both the specific error and every kind above it.
type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.parent }

func newKind(msg string, parent error) error {
	return &kindError{msg: msg, parent: parent}
}

var (
	// ErrContainer is the kind shared by every container failure.
	ErrContainer = errors.New("container error")
	// ErrContainerFull indicates an add would exceed the container capacity.
	ErrContainerFull = newKind("container is full", ErrContainer)
	// ErrInvalidAmount indicates a negative or NaN quantity.
	ErrInvalidAmount = newKind("amount must be a non-negative number", ErrContainer)
	// ErrInsufficientQuantity indicates a consume would drive the quantity below zero.
	ErrInsufficientQuantity = newKind("insufficient quantity in container", ErrContainer)

	// ErrNoWater indicates there is not enough water for the requested operation.
	ErrNoWater = newKind("not enough water", ErrInsufficientQuantity)
	// ErrNoBeans indicates there are not enough beans for the requested operation.
	ErrNoBeans = newKind("not enough beans", ErrInsufficientQuantity)

	// ErrDescaleNeeded indicates the machine must be descaled before it can make coffee.
	ErrDescaleNeeded = errors.New("descale needed")

	// ErrInvalidSnapshot indicates a stored snapshot cannot describe a valid machine.
	ErrInvalidSnapshot = errors.New("invalid machine snapshot")
)
