package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("missing or malformed input")
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrForbidden       = errors.New("caller does not have permission for this operation")
	ErrNotFound        = errors.New("requested resource does not exist")
	ErrConflict        = errors.New("operation conflicts with current state")
	ErrHireFailed      = errors.New("hire could not be completed")
)

var (
	ErrNoGig  = fmt.Errorf("%w: gig", ErrNotFound)
	ErrNoBid  = fmt.Errorf("%w: bid", ErrNotFound)
	ErrNoUser = fmt.Errorf("%w: user", ErrNotFound)

	ErrGigAssigned   = fmt.Errorf("%w: gig is already assigned", ErrConflict)
	ErrBidNotPending = fmt.Errorf("%w: bid is no longer pending", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email is already registered", ErrConflict)
)
