package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ForbiddenError represents an ownership violation. It never carries
// resource contents so a denied caller learns nothing about the record.
type ForbiddenError struct{}

func (e ForbiddenError) Error() string {
	return "unauthorized access"
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

// ExpiredError is returned when a deletion record's undo window has
// passed. Distinct from NotFoundError so callers can explain why the
// undo is unavailable.
type ExpiredError struct{}

func (e ExpiredError) Error() string {
	return "undo window has expired"
}

func (e ExpiredError) Is(target error) bool {
	_, ok := target.(ExpiredError)
	if ok {
		return true
	}
	_, ok = target.(*ExpiredError)
	return ok
}

// Sentinel errors for errors.Is matching.
var (
	ErrNotFound  = NotFoundError{}
	ErrForbidden = ForbiddenError{}
	ErrExpired   = ExpiredError{}
)
