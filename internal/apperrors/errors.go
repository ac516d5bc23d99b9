package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Validation failures are rejected before any mutation.
var ErrValidation = errors.New("validation error")

// ErrInvalidInterestInput indicates interest calculation inputs failed
// validation: principal must be positive, the rate non-negative, and the
// period positive.
var ErrInvalidInterestInput = errors.New("invalid interest calculation input")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that forbids the
// requested operation (wrong account status, already reversed, and so on).
var ErrConflict = errors.New("conflicting state")

// ErrInternal indicates an unexpected internal failure; the enclosing
// operation aborts with nothing partially committed.
var ErrInternal = errors.New("internal error")

// ErrForbidden indicates the caller is not permitted to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrCollaborator indicates an external collaborator (product or customer
// service) was unavailable; business terms are never silently defaulted.
var ErrCollaborator = errors.New("collaborator unavailable")
