package apperrors

import (
	"errors"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDomainRule indicates that an operation would violate a zakat domain rule
// (e.g. recording a payment against a cycle that is not due, or requesting a
// zakat budget item while assets sit below nisab).
var ErrDomainRule = errors.New("domain rule violation")

// ErrPersistence indicates a storage or serialization failure.
var ErrPersistence = errors.New("persistence error")

// ErrExternalService indicates a failure in an external collaborator
// (the islamic calendar provider or the budget store).
var ErrExternalService = errors.New("external service error")
