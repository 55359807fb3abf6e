package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError marks malformed or rejected input (bad quantity text,
// non-positive amounts, payment exceeding outstanding balance, editing a
// frozen transaction). Surfaced before any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConstraintViolation marks an operation that would force a product's
// historical stock below zero at some timestamp. The whole transaction
// is aborted; the store stays unchanged.
type ConstraintViolation struct {
	Message string
}

func (e *ConstraintViolation) Error() string {
	return e.Message
}

func NewConstraintViolation(message string) error {
	return &ConstraintViolation{Message: message}
}

func IsConstraintViolation(err error) bool {
	var cv *ConstraintViolation
	return errors.As(err, &cv)
}
