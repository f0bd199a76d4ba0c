package handler

import (
	"errors"
	"fmt"
)

// UserError is an error whose message is meant for the invoking user.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

var _ error = (*UserError)(nil)

// Userf builds a UserError with a formatted message.
func Userf(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

func asUserError(err error, target **UserError) bool {
	return errors.As(err, target)
}

// StorageLimitError indicates a sound upload would exceed the guild's
// storage allowance.
type StorageLimitError struct {
	Requested int64
	Current   int64
	Max       int64
}

func (e *StorageLimitError) Error() string {
	return fmt.Sprintf("storage limit exceeded: requested %d, current %d, max %d", e.Requested, e.Current, e.Max)
}

var _ error = (*StorageLimitError)(nil)
