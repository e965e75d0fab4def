package core

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the services. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrReportLessonNotFound = errors.New("reported lesson not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrPaymentNotVerified   = errors.New("payment not verified")
	ErrMissingIdentity      = errors.New("checkout session carries no customer email")
	ErrStoreUnavailable     = errors.New("record store unavailable")
	ErrProviderUnavailable  = errors.New("payment provider unavailable")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// normalizeEmail is applied to every email before it reaches the store.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
