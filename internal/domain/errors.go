package domain

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for feed operations
var (
	// ErrAuthRequired indicates the upstream needs a logged-in session
	ErrAuthRequired = errors.New("login required")

	// ErrServerOffline indicates the upstream API is unreachable
	ErrServerOffline = errors.New("upstream is unreachable")

	// ErrUnknownTab indicates a tab name that has no service
	ErrUnknownTab = errors.New("unknown tab")

	// ErrNoActiveTab indicates FetchMore was called before any Refresh
	ErrNoActiveTab = errors.New("no active tab")

	// ErrRefreshStale indicates a result was discarded because a newer refresh started
	ErrRefreshStale = errors.New("result discarded by a newer refresh")
)

// CodeNotLoggedIn is the envelope code returned when the session is missing.
const CodeNotLoggedIn = -101

// APIError is a non-zero code in the upstream JSON envelope.
type APIError struct {
	Code    int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d (%s)", e.Code, e.Path)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Code, e.Message, e.Path)
}

// Is lets errors.Is(err, ErrAuthRequired) match a not-logged-in envelope.
func (e *APIError) Is(target error) bool {
	return target == ErrAuthRequired && e.Code == CodeNotLoggedIn
}

// IsCanceled reports whether err comes from an aborted context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
