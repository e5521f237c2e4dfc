// Package drive wraps the Google Drive v3 API with the small surface this
// application needs: folder search and creation by name+parent, file content
// upload with a public-read grant, rename, and delete. Errors are classified
// into sentinels so callers can branch with errors.Is without importing the
// Google API packages.
package drive

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for remote call classification.
// Use errors.Is(err, drive.ErrNotFound) to check.
var (
	ErrUnauthorized = errors.New("drive: unauthorized")
	ErrForbidden    = errors.New("drive: forbidden")
	ErrNotFound     = errors.New("drive: not found")
	ErrConflict     = errors.New("drive: conflict")
	ErrUnavailable  = errors.New("drive: service unavailable")
)

// APIError wraps a sentinel error with the HTTP status code and the API
// error message for diagnostics.
type APIError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drive: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrUnavailable
	default:
		if code >= http.StatusInternalServerError {
			return ErrUnavailable
		}

		return nil
	}
}

// mapError converts a Google API client error into an APIError wrapping the
// matching sentinel. Network-level failures map to ErrUnavailable so the
// caller's fallback policy treats an unreachable provider the same as a 5xx.
// Context cancellation passes through unchanged.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("drive: %s: %w", op, err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		sentinel := classifyStatus(gErr.Code)
		if sentinel == nil {
			return fmt.Errorf("drive: %s: %w", op, err)
		}

		return fmt.Errorf("drive: %s: %w", op, &APIError{
			StatusCode: gErr.Code,
			Message:    gErr.Message,
			Err:        sentinel,
		})
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("drive: %s: %w: %v", op, ErrUnavailable, err)
	}

	return fmt.Errorf("drive: %s: %w: %v", op, ErrUnavailable, err)
}
