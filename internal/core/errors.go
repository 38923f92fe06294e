package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrSync                = errors.New("sync error")
	ErrNotFound            = errors.New("not found")
)

// UpstreamError is returned by clients of external services.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the taxonomy sentinels.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstreamTimeout:
		return isTimeout(e.Err)
	case ErrUpstreamUnavailable:
		return !isTimeout(e.Err) && e.retryableStatus()
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func (e *UpstreamError) retryableStatus() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func NewUpstreamError(service string, status int, err error) error {
	return &UpstreamError{Service: service, StatusCode: status, Err: err}
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsTransient reports whether err is worth retrying: timeouts, network failures, 429 and 5xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrUpstreamUnavailable) ||
		isTimeout(err)
}

// IsUpstream reports whether err originates from an external dependency.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) || IsTransient(err)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
