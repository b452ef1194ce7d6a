package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Class is the failure classification driving cascade fallthrough.
type Class string

const (
	ClassUnknown        Class = "unknown"
	ClassOverloaded     Class = "overloaded"
	ClassRateLimited    Class = "rate-limited"
	ClassAuthFailed     Class = "auth-failed"
	ClassInvalidRequest Class = "invalid-request"
	ClassTimeout        Class = "timeout"
)

// Retryable reports whether the cascade may continue to the next tier
// after a failure of this class.
func (c Class) Retryable() bool {
	switch c {
	case ClassOverloaded, ClassRateLimited, ClassTimeout:
		return true
	default:
		return false
	}
}

func (c Class) String() string {
	return string(c)
}

// AdapterError wraps provider errors with status metadata. Transports
// populate Status (and optionally Kind) so classification is structural
// rather than message sniffing.
type AdapterError struct {
	Status int
	Kind   Class
	Err    error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "adapter error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("adapter error (status=%d)", e.Status)
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Classify maps an error to its failure class. Structured status codes on
// AdapterError win; message-substring matching remains as a migration
// bridge for providers that only surface text.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		if adapterErr.Kind != "" {
			return adapterErr.Kind
		}
		if class, ok := classifyStatus(adapterErr.Status); ok {
			return class
		}
	}

	return classifyMessage(err.Error())
}

// IsRetryable reports whether an error permits falling through to the
// next tier.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return Classify(err).Retryable()
}

func classifyStatus(status int) (Class, bool) {
	switch status {
	case 503:
		return ClassOverloaded, true
	case 429:
		return ClassRateLimited, true
	case 401:
		return ClassAuthFailed, true
	case 400:
		return ClassInvalidRequest, true
	}
	return ClassUnknown, false
}

func classifyMessage(msg string) Class {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "503"), strings.Contains(lower, "overload"):
		return ClassOverloaded
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate limit"):
		return ClassRateLimited
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"):
		return ClassAuthFailed
	case strings.Contains(lower, "400"):
		return ClassInvalidRequest
	default:
		return ClassUnknown
	}
}
