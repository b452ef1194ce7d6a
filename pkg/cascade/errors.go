package cascade

import (
	"fmt"
	"strings"

	"github.com/zen-systems/cascade/pkg/adapter"
)

// FatalError aborts the cascade: the failing tier's error class does not
// permit falling through to the next tier.
type FatalError struct {
	Tier  string
	Class adapter.Class
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("tier %s failed (%s): %v", e.Tier, e.Class, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// ExhaustedError means every tier was attempted and none produced output.
type ExhaustedError struct {
	Tiers []string
	Last  adapter.Class
}

func (e *ExhaustedError) Error() string {
	last := e.Last
	if last == "" {
		last = adapter.ClassUnknown
	}
	return fmt.Sprintf("all tiers exhausted (%s); last failure class %s",
		strings.Join(e.Tiers, ", "), last)
}
