package adapter

import (
	"context"

	"github.com/zen-systems/cascade/pkg/shape"
)

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Generate sends a prompt to the model and returns the response.
	// A non-nil shape is translated into the provider's native
	// structured-output directive; translation failures surface as
	// *shape.TranslationError.
	Generate(ctx context.Context, model string, prompt string, s *shape.Shape) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// AdapterInfo holds metadata about an adapter.
type AdapterInfo struct {
	Name   string
	Models []ModelInfo
}

// ModelInfo holds metadata about a model.
type ModelInfo struct {
	ID          string
	Description string
}
