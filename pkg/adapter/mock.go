package adapter

import (
	"context"
	"fmt"

	"github.com/zen-systems/cascade/pkg/artifact"
	"github.com/zen-systems/cascade/pkg/shape"
)

// MockAdapter returns deterministic responses for local runs and tests.
// Responses and errors can be scripted per model so multi-tier behavior is
// reproducible offline.
type MockAdapter struct {
	responses       map[string]string
	errs            map[string]error
	defaultResponse string
	Usage           *Usage

	// Calls records the models invoked, in order.
	Calls []string
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		errs:            make(map[string]error),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined
// per-model responses.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockAdapter{
		responses:       responses,
		errs:            make(map[string]error),
		defaultResponse: defaultResponse,
	}
}

// ScriptResponse sets the response returned for a model. An empty string
// scripts an empty (soft-failure) response.
func (a *MockAdapter) ScriptResponse(model, response string) {
	a.responses[model] = response
}

// ScriptError sets the error returned for a model.
func (a *MockAdapter) ScriptError(model string, err error) {
	a.errs[model] = err
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns the scripted result for the model, or a deterministic
// echo of the prompt.
func (a *MockAdapter) Generate(_ context.Context, model string, prompt string, s *shape.Shape) (*Response, error) {
	if model == "" {
		model = "mock-1"
	}
	a.Calls = append(a.Calls, model)

	if s != nil {
		// Exercise the translation path so scripted shape errors surface
		// the way they would against a real provider.
		if _, err := shape.ToJSONSchema(s); err != nil {
			return nil, err
		}
	}

	if err, ok := a.errs[model]; ok {
		return nil, err
	}
	if response, ok := a.responses[model]; ok {
		art := artifact.New(response, a.Name(), model, prompt)
		return &Response{Artifact: art, Usage: a.Usage}, nil
	}
	content := fmt.Sprintf("%s\n%s", a.defaultResponse, prompt)
	art := artifact.New(content, a.Name(), model, prompt)
	return &Response{Artifact: art, Usage: a.Usage}, nil
}
