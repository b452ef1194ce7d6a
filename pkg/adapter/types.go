package adapter

import "github.com/zen-systems/cascade/pkg/artifact"

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Cost captures normalized cost estimates.
type Cost struct {
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	IsEstimate   bool    `json:"is_estimate"`
	PricingModel string  `json:"pricing_model,omitempty"`
}

// CallReport captures one tier attempt.
type CallReport struct {
	Tier          string `json:"tier"`
	Adapter       string `json:"adapter"`
	Model         string `json:"model"`
	Usage         Usage  `json:"usage"`
	Cost          Cost   `json:"cost"`
	LatencyMillis int64  `json:"latency_ms"`
	PromptBytes   int    `json:"prompt_bytes"`
	Class         string `json:"class,omitempty"`
	Empty         bool   `json:"empty,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Response wraps an adapter output and optional usage data.
type Response struct {
	Artifact *artifact.Artifact
	Usage    *Usage
}

// Text returns the response content, or "" for a nil response.
func (r *Response) Text() string {
	if r == nil || r.Artifact == nil {
		return ""
	}
	return r.Artifact.Content
}
