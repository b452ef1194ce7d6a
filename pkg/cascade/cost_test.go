package cascade

import (
	"math"
	"testing"

	"github.com/zen-systems/cascade/pkg/adapter"
	"github.com/zen-systems/cascade/pkg/config"
)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		"google": {
			"gemini-2.0-flash": {PromptPer1K: 0.10, CompletionPer1K: 0.40},
			"default":          {PromptPer1K: 0.05, CompletionPer1K: 0.20},
		},
	}
}

func TestEstimateCost(t *testing.T) {
	usage := adapter.Usage{PromptTokens: 2000, CompletionTokens: 500}
	cost, ok := estimateCost(testPricing(), "google", "gemini-2.0-flash", usage)
	if !ok {
		t.Fatalf("expected pricing match")
	}
	want := 0.2 + 0.2
	if math.Abs(cost.Amount-want) > 1e-9 {
		t.Fatalf("expected cost %f, got %f", want, cost.Amount)
	}
	if !cost.IsEstimate || cost.Currency != "USD" {
		t.Fatalf("unexpected cost metadata: %+v", cost)
	}
}

func TestEstimateCostDefaultFallback(t *testing.T) {
	usage := adapter.Usage{PromptTokens: 1000, CompletionTokens: 1000}
	cost, ok := estimateCost(testPricing(), "google", "gemini-9.9-experimental", usage)
	if !ok {
		t.Fatalf("expected default pricing match")
	}
	want := 0.05 + 0.20
	if math.Abs(cost.Amount-want) > 1e-9 {
		t.Fatalf("expected cost %f, got %f", want, cost.Amount)
	}
}

func TestEstimateCostUnknownAdapter(t *testing.T) {
	usage := adapter.Usage{PromptTokens: 1000}
	if _, ok := estimateCost(testPricing(), "openai", "gpt-4o", usage); ok {
		t.Fatalf("expected no pricing for unconfigured adapter")
	}
	if _, ok := estimateCost(nil, "google", "gemini-2.0-flash", usage); ok {
		t.Fatalf("expected no pricing with nil config")
	}
}

func TestNormalizeUsage(t *testing.T) {
	got := normalizeUsage(&adapter.Usage{PromptTokens: 10, CompletionTokens: 5})
	if got.TotalTokens != 15 {
		t.Fatalf("expected total 15, got %d", got.TotalTokens)
	}

	got = normalizeUsage(nil)
	if got.TotalTokens != 0 || got.PromptTokens != 0 {
		t.Fatalf("expected zero usage for nil input, got %+v", got)
	}

	got = normalizeUsage(&adapter.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 99})
	if got.TotalTokens != 99 {
		t.Fatalf("reported total should be preserved, got %d", got.TotalTokens)
	}
}

func TestAddUsage(t *testing.T) {
	sum := AddUsage(
		adapter.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
		adapter.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	)
	if sum.PromptTokens != 11 || sum.CompletionTokens != 22 || sum.TotalTokens != 33 {
		t.Fatalf("unexpected sum: %+v", sum)
	}
}
