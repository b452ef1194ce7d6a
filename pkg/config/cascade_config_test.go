package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCascadeConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  CascadeConfig
		ok   bool
	}{
		{
			name: "valid",
			cfg: CascadeConfig{Tiers: []TierTarget{
				{Name: "a", Adapter: "mock", Model: "mock-1"},
				{Name: "b", Adapter: "mock", Model: "mock-1"},
			}},
			ok: true,
		},
		{name: "no tiers", cfg: CascadeConfig{}, ok: false},
		{
			name: "duplicate names",
			cfg: CascadeConfig{Tiers: []TierTarget{
				{Name: "a", Adapter: "mock", Model: "mock-1"},
				{Name: "a", Adapter: "mock", Model: "mock-1"},
			}},
			ok: false,
		},
		{
			name: "missing adapter",
			cfg:  CascadeConfig{Tiers: []TierTarget{{Name: "a", Model: "mock-1"}}},
			ok:   false,
		},
		{
			name: "missing model",
			cfg:  CascadeConfig{Tiers: []TierTarget{{Name: "a", Adapter: "mock"}}},
			ok:   false,
		},
		{
			name: "negative timeout",
			cfg: CascadeConfig{
				Tiers:     []TierTarget{{Name: "a", Adapter: "mock", Model: "mock-1"}},
				TimeoutMs: -1,
			},
			ok: false,
		},
	}

	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadCascadeConfigWithPricing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascade.yaml")
	content := `
tiers:
  - name: flash
    adapter: google
    model: gemini-2.0-flash
pricing:
  google:
    gemini-2.0-flash:
      prompt_per_1k: 0.1
      completion_per_1k: 0.4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write cascade file: %v", err)
	}

	cfg, err := LoadCascadeConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	entry := cfg.Pricing["google"]["gemini-2.0-flash"]
	if entry.PromptPer1K != 0.1 || entry.CompletionPer1K != 0.4 {
		t.Fatalf("unexpected pricing: %+v", entry)
	}
}

func TestLoadCascadeConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascade.yaml")
	if err := os.WriteFile(path, []byte("tiers: []"), 0644); err != nil {
		t.Fatalf("write cascade file: %v", err)
	}
	if _, err := LoadCascadeConfig(path); err == nil {
		t.Fatalf("expected error for empty tier list")
	}
}

func TestDefaultCascadeConfigIsValid(t *testing.T) {
	cfg := DefaultCascadeConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
