package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CascadeConfig holds the ordered tier list and dispatch defaults.
type CascadeConfig struct {
	Tiers     []TierTarget  `yaml:"tiers"`
	TimeoutMs int           `yaml:"timeout_ms,omitempty"`
	Pricing   PricingConfig `yaml:"pricing,omitempty"`
}

// TierTarget names one tier in the cascade's preference order.
type TierTarget struct {
	Name    string `yaml:"name"`
	Adapter string `yaml:"adapter"`
	Model   string `yaml:"model"`
}

// PricingConfig maps adapter -> model -> pricing.
type PricingConfig map[string]map[string]ModelPricing

// ModelPricing defines per-1k token pricing.
type ModelPricing struct {
	PromptPer1K     float64 `yaml:"prompt_per_1k,omitempty"`
	CompletionPer1K float64 `yaml:"completion_per_1k,omitempty"`
}

// LoadCascadeConfig reads cascade configuration from a YAML file.
func LoadCascadeConfig(path string) (*CascadeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CascadeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultCascadeConfig returns the default tier ladder: fast and cheap
// first, slow and capable last.
func DefaultCascadeConfig() *CascadeConfig {
	return &CascadeConfig{
		Tiers: []TierTarget{
			{Name: "flash-lite", Adapter: "google", Model: "gemini-2.0-flash-lite"},
			{Name: "flash", Adapter: "google", Model: "gemini-2.0-flash"},
			{Name: "pro", Adapter: "google", Model: "gemini-2.0-pro"},
		},
	}
}

// Validate checks the tier list for empty entries and duplicate names.
func (c *CascadeConfig) Validate() error {
	if len(c.Tiers) == 0 {
		return fmt.Errorf("cascade config declares no tiers")
	}
	seen := make(map[string]bool, len(c.Tiers))
	for i, tier := range c.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("tier %d missing name", i)
		}
		if tier.Adapter == "" {
			return fmt.Errorf("tier %s missing adapter", tier.Name)
		}
		if tier.Model == "" {
			return fmt.Errorf("tier %s missing model", tier.Name)
		}
		if seen[tier.Name] {
			return fmt.Errorf("tier %s declared twice", tier.Name)
		}
		seen[tier.Name] = true
	}
	if c.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must not be negative")
	}
	return nil
}

// TierNames returns the configured tier names in order.
func (c *CascadeConfig) TierNames() []string {
	names := make([]string, 0, len(c.Tiers))
	for _, tier := range c.Tiers {
		names = append(names, tier.Name)
	}
	return names
}
