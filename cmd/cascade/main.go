package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zen-systems/cascade/pkg/adapter"
	"github.com/zen-systems/cascade/pkg/cascade"
	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/shape"
	"github.com/zen-systems/cascade/pkg/trace"
)

var (
	configFile string
	aliases    *config.ModelAliases
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cascade",
		Short: "Multi-tier LLM dispatcher with automatic fallback",
		Long: `Cascade sends a prompt to an ordered list of model tiers, cheap and
	fast first, escalating to slower and more capable tiers when a tier is
	overloaded, rate limited, or returns nothing.`,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to cascade config file")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(tiersCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var tierFlag string
	var timeoutMs int
	var shapeFile string
	var traceDir string

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt through the tier cascade",
		Long: `Dispatches the prompt tier by tier until one succeeds.

	Use --tier to start from a specific tier; the rest of the ladder still
	applies if it fails. Use --shape to constrain the output to a JSON
	Schema document. Use --timeout-ms to bound each tier attempt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return fmt.Errorf("failed to create adapters: %w", err)
			}

			var opts []cascade.Option
			if traceDir != "" {
				recorder, err := trace.NewRecorder(traceDir)
				if err != nil {
					return fmt.Errorf("failed to create trace recorder: %w", err)
				}
				opts = append(opts, cascade.WithRecorder(recorder))
			}

			dispatcher, err := cascade.FromConfig(cfg.Cascade, adapters, opts...)
			if err != nil {
				return err
			}

			req := cascade.Request{
				Prompt:    prompt,
				StartTier: tierFlag,
			}
			if timeoutMs > 0 {
				req.Timeout = time.Duration(timeoutMs) * time.Millisecond
			}
			if shapeFile != "" {
				data, err := os.ReadFile(shapeFile)
				if err != nil {
					return fmt.Errorf("failed to read shape file: %w", err)
				}
				s, err := shape.Parse(data)
				if err != nil {
					return err
				}
				req.Shape = s
			}

			result, err := dispatcher.Dispatch(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Answered by %s/%s\n", result.Tier, result.Model)
			fmt.Println(result.Text())
			return nil
		},
	}

	cmd.Flags().StringVar(&tierFlag, "tier", "", "preferred starting tier")
	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "per-attempt timeout in milliseconds")
	cmd.Flags().StringVar(&shapeFile, "shape", "", "JSON Schema file constraining the output")
	cmd.Flags().StringVar(&traceDir, "trace-dir", "", "directory for dispatch trace records")

	return cmd
}

func tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the configured tier order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tTIER\tADAPTER\tMODEL\tSTATUS")

			for i, tier := range cfg.Cascade.Tiers {
				status := "no key"
				if cfg.HasAdapter(tier.Adapter) || tier.Adapter == "mock" {
					status = "ready"
				}
				model := tier.Model
				if aliases != nil {
					model = aliases.Resolve(model)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, tier.Name, tier.Adapter, model, status)
			}

			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool
	var validateFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available adapters, models, and aliases",
		Long: `Lists adapters and their available models.

	Use --resolve to show aliases and what they resolve to.
	Use --validate to check all tier models resolve to valid models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if resolveFlag {
				return showAliases()
			}

			if validateFlag {
				return validateAliases(cfg)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")

			providers := aliases.ListProviders()
			if len(providers) == 0 {
				providers = []string{"anthropic", "deepseek", "google", "openai", "mock"}
			}

			for _, provider := range providers {
				models := formatList(aliases.GetProviderModels(provider))
				status := "no key"
				if cfg.HasAdapter(provider) || provider == "mock" {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, models, status)
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")
	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check all tier models resolve to valid models")

	return cmd
}

func showAliases() error {
	if aliases == nil {
		fmt.Println("No model aliases configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")

	aliasMap := aliases.ListAliases()
	var aliasNames []string
	for name := range aliasMap {
		aliasNames = append(aliasNames, name)
	}
	sort.Strings(aliasNames)

	for _, alias := range aliasNames {
		model := aliasMap[alias]
		provider := aliases.GetProviderForModel(model)
		fmt.Fprintf(w, "%s\t%s\t%s\n", alias, model, provider)
	}

	return w.Flush()
}

func validateAliases(cfg *config.Config) error {
	if aliases == nil {
		fmt.Println("No model aliases configured - nothing to validate.")
		return nil
	}

	errors := aliases.ValidateCascadeConfig(cfg.Cascade)
	if len(errors) == 0 {
		fmt.Println("All tier models are valid.")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Found %d validation errors:\n", len(errors))
	for _, err := range errors {
		fmt.Fprintf(os.Stderr, "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	result := items[0]
	for i := 1; i < len(items); i++ {
		result += ", " + items[i]
	}
	return result
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadWithCascadeFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	aliases, err = config.LoadAliasesWithFallback("configs/models.yaml")
	if err != nil || len(aliases.ListAliases()) == 0 {
		aliases = config.DefaultAliases()
	}

	return cfg, nil
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = a
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters["openai"] = a
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = a
	}

	if cfg.DeepSeekAPIKey != "" {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		adapters["deepseek"] = a
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}
