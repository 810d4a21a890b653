// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview-engine/internal/genai"
	"github.com/pdiddy/litreview-engine/internal/pipeline"
	"github.com/pdiddy/litreview-engine/internal/runstore"
	"github.com/pdiddy/litreview-engine/internal/search"
	"github.com/pdiddy/litreview-engine/internal/synthesis"
	"github.com/pdiddy/litreview-engine/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review [query...]",
	Short: "Draft a literature review for a research topic",
	Long: `Review runs the full pipeline for one query: search arXiv and the web,
select the most relevant candidates, extract findings from each, and
synthesize a cited review refined against automated critique.

The finished run is saved to the run database unless --no-save is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("backend", "", "generation backend: anthropic or openai (default from config)")
	reviewCmd.Flags().String("model", "", "model identifier (default from config)")
	reviewCmd.Flags().Int("top-n", 0, "number of candidates to select")
	reviewCmd.Flags().Int("max-iterations", 0, "cap on synthesis iterations")
	reviewCmd.Flags().Int("pass-threshold", 0, "minimum critique score that approves a draft")
	reviewCmd.Flags().Int("max-results", 0, "per-provider search result cap")
	reviewCmd.Flags().Bool("no-arxiv", false, "disable the arXiv provider")
	reviewCmd.Flags().Bool("no-web", false, "disable the web search provider")
	reviewCmd.Flags().Bool("json", false, "print the run as JSON instead of Markdown")
	reviewCmd.Flags().Bool("no-save", false, "do not persist the run to the database")
	reviewCmd.Flags().StringP("output", "o", "", "write the review to a file instead of stdout")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := reviewConfig(cmd)
	if err != nil {
		return err
	}

	gen, err := buildGenerator(cfg.Generation)
	if err != nil {
		return err
	}

	providers := buildProviders(cfg.Search)
	if len(providers) == 0 {
		return fmt.Errorf("all search providers are disabled")
	}

	o := pipeline.New(gen, providers, cfg, os.Stderr)
	res, err := o.Run(cmd.Context(), query)
	if err != nil {
		return err
	}

	run := types.ReviewRun{
		Query:      query,
		Iterations: res.Iterations,
		Candidates: res.Candidates,
		Review:     res.Review,
		Critique:   res.Critique,
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
		dbPath, _ := rootCmd.PersistentFlags().GetString("store")
		store, err := runstore.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening run store: %w", err)
		}
		defer store.Close()

		run, err = store.Save(run)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved run %s\n", run.ID)
	}

	var rendered string
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding run: %w", err)
		}
		rendered = string(data) + "\n"
	} else {
		rendered = synthesis.RenderMarkdown(res.Review)
	}

	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("writing review: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote review to %s\n", outPath)
	} else {
		fmt.Print(rendered)
	}

	if !res.Critique.Pass {
		fmt.Fprintf(os.Stderr, "Note: review did not pass critique (score %d) after %d iteration(s)\n",
			res.Critique.Score, res.Iterations)
	}
	return nil
}

// reviewConfig layers the config file, then flag overrides, over the
// defaults.
func reviewConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetString("generation.backend"); v != "" {
		cfg.Generation.Backend = v
	}
	if v := viper.GetString("generation.model"); v != "" {
		cfg.Generation.Model = v
	}
	if v := viper.GetDuration("generation.timeout"); v > 0 {
		cfg.Generation.Timeout = v
	}
	if v := viper.GetInt("top_n"); v > 0 {
		cfg.TopN = v
	}
	if v := viper.GetInt("max_refinement_iterations"); v > 0 {
		cfg.MaxRefinementIterations = v
	}
	if v := viper.GetInt("pass_threshold"); v > 0 {
		cfg.PassThreshold = v
	}
	if v := viper.GetInt("search.per_provider_max_results"); v > 0 {
		cfg.Search.PerProviderMaxResults = v
	}

	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Generation.Backend = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Generation.Model = v
	}
	if v, _ := cmd.Flags().GetInt("top-n"); v > 0 {
		cfg.TopN = v
	}
	if v, _ := cmd.Flags().GetInt("max-iterations"); v > 0 {
		cfg.MaxRefinementIterations = v
	}
	if v, _ := cmd.Flags().GetInt("pass-threshold"); v > 0 {
		cfg.PassThreshold = v
	}
	if v, _ := cmd.Flags().GetInt("max-results"); v > 0 {
		cfg.Search.PerProviderMaxResults = v
	}
	if v, _ := cmd.Flags().GetBool("no-arxiv"); v {
		cfg.Search.EnableArxiv = false
	}
	if v, _ := cmd.Flags().GetBool("no-web"); v {
		cfg.Search.EnableDuckDuckGo = false
	}

	switch cfg.Generation.Backend {
	case "anthropic":
		cfg.Generation.APIKey = secretDefault("anthropic-api-key", cfg.Generation.APIKey)
	case "openai":
		cfg.Generation.APIKey = secretDefault("openai-api-key", cfg.Generation.APIKey)
		cfg.Generation.BaseURL = secretDefault("openai-base-url", cfg.Generation.BaseURL)
	default:
		return cfg, fmt.Errorf("unknown backend %q (want anthropic or openai)", cfg.Generation.Backend)
	}
	if cfg.Generation.APIKey == "" {
		return cfg, fmt.Errorf("no API key for backend %s (put it in .secrets/)", cfg.Generation.Backend)
	}
	return cfg, nil
}

func buildGenerator(cfg types.AIConfig) (genai.Generator, error) {
	switch cfg.Backend {
	case "anthropic":
		return &genai.AnthropicBackend{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Client: &http.Client{Timeout: cfg.Timeout},
		}, nil
	case "openai":
		return genai.NewOpenAIBackend(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func buildProviders(cfg types.SearchConfig) []search.Provider {
	client := &http.Client{Timeout: cfg.Timeout}
	if client.Timeout == 0 {
		client.Timeout = 30 * time.Second
	}

	var providers []search.Provider
	if cfg.EnableArxiv {
		providers = append(providers, &search.ArxivProvider{Client: client})
	}
	if cfg.EnableDuckDuckGo {
		providers = append(providers, &search.DuckDuckGoProvider{Client: client})
	}
	return providers
}
