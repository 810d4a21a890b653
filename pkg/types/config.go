// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litreview-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the source search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PerProviderMaxResults bounds how many results each provider may
	// return (default 20).
	PerProviderMaxResults int `json:"per_provider_max_results" yaml:"per_provider_max_results"`

	// EnableArxiv controls whether the arXiv provider is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableDuckDuckGo controls whether the web search provider is used.
	EnableDuckDuckGo bool `json:"enable_duckduckgo" yaml:"enable_duckduckgo"`
}

// AIConfig holds shared settings for stages that call a text-generation API.
type AIConfig struct {
	// Backend selects the generation backend: "anthropic" or "openai".
	Backend string `json:"backend" yaml:"backend"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Timeout is the per-call timeout for generation requests.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PipelineConfig groups all stage configurations for one review run.
type PipelineConfig struct {
	Search     SearchConfig `json:"search" yaml:"search"`
	Generation AIConfig     `json:"generation" yaml:"generation"`

	// TopN is the number of candidates the ranker selects (default 5).
	TopN int `json:"top_n" yaml:"top_n"`

	// MaxRefinementIterations caps total synthesis calls in the
	// refinement loop (default 2).
	MaxRefinementIterations int `json:"max_refinement_iterations" yaml:"max_refinement_iterations"`

	// PassThreshold is the minimum critique score that approves a draft
	// (default 8).
	PassThreshold int `json:"pass_threshold" yaml:"pass_threshold"`

	// ExtractionRetries is the number of retries per candidate on a
	// transient generation failure (default 2).
	ExtractionRetries int `json:"extraction_retries" yaml:"extraction_retries"`

	// ExtractionConcurrency bounds parallel extraction calls; 0 means one
	// worker per candidate.
	ExtractionConcurrency int `json:"extraction_concurrency" yaml:"extraction_concurrency"`
}

// DefaultPipelineConfig returns the documented defaults for a review run.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "litreview-engine/0.1",
			},
			PerProviderMaxResults: 20,
			EnableArxiv:           true,
			EnableDuckDuckGo:      true,
		},
		Generation: AIConfig{
			Backend: "anthropic",
			Model:   "claude-sonnet-4-5-20250929",
			Timeout: 120 * time.Second,
		},
		TopN:                    5,
		MaxRefinementIterations: 2,
		PassThreshold:           8,
		ExtractionRetries:       2,
	}
}
