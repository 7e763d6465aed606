package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// InfiniteTTL disables cache expiration when set as cache.ttl_seconds.
const InfiniteTTL = -1

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type CacheConfig struct {
	Path       string `toml:"path"`
	TTLSeconds int64  `toml:"ttl_seconds"`
}

type ServicesConfig struct {
	OLSBaseURL         string `toml:"ols_base_url"`
	OpenTargetsBaseURL string `toml:"opentargets_base_url"`
	EnrichrBaseURL     string `toml:"enrichr_base_url"`
	QuickGOBaseURL     string `toml:"quickgo_base_url"`
	MaxRetries         int    `toml:"max_retries"`
	RetryDelaySeconds  int    `toml:"retry_delay_seconds"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

type AnalysisConfig struct {
	MaxTargets      int     `toml:"max_targets"`
	ScoreThreshold  float64 `toml:"score_threshold"`
	PValueThreshold float64 `toml:"p_value_threshold"`
	MinOverlap      int     `toml:"min_overlap"`
	GeneSetLibrary  string  `toml:"gene_set_library"`
}

type NormalizerConfig struct {
	AnnotationsPath string `toml:"annotations_path"`
	BatchSize       int    `toml:"batch_size"`
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Cache      CacheConfig      `toml:"cache"`
	Services   ServicesConfig   `toml:"services"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Normalizer NormalizerConfig `toml:"normalizer"`
}

// Default returns the configuration used when no config file is present.
// Thresholds match the analysis defaults of the scoring pipeline.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4",
		},
		Cache: CacheConfig{
			Path:       ".cache/lookups.db",
			TTLSeconds: 86400,
		},
		Services: ServicesConfig{
			OLSBaseURL:         "https://www.ebi.ac.uk/ols/api",
			OpenTargetsBaseURL: "https://api.platform.opentargets.org/api/v4",
			EnrichrBaseURL:     "https://maayanlab.cloud/Enrichr",
			QuickGOBaseURL:     "https://www.ebi.ac.uk/QuickGO/services",
			MaxRetries:         3,
			RetryDelaySeconds:  1,
			TimeoutSeconds:     60,
		},
		Analysis: AnalysisConfig{
			MaxTargets:      25,
			ScoreThreshold:  0.2,
			PValueThreshold: 0.001,
			MinOverlap:      3,
			GeneSetLibrary:  "GO_Biological_Process_2023",
		},
		Normalizer: NormalizerConfig{
			AnnotationsPath: ".cache/hallmark_pathway_annotations.json",
			BatchSize:       100,
		},
	}
}

// Load reads a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config file if it exists, otherwise returns the
// defaults. Environment overrides are applied either way.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides config fields from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid CACHE_TTL value '%s', using %d\n", v, c.Cache.TTLSeconds)
		} else {
			c.Cache.TTLSeconds = ttl
		}
	}
}
