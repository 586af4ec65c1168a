// Package config loads the suite file that drives a benchmark run and the
// collaborator settings for search and generation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/oracle"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/schema"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

const DefaultPath = "safe.yaml"

type Config struct {
	Output          string         `yaml:"output"`
	Pair            string         `yaml:"pair"`
	Scales          types.ScaleSet `yaml:"scales"`
	Trials          int            `yaml:"trials"`
	Seed            uint64         `yaml:"seed"`
	Probe           string         `yaml:"probe"`
	Tolerance       Tolerance      `yaml:"tolerance"`
	Report          string         `yaml:"report"`
	MetricsTextfile string         `yaml:"metrics_textfile"`
	Search          Search         `yaml:"search"`
	Generation      Generation     `yaml:"generation"`
}

// Tolerance selects a closeness mode. A set Abs overrides the mode's absolute
// tolerance; 0 demands exact equality.
type Tolerance struct {
	Mode string   `yaml:"mode"`
	Abs  *float64 `yaml:"abs"`
	Rel  float64  `yaml:"rel"`
}

// Search configures the question-site search collaborator.
type Search struct {
	BaseURL    string `yaml:"base_url"`
	Site       string `yaml:"site"`
	APIKey     string `yaml:"api_key"`
	DefaultTag string `yaml:"default_tag"`
}

// Generation configures the language-model collaborator.
type Generation struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

func DefaultConfig() Config {
	return Config{
		Output: "output.xlsx",
		Pair:   "rowprod",
		Scales: types.DefaultScales(),
		Trials: 10,
		Probe:  "rss",
		Tolerance: Tolerance{
			Mode: oracle.ModeDefault,
		},
		Search: Search{
			BaseURL:    "https://api.stackexchange.com/2.3",
			Site:       "stackoverflow",
			DefaultTag: "python",
		},
		Generation: Generation{
			Model:     "gpt-4o",
			MaxTokens: 2000,
		},
	}
}

func LoadConfig(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Load reads path over the defaults after checking it against the suite
// schema, then fills empty API keys from the environment.
func Load(path string) (Config, error) {
	var doc map[string]any
	if err := LoadConfig(path, &doc); err != nil {
		return Config{}, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	errs, err := schema.ValidateBuiltin(schema.Suite, doc)
	if err != nil {
		return Config{}, err
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config %s invalid: %v", path, errs)
	}
	cfg := DefaultConfig()
	if err := LoadConfig(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// LoadOrDefault is Load when path exists and DefaultConfig otherwise.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			return cfg, nil
		}
		return Config{}, err
	}
	return Load(path)
}

func (c *Config) ApplyEnv() {
	if c.Generation.APIKey == "" {
		c.Generation.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv("STACKEXCHANGE_KEY")
	}
}

func (c Config) Validate() error {
	if err := c.Scales.Validate(); err != nil {
		return fmt.Errorf("scales: %w", err)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if _, err := c.ResolveTolerance(); err != nil {
		return err
	}
	return nil
}

// ResolveTolerance turns the configured mode into a tolerance; an explicit
// abs overrides the mode's value.
func (c Config) ResolveTolerance() (oracle.Tolerance, error) {
	tol, err := oracle.ToleranceForMode(c.Tolerance.Mode)
	if err != nil {
		return oracle.Tolerance{}, err
	}
	if c.Tolerance.Abs != nil {
		if *c.Tolerance.Abs < 0 {
			return oracle.Tolerance{}, fmt.Errorf("tolerance abs must not be negative")
		}
		tol.Abs = *c.Tolerance.Abs
	}
	if c.Tolerance.Rel < 0 {
		return oracle.Tolerance{}, fmt.Errorf("tolerance rel must not be negative")
	}
	tol.Rel = c.Tolerance.Rel
	return tol, nil
}

const DefaultYAML = `# SaFE benchmark suite
output: output.xlsx
pair: rowprod
scales: [10, 100, 1000, 10000]
trials: 10
probe: rss
tolerance:
  mode: default
search:
  site: stackoverflow
  default_tag: python
generation:
  model: gpt-4o
  max_tokens: 2000
`
