package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/CTAG07/wordgram/pkg/ngram"
	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"
)

const (
	backendMemory = "memory"
	backendSQLite = "sqlite"
)

// CorpusConfig holds the location of the training text.
type CorpusConfig struct {
	Dir       string `json:"dir"`
	Extension string `json:"extension"`
}

// ModelConfig holds the settings used to build the model.
type ModelConfig struct {
	Order   int    `json:"order"`
	Backend string `json:"backend"`
}

// GenerationConfig holds the settings used for every generated reply.
type GenerationConfig struct {
	NumWords    int     `json:"num_words"`
	Seed        uint64  `json:"seed"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	LogLevel   string            `json:"log_level"`
	Corpus     *CorpusConfig     `json:"corpus_config"`
	Model      *ModelConfig      `json:"model_config"`
	Generation *GenerationConfig `json:"generation_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Corpus: &CorpusConfig{
			Dir:       "lovecraft_corpus",
			Extension: ngram.DefaultCorpusExt,
		},
		Model: &ModelConfig{
			Order:   ngram.DefaultOrder,
			Backend: backendMemory,
		},
		Generation: &GenerationConfig{
			NumWords:    ngram.DefaultNumWords,
			Seed:        0,
			Temperature: 1.0,
			TopK:        0,
		},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	// Initialize with default configurations
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Warn instead of failing, the program can still run with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Sections missing from the file keep their defaults.
	defaults := DefaultConfig()
	if config.Corpus == nil {
		config.Corpus = defaults.Corpus
	}
	if config.Model == nil {
		config.Model = defaults.Model
	}
	if config.Generation == nil {
		config.Generation = defaults.Generation
	}

	return config, nil
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Corpus.Dir == "" {
		errs = append(errs, errors.New("corpus_config.dir must not be empty"))
	}
	if c.Model.Order < 2 {
		errs = append(errs, fmt.Errorf("model_config.order must be at least 2, got %d", c.Model.Order))
	}
	if c.Model.Backend != backendMemory && c.Model.Backend != backendSQLite {
		errs = append(errs, fmt.Errorf("model_config.backend must be %q or %q, got %q", backendMemory, backendSQLite, c.Model.Backend))
	}
	if c.Generation.NumWords < 0 {
		errs = append(errs, fmt.Errorf("generation_config.num_words must not be negative, got %d", c.Generation.NumWords))
	}
	if c.Generation.TopK < 0 {
		errs = append(errs, fmt.Errorf("generation_config.top_k must not be negative, got %d", c.Generation.TopK))
	}
	return errors.Join(errs...)
}
