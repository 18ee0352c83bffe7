package reviewguard

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable used by the pipeline. Nothing in the core reads
// ambient state; all thresholds and weights arrive through this struct.
type Config struct {
	// EnsembleWeights apply to the base models in fixed order:
	// random forest, gradient boosting, SVM. Must be non-negative and sum
	// to 1.
	EnsembleWeights [3]float64 `yaml:"ensembleWeights"`

	// PredictionThreshold is the fake-probability cutoff for IsFake.
	PredictionThreshold float64 `yaml:"predictionThreshold"`

	// DuplicateThreshold is the cosine-similarity cutoff for flagging
	// near-duplicate reviews.
	DuplicateThreshold float64 `yaml:"duplicateThreshold"`

	Vectorizer VectorizerConfig `yaml:"vectorizer"`

	// TestFraction is the held-out share of the stratified train/test split.
	TestFraction float64 `yaml:"testFraction"`

	// ModelPath is the directory holding versioned artifact bundles.
	ModelPath string `yaml:"modelPath"`

	// Seed fixes every random choice (splits, bootstrap sampling, SMO) so
	// training is reproducible.
	Seed int64 `yaml:"seed"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"logLevel"`
}

// VectorizerConfig controls the TF-IDF n-gram component.
type VectorizerConfig struct {
	MaxFeatures int     `yaml:"maxFeatures"` // Vocabulary cap.
	NgramMin    int     `yaml:"ngramMin"`
	NgramMax    int     `yaml:"ngramMax"`
	MinDF       int     `yaml:"minDF"`  // Drop n-grams seen in fewer documents.
	MaxDF       float64 `yaml:"maxDF"`  // Drop n-grams seen in more than this fraction.
}

// DefaultConfig mirrors the settings the ensemble was tuned with.
func DefaultConfig() Config {
	return Config{
		EnsembleWeights:     [3]float64{0.4, 0.35, 0.25},
		PredictionThreshold: 0.5,
		DuplicateThreshold:  0.9,
		Vectorizer: VectorizerConfig{
			MaxFeatures: 5000,
			NgramMin:    1,
			NgramMax:    3,
			MinDF:       1,
			MaxDF:       1.0,
		},
		ModelPath:    "data/models",
		TestFraction: 0.2,
		Seed:         42,
		LogLevel:     "info",
	}
}

// LoadConfig reads YAML configuration from path, applying defaults for any
// omitted field, and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with. Called at
// startup so bad weights or thresholds never reach a predict call.
func (c Config) Validate() error {
	sum := 0.0
	for i, w := range c.EnsembleWeights {
		if w < 0 {
			return fmt.Errorf("config: ensemble weight %d is negative (%v)", i, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("config: ensemble weights sum to %v, want 1.0", sum)
	}
	if c.PredictionThreshold < 0 || c.PredictionThreshold > 1 {
		return fmt.Errorf("config: prediction threshold %v outside [0,1]", c.PredictionThreshold)
	}
	if c.DuplicateThreshold < 0 || c.DuplicateThreshold > 1 {
		return fmt.Errorf("config: duplicate threshold %v outside [0,1]", c.DuplicateThreshold)
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("config: test fraction %v outside (0,1)", c.TestFraction)
	}
	if c.Vectorizer.MaxFeatures <= 0 {
		return fmt.Errorf("config: vectorizer max features must be positive")
	}
	if c.Vectorizer.NgramMin < 1 || c.Vectorizer.NgramMax < c.Vectorizer.NgramMin {
		return fmt.Errorf("config: bad n-gram range %d-%d", c.Vectorizer.NgramMin, c.Vectorizer.NgramMax)
	}
	if c.Vectorizer.MinDF < 1 {
		return fmt.Errorf("config: vectorizer min document frequency must be >= 1")
	}
	if c.Vectorizer.MaxDF <= 0 || c.Vectorizer.MaxDF > 1 {
		return fmt.Errorf("config: vectorizer max document frequency %v outside (0,1]", c.Vectorizer.MaxDF)
	}
	return nil
}

// NewLogger creates a console slog.Logger at the configured level.
func (c Config) NewLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromString(c.LogLevel),
	})
	return slog.New(handler)
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
