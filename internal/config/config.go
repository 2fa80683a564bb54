// Package config loads the attrition pipeline configuration from YAML or
// JSON, with ${VAR} substitution and SCRUB_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/paveg/scrub/internal/validation"
)

// Config represents the attrition pipeline configuration
type Config struct {
	Data     DataConfig     `json:"data" yaml:"data"`
	Outputs  OutputsConfig  `json:"outputs" yaml:"outputs"`
	Modeling ModelingConfig `json:"modeling" yaml:"modeling"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// DataConfig locates the input
type DataConfig struct {
	InputPath string `json:"input_path" yaml:"input_path"`
}

// OutputsConfig names the output directories
type OutputsConfig struct {
	Dir       string `json:"dir" yaml:"dir"`               // EDA files and manifest
	ModelsDir string `json:"models_dir" yaml:"models_dir"` // model artifacts and explanation plot
	LogsDir   string `json:"logs_dir" yaml:"logs_dir"`     // pipeline.log
}

// ModelingConfig controls training
type ModelingConfig struct {
	RandomState int64   `json:"random_state" yaml:"random_state"`
	TestSize    float64 `json:"test_size" yaml:"test_size"`
	SMOTE       bool    `json:"smote" yaml:"smote"`   // rebalance the training split
	Optuna      bool    `json:"optuna" yaml:"optuna"` // run the hyperparameter search
	NTrials     int     `json:"n_trials" yaml:"n_trials"`
	ModelPrefix string  `json:"model_prefix" yaml:"model_prefix"`
	TrackingDir string  `json:"tracking_dir" yaml:"tracking_dir"` // empty disables run tracking
	MaxIter     int     `json:"max_iter" yaml:"max_iter"`
}

// LoggingConfig controls the pipeline logger
type LoggingConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

// Default configuration values
const (
	DefaultConfigPath  = "config.yaml"
	DefaultInputPath   = "data/WA_Fn-UseC_-HR-Employee-Attrition.csv"
	DefaultOutputsDir  = "outputs"
	DefaultModelsDir   = "models"
	DefaultLogsDir     = "logs"
	DefaultRandomState = 42
	DefaultTestSize    = 0.25
	DefaultNTrials     = 20
	DefaultModelPrefix = "attrition_model"
	DefaultMaxIter     = 200
	DefaultLogLevel    = "info"
	DefaultLogEncoding = "console"
)

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		Data: DataConfig{InputPath: DefaultInputPath},
		Outputs: OutputsConfig{
			Dir:       DefaultOutputsDir,
			ModelsDir: DefaultModelsDir,
			LogsDir:   DefaultLogsDir,
		},
		Modeling: ModelingConfig{
			RandomState: DefaultRandomState,
			TestSize:    DefaultTestSize,
			SMOTE:       true,
			Optuna:      true,
			NTrials:     DefaultNTrials,
			ModelPrefix: DefaultModelPrefix,
			MaxIter:     DefaultMaxIter,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel, Encoding: DefaultLogEncoding},
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.InputPath) == "" {
		return fmt.Errorf("data.input_path must be set")
	}
	if c.Outputs.Dir == "" || c.Outputs.ModelsDir == "" || c.Outputs.LogsDir == "" {
		return fmt.Errorf("outputs.dir, outputs.models_dir and outputs.logs_dir must be set")
	}
	return validation.NewCompoundValidator(
		validation.NewOpenRangeValidator("Config", "modeling.test_size", c.Modeling.TestSize, 0, 1),
		validation.NewRangeValidator("Config", "modeling.n_trials", float64(c.Modeling.NTrials), 1, 10000),
		validation.NewRangeValidator("Config", "modeling.max_iter", float64(c.Modeling.MaxIter), 1, 1e6),
		validation.NewOneOfValidator("Config", "logging.level", c.Logging.Level, "debug", "info", "warn", "error"),
		validation.NewOneOfValidator("Config", "logging.encoding", c.Logging.Encoding, "console", "json"),
	).Validate()
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	d := NewConfig()

	if c.Data.InputPath == "" {
		c.Data.InputPath = d.Data.InputPath
	}
	if c.Outputs.Dir == "" {
		c.Outputs.Dir = d.Outputs.Dir
	}
	if c.Outputs.ModelsDir == "" {
		c.Outputs.ModelsDir = d.Outputs.ModelsDir
	}
	if c.Outputs.LogsDir == "" {
		c.Outputs.LogsDir = d.Outputs.LogsDir
	}
	if c.Modeling.TestSize == 0 {
		c.Modeling.TestSize = d.Modeling.TestSize
	}
	if c.Modeling.NTrials == 0 {
		c.Modeling.NTrials = d.Modeling.NTrials
	}
	if c.Modeling.ModelPrefix == "" {
		c.Modeling.ModelPrefix = d.Modeling.ModelPrefix
	}
	if c.Modeling.MaxIter == 0 {
		c.Modeling.MaxIter = d.Modeling.MaxIter
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = d.Logging.Encoding
	}

	// Booleans and random_state are not defaulted here: an explicit false or
	// 0 cannot be told apart from unset. LoadFromFile starts from NewConfig
	// so absent keys keep their defaults.
	return c
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a .yaml, .yml or .json file.
// ${VAR} references are replaced with environment values before parsing.
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename) //nolint:gosec // path comes from the operator
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	content := []byte(substituteEnvVars(string(data)))
	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(content, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// Load reads filename, applies environment overrides and validates the result.
func Load(filename string) (Config, error) {
	config, err := LoadFromFile(filename)
	if err != nil {
		return Config{}, err
	}
	config = config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", filename, err)
	}
	return config, nil
}

// LoadFromEnv loads configuration from environment variables on top of the defaults
func LoadFromEnv() Config {
	return NewConfig().ApplyEnv()
}

// ApplyEnv returns a copy of c with SCRUB_* environment variables applied.
// Unparseable values are ignored.
func (c Config) ApplyEnv() Config {
	strVars := map[string]*string{
		"SCRUB_INPUT_PATH":   &c.Data.InputPath,
		"SCRUB_OUTPUTS_DIR":  &c.Outputs.Dir,
		"SCRUB_MODELS_DIR":   &c.Outputs.ModelsDir,
		"SCRUB_LOGS_DIR":     &c.Outputs.LogsDir,
		"SCRUB_MODEL_PREFIX": &c.Modeling.ModelPrefix,
		"SCRUB_TRACKING_DIR": &c.Modeling.TrackingDir,
		"SCRUB_LOG_LEVEL":    &c.Logging.Level,
		"SCRUB_LOG_ENCODING": &c.Logging.Encoding,
	}
	for name, dst := range strVars {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}

	if val := os.Getenv("SCRUB_RANDOM_STATE"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Modeling.RandomState = parsed
		}
	}
	if val := os.Getenv("SCRUB_TEST_SIZE"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			c.Modeling.TestSize = parsed
		}
	}
	if val := os.Getenv("SCRUB_N_TRIALS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.Modeling.NTrials = parsed
		}
	}
	if val := os.Getenv("SCRUB_MAX_ITER"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.Modeling.MaxIter = parsed
		}
	}
	if val := os.Getenv("SCRUB_SMOTE"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			c.Modeling.SMOTE = parsed
		}
	}
	if val := os.Getenv("SCRUB_OPTUNA"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			c.Modeling.Optuna = parsed
		}
	}
	return c
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
