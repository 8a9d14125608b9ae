// Package config loads uitree settings.
//
// Priority: defaults → .env file → YAML file → environment (UITREE_ prefix).
// Command-line flags are applied on top by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mj1618/uitree/internal/logging"
	"github.com/mj1618/uitree/internal/uitree"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes every environment override, e.g. UITREE_REDUCE_LEVEL.
const DefaultEnvPrefix = "UITREE"

// Config is the complete uitree configuration.
type Config struct {
	Reduce ReduceConfig   `yaml:"reduce" env:"REDUCE"`
	Log    logging.Config `yaml:"log"    env:"LOG"`
	Server ServerConfig   `yaml:"server" env:"SERVER"`
	// Hooks maps an app id to resource ids whose subtrees are dropped
	// instead of running the default overlap removal.
	Hooks map[string][]string `yaml:"hooks"`
}

// ReduceConfig holds the reduction defaults.
type ReduceConfig struct {
	Level           int     `yaml:"level"             env:"LEVEL"`
	StrType         string  `yaml:"str_type"          env:"STR_TYPE"`
	RemoveSystemBar bool    `yaml:"remove_system_bar" env:"REMOVE_SYSTEM_BAR"`
	UseBounds       bool    `yaml:"use_bounds"        env:"USE_BOUNDS"`
	MergeSwitch     bool    `yaml:"merge_switch"      env:"MERGE_SWITCH"`
	DedupThreshold  float64 `yaml:"dedup_threshold"   env:"DEDUP_THRESHOLD"`
	MergeThreshold  float64 `yaml:"merge_threshold"   env:"MERGE_THRESHOLD"`
	NameWords       int     `yaml:"name_words"        env:"NAME_WORDS"`
	TokenModel      string  `yaml:"token_model"       env:"TOKEN_MODEL"`
	Jobs            int     `yaml:"jobs"              env:"JOBS"`
}

// ServerConfig configures `uitree serve`.
type ServerConfig struct {
	Transport   string        `yaml:"transport"    env:"TRANSPORT"` // stdio or streamable-http
	Port        int           `yaml:"port"         env:"PORT"`
	SessionTTL  time.Duration `yaml:"session_ttl"  env:"SESSION_TTL"`
	MaxSessions int           `yaml:"max_sessions" env:"MAX_SESSIONS"`
	MetricsAddr string        `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Reduce: ReduceConfig{
			StrType:        "json",
			DedupThreshold: uitree.DefaultDedupThreshold,
			MergeThreshold: uitree.DefaultMergeThreshold,
			NameWords:      uitree.DefaultNameWords,
			TokenModel:     "gpt-4o",
			Jobs:           4,
		},
		Log: logging.Config{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Transport:   "stdio",
			Port:        8765,
			SessionTTL:  10 * time.Minute,
			MaxSessions: 256,
		},
	}
}

// Loader loads a Config (builder style).
type Loader struct {
	configPath string
	dotEnvPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the default env prefix and validation.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  DefaultEnvPrefix,
		validators: []func(*Config) error{(*Config).Validate},
	}
}

// WithConfigPath sets the YAML file. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithDotEnv sets a .env file whose variables are loaded into the process
// environment first. Variables already set are not overridden.
func (l *Loader) WithDotEnv(path string) *Loader {
	l.dotEnvPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a validator run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.dotEnvPath != "" {
		if err := godotenv.Load(l.dotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", l.dotEnvPath, err)
		}
	}

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// setFieldsFromEnv walks struct fields carrying an env tag, recursing into
// nested structs with the tag appended to the prefix.
func setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}
		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []string
	if c.Reduce.Level < 0 || c.Reduce.Level > uitree.MaxLevel {
		errs = append(errs, fmt.Sprintf("reduce.level must be between 0 and %d", uitree.MaxLevel))
	}
	if _, err := uitree.ParseFormat(c.Reduce.StrType); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Reduce.NameWords < 0 {
		errs = append(errs, "reduce.name_words must not be negative")
	}
	if c.Reduce.Jobs < 1 {
		errs = append(errs, "reduce.jobs must be positive")
	}
	switch c.Server.Transport {
	case "stdio", "streamable-http":
	default:
		errs = append(errs, fmt.Sprintf("server.transport %q must be stdio or streamable-http", c.Server.Transport))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "invalid server port")
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, "server.session_ttl must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Options converts the reduce section and hooks into reducer options.
func (c *Config) Options() uitree.Options {
	return uitree.Options{
		Level:           c.Reduce.Level,
		StrType:         c.Reduce.StrType,
		RemoveSystemBar: c.Reduce.RemoveSystemBar,
		UseBounds:       c.Reduce.UseBounds,
		MergeSwitch:     c.Reduce.MergeSwitch,
		DedupThreshold:  c.Reduce.DedupThreshold,
		MergeThreshold:  c.Reduce.MergeThreshold,
		NameWords:       c.Reduce.NameWords,
		Resolvers:       c.Resolvers(),
	}
}

// Resolvers builds the per-app overlap hooks.
func (c *Config) Resolvers() uitree.Resolvers {
	if len(c.Hooks) == 0 {
		return nil
	}
	r := make(uitree.Resolvers, len(c.Hooks))
	for app, ids := range c.Hooks {
		r[app] = uitree.DropResourceIDs(ids)
	}
	return r
}
