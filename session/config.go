package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astarviz/models"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigKind is the expected 'kind' of a session config file.
const ConfigKind = "session"

const (
	DefaultGridSize  = 50
	DefaultStepDelay = 5 * time.Millisecond
)

var (
	ErrConfigKind = errors.New("session: unexpected config kind")
	ErrConfig     = errors.New("session: invalid config")
)

// OuterConfig is the envelope of every config file: a kind selector and its definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds the session's tunables. Viper lowercases keys, hence the tags.
type Config struct {
	// GridSize is the grid dimension N.
	GridSize int `yaml:"gridsize"`
	// StepDelay is how long each search step is held for rendering, e.g. "5ms".
	StepDelay string `yaml:"stepdelay"`
	// SearchDeadline optionally bounds a run, e.g. {duration: 30s}.
	SearchDeadline map[string]string `yaml:"searchdeadline"`
	// Layout optionally seeds the grid with layout rows; it overrides GridSize.
	Layout []string `yaml:"layout"`
}

// DefaultConfig returns the config used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		GridSize:  DefaultGridSize,
		StepDelay: DefaultStepDelay.String(),
	}
}

// FromYaml reads a session config from the yaml file at path.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != ConfigKind {
		return nil, fmt.Errorf("%w: %q, want %q", ErrConfigKind, outerConfig.Kind, ConfigKind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := DefaultConfig()
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}

	if err = innerConfig.Validate(); err != nil {
		return nil, err
	}
	return innerConfig, nil
}

// Validate checks the config values without building anything.
func (cfg *Config) Validate() error {
	if len(cfg.Layout) == 0 && cfg.GridSize < models.MinGridSize {
		return fmt.Errorf("%w: gridSize %d is below %d", ErrConfig, cfg.GridSize, models.MinGridSize)
	}
	if _, err := cfg.GetStepDelay(); err != nil {
		return err
	}
	if _, err := cfg.getDeadline(); err != nil {
		return err
	}
	return nil
}

// GetStepDelay returns the parsed step delay, or DefaultStepDelay when unset.
func (cfg *Config) GetStepDelay() (time.Duration, error) {
	if cfg.StepDelay == "" {
		return DefaultStepDelay, nil
	}
	delay, err := time.ParseDuration(cfg.StepDelay)
	if err != nil {
		return 0, fmt.Errorf("%w: stepDelay: %v", ErrConfig, err)
	}
	if delay < 0 {
		return 0, fmt.Errorf("%w: stepDelay %s is negative", ErrConfig, delay)
	}
	return delay, nil
}

func (cfg *Config) getDeadline() (time.Duration, error) {
	val, ok := cfg.SearchDeadline["duration"]
	if !ok {
		return 0, nil
	}
	duration, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: searchDeadline: %v", ErrConfig, err)
	}
	return duration, nil
}

// WithSearchDeadline returns a context extended by the search deadline, if one is specified.
func (cfg *Config) WithSearchDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	duration, err := cfg.getDeadline()
	if err != nil {
		return nil, nil, err
	}
	if duration > 0 {
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}
