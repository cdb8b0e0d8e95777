// Package config loads the turtle host configuration.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file and TURTLE_<SECTION>_<KEY> environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/persistence/middleware"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TURTLE_"

// Store drivers.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Canvas CanvasConfig `mapstructure:"canvas"`
	Turtle TurtleConfig `mapstructure:"turtle"`
	Store  StoreConfig  `mapstructure:"store"`
	Prompt PromptConfig `mapstructure:"prompt"`
	Log    LogConfig    `mapstructure:"log"`
}

type CanvasConfig struct {
	Width    int     `mapstructure:"width"`
	Height   int     `mapstructure:"height"`
	PenWidth float64 `mapstructure:"pen_width"`
}

type TurtleConfig struct {
	TurnStep       float64 `mapstructure:"turn_step"`
	MaxReplayDepth int     `mapstructure:"max_replay_depth"`
	MaxReplayLines int     `mapstructure:"max_replay_lines"`
}

type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Dir    string      `mapstructure:"dir"`
	Redis  RedisConfig `mapstructure:"redis"`

	// EncryptionKey (base64, 32 bytes) turns on at-rest encryption of scripts and images.
	// FallbackKeys are older keys still accepted for reading.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// PromptConfig holds the answers used when nobody is at the keyboard.
type PromptConfig struct {
	OnUnsaved    string `mapstructure:"on_unsaved"`
	ImageTarget  string `mapstructure:"image_target"`
	ScriptTarget string `mapstructure:"script_target"`
	ImageSource  string `mapstructure:"image_source"`
	ScriptSource string `mapstructure:"script_source"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{Width: 800, Height: 400, PenWidth: 2},
		Turtle: TurtleConfig{TurnStep: domain.DefaultTurnStep, MaxReplayDepth: 16, MaxReplayLines: 100000},
		Store: StoreConfig{
			Driver: DriverFile,
			Dir:    "turtle-data",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "turtle:"},
		},
		Prompt: PromptConfig{OnUnsaved: "cancel"},
		Log:    LogConfig{Level: "warn"},
	}
}

// Load reads path (if non-empty), applies environment overrides and validates the result.
// A missing file is an error only when path was given explicitly.
func Load(path string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	return build(raw, os.Environ())
}

func build(raw map[string]any, environ []string) (Config, error) {
	overlayEnv(raw, environ)

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeDurationHookFunc(), intToDurationHook),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, cfg.Validate()
}

// overlayEnv copies TURTLE_SECTION_KEY variables into raw as raw[section][key].
// Keys may contain underscores (TURTLE_CANVAS_PEN_WIDTH); TURTLE_STORE_REDIS_X nests one level deeper.
func overlayEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		parts := strings.SplitN(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_", 2)
		if len(parts) != 2 || !isSection(parts[0]) {
			continue
		}
		section := child(raw, parts[0])
		key := parts[1]
		if parts[0] == "store" && strings.HasPrefix(key, "redis_") {
			section = child(section, "redis")
			key = strings.TrimPrefix(key, "redis_")
		}
		if key == "fallback_keys" {
			section[key] = strings.Split(value, ",")
			continue
		}
		section[key] = value
	}
}

func isSection(s string) bool {
	switch s {
	case "canvas", "turtle", "store", "prompt", "log":
		return true
	}
	return false
}

func child(m map[string]any, key string) map[string]any {
	if c, ok := m[key].(map[string]any); ok {
		return c
	}
	c := map[string]any{}
	m[key] = c
	return c
}

// intToDurationHook reads bare YAML integers as seconds.
func intToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	}
	return data, nil
}

// Validate reports the first inconsistent value.
func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	case c.Canvas.PenWidth <= 0:
		return fmt.Errorf("%w: pen_width %v", ErrInvalid, c.Canvas.PenWidth)
	case c.Turtle.TurnStep == 0:
		return fmt.Errorf("%w: turn_step must not be zero", ErrInvalid)
	}
	switch c.Store.Driver {
	case DriverFile, DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Store.EncryptionKey != "" {
		if _, err := middleware.ParseKey(c.Store.EncryptionKey); err != nil {
			return fmt.Errorf("%w: encryption_key: %v", ErrInvalid, err)
		}
	}
	for i, k := range c.Store.FallbackKeys {
		if _, err := middleware.ParseKey(k); err != nil {
			return fmt.Errorf("%w: fallback_keys[%d]: %v", ErrInvalid, i, err)
		}
	}
	if _, ok := domain.ParseChoice(strings.ToLower(c.Prompt.OnUnsaved)); !ok {
		return fmt.Errorf("%w: on_unsaved %q", ErrInvalid, c.Prompt.OnUnsaved)
	}
	return nil
}

// Encryption returns the store encryption keys, or ok false when encryption is off.
// It assumes c passed Validate.
func (c Config) Encryption() (cfg middleware.EncryptionConfig, ok bool) {
	if c.Store.EncryptionKey == "" {
		return middleware.EncryptionConfig{}, false
	}
	cfg.ActiveKey, _ = middleware.ParseKey(c.Store.EncryptionKey)
	for _, k := range c.Store.FallbackKeys {
		key, _ := middleware.ParseKey(k)
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, true
}

// UnsavedChoice is the parsed prompt.on_unsaved value.
func (c Config) UnsavedChoice() domain.Choice {
	choice, _ := domain.ParseChoice(strings.ToLower(c.Prompt.OnUnsaved))
	return choice
}
