// Package config handles loading and saving entropy configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/entropy/config.yaml
//   - Data:    ~/.local/share/entropy/ (exported snapshots)
//   - State:   ~/.local/state/entropy/ (debug logs)
//
// Files ending in .toml are read and written as TOML; everything else is YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/entropy/pkg/engine"
	"github.com/vanderheijden86/entropy/pkg/interact"
	"github.com/vanderheijden86/entropy/pkg/layout"
	"github.com/vanderheijden86/entropy/pkg/render"
	"github.com/vanderheijden86/entropy/pkg/viewport"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as a string ("750ms", "1.5s").
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// ViewportConfig holds camera bounds and fit behaviour.
type ViewportConfig struct {
	viewport.Config `yaml:",inline"`
	FitDuration     Duration `yaml:"fit_duration" toml:"fit_duration"`
}

// RenderConfig selects the visual skin.
type RenderConfig struct {
	Variant    string  `yaml:"variant" toml:"variant"`                           // neon, soft
	NodeRadius float64 `yaml:"node_radius,omitempty" toml:"node_radius,omitempty"` // 0 keeps the variant's radius
}

// InteractionConfig tunes pointer handling.
type InteractionConfig struct {
	ClickSlop float64 `yaml:"click_slop" toml:"click_slop"` // screen pixels
	HitRadius float64 `yaml:"hit_radius" toml:"hit_radius"` // world units
}

// EngineConfig holds frame pacing and canvas size.
type EngineConfig struct {
	FrameInterval Duration `yaml:"frame_interval" toml:"frame_interval"`
	RenderEvery   int      `yaml:"render_every" toml:"render_every"`
	AutoFitDelay  Duration `yaml:"auto_fit_delay" toml:"auto_fit_delay"` // negative disables auto-fit
	Width         float64  `yaml:"width" toml:"width"`
	Height        float64  `yaml:"height" toml:"height"`
}

// Config is the top-level configuration for entropy.
type Config struct {
	Physics     layout.Config     `yaml:"physics" toml:"physics"`
	Viewport    ViewportConfig    `yaml:"viewport" toml:"viewport"`
	Render      RenderConfig      `yaml:"render" toml:"render"`
	Interaction InteractionConfig `yaml:"interaction" toml:"interaction"`
	Engine      EngineConfig      `yaml:"engine" toml:"engine"`
}

// DefaultConfig returns the dashboard canvas settings.
func DefaultConfig() Config {
	def := engine.DefaultConfig()
	return Config{
		Physics: def.Physics,
		Viewport: ViewportConfig{
			Config:      def.Viewport,
			FitDuration: Duration(def.Viewport.FitDuration),
		},
		Render: RenderConfig{Variant: def.Variant},
		Interaction: InteractionConfig{
			ClickSlop: def.Interaction.ClickSlop,
			HitRadius: def.Interaction.HitRadius,
		},
		Engine: EngineConfig{
			FrameInterval: Duration(def.FrameInterval),
			RenderEvery:   def.RenderEvery,
			AutoFitDelay:  Duration(def.AutoFitDelay),
			Width:         def.Size.W,
			Height:        def.Size.H,
		},
	}
}

// Validate reports the first inconsistent setting, wrapped in ErrInvalid.
func (c Config) Validate() error {
	if c.Interaction.ClickSlop < 0 || c.Interaction.HitRadius < 0 {
		return fmt.Errorf("%w: interaction: distances must not be negative", ErrInvalid)
	}
	if c.Engine.Width <= 0 || c.Engine.Height <= 0 {
		return fmt.Errorf("%w: engine: width and height must be positive", ErrInvalid)
	}
	if c.Viewport.FitDuration < 0 {
		return fmt.Errorf("%w: viewport: fit_duration must not be negative", ErrInvalid)
	}
	if err := c.ToEngine().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ToEngine maps the file layout onto engine settings.
func (c Config) ToEngine() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Physics = c.Physics
	cfg.Viewport = c.Viewport.Config
	cfg.Viewport.FitDuration = time.Duration(c.Viewport.FitDuration)
	cfg.Interaction = interact.Config{
		ClickSlop:       c.Interaction.ClickSlop,
		HitRadius:       c.Interaction.HitRadius,
		DragAlphaTarget: c.Physics.DragAlphaTarget,
	}
	cfg.Variant = strings.ToLower(strings.TrimSpace(c.Render.Variant))
	cfg.NodeRadius = c.Render.NodeRadius
	cfg.FrameInterval = time.Duration(c.Engine.FrameInterval)
	cfg.RenderEvery = c.Engine.RenderEvery
	cfg.AutoFitDelay = time.Duration(c.Engine.AutoFitDelay)
	cfg.Size = viewport.Size{W: c.Engine.Width, H: c.Engine.Height}
	cfg.ScatterSize = cfg.Size
	return cfg
}

// ConfigDir returns the XDG config directory for entropy.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "entropy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "entropy")
}

// DataDir returns the XDG data directory for entropy.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "entropy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "entropy")
}

// StateDir returns the XDG state directory for entropy.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "entropy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "entropy")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Keys missing from the file
// keep their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if isTOML(path) {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	path = expandHome(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var buf bytes.Buffer
	format := "yaml"
	if isTOML(path) {
		format = "toml"
	}
	if err := Write(&buf, cfg, format); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Write encodes cfg as "yaml" or "toml".
func Write(w io.Writer, cfg Config, format string) error {
	switch strings.ToLower(format) {
	case "toml":
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (want yaml or toml)", format)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Variants lists the accepted render.variant values.
func Variants() []string {
	return render.VariantNames()
}
