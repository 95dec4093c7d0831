// Package hooks runs user commands around `entropy render`.
//
// Hooks are configured in .entropy/hooks.yaml in the project directory:
//
//	hooks:
//	  pre-render:
//	    - name: fetch
//	      command: ./scripts/export-graph.sh > graph.json
//	  post-render:
//	    - command: cp "$ENTROPY_OUTPUT" docs/graph.svg
//	      timeout: 10s
//
// A failing pre-render hook cancels the render by default; post-render
// failures are reported and ignored unless on_error is "fail".
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase is when a hook runs.
type Phase string

const (
	// PreRender runs before the layout is computed.
	PreRender Phase = "pre-render"
	// PostRender runs after the snapshot is written.
	PostRender Phase = "post-render"
)

// On-error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout bounds a hook that sets no timeout.
const DefaultTimeout = 30 * time.Second

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Config is the hooks file.
type Config struct {
	Hooks ByPhase `yaml:"hooks" json:"hooks"`
}

// ByPhase groups hooks by phase.
type ByPhase struct {
	PreRender  []Hook `yaml:"pre-render,omitempty" json:"pre-render,omitempty"`
	PostRender []Hook `yaml:"post-render,omitempty" json:"post-render,omitempty"`
}

// Get returns the hooks for phase, or nil for an unknown phase.
func (c *Config) Get(phase Phase) []Hook {
	switch phase {
	case PreRender:
		return c.Hooks.PreRender
	case PostRender:
		return c.Hooks.PostRender
	default:
		return nil
	}
}

// Empty reports whether no hooks are configured.
func (c *Config) Empty() bool {
	return len(c.Hooks.PreRender) == 0 && len(c.Hooks.PostRender) == 0
}

// Path is the hooks file location inside a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, ".entropy", "hooks.yaml")
}

// Load reads the hooks file of projectDir. A missing file yields an empty
// config. Warnings describe hooks that were skipped or corrected.
func Load(projectDir string) (*Config, []string, error) {
	path := Path(projectDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var warnings []string
	cfg.Hooks.PreRender, warnings = normalize(cfg.Hooks.PreRender, PreRender, warnings)
	cfg.Hooks.PostRender, warnings = normalize(cfg.Hooks.PostRender, PostRender, warnings)
	return &cfg, warnings, nil
}

// normalize applies defaults and drops hooks with no command.
func normalize(hooks []Hook, phase Phase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultTimeout
		}
		switch hook.OnError {
		case OnErrorFail, OnErrorContinue:
		case "":
			hook.OnError = OnErrorContinue
			if phase == PreRender {
				hook.OnError = OnErrorFail
			}
		default:
			warnings = append(warnings, fmt.Sprintf("%s hook %d: unknown on_error %q, using %q", phase, i+1, hook.OnError, OnErrorFail))
			hook.OnError = OnErrorFail
		}
		if hook.Name == "" {
			hook.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, hook)
	}
	return out, warnings
}

// UnmarshalYAML accepts timeouts as durations ("10s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type hookDTO struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}

	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}
	*h = Hook{Name: dto.Name, Command: dto.Command, Env: dto.Env, OnError: dto.OnError}

	if dto.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(dto.Timeout)
	if err == nil {
		h.Timeout = d
		return nil
	}
	var seconds float64
	if _, scanErr := fmt.Sscanf(dto.Timeout, "%f", &seconds); scanErr == nil {
		h.Timeout = time.Duration(seconds * float64(time.Second))
		return nil
	}
	return fmt.Errorf("invalid timeout %q: %w", dto.Timeout, err)
}
