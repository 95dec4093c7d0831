package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/entropy/pkg/debug"
)

// summaryStderrMax caps stderr per hook in Summary.
const summaryStderrMax = 200

// RenderContext describes the render passed to hooks as ENTROPY_*
// environment variables.
type RenderContext struct {
	Graph     string    // ENTROPY_GRAPH: input dataset, empty for the sample
	Output    string    // ENTROPY_OUTPUT: snapshot path
	Format    string    // ENTROPY_FORMAT: svg or png
	Nodes     int       // ENTROPY_NODE_COUNT
	Edges     int       // ENTROPY_EDGE_COUNT
	Timestamp time.Time // ENTROPY_TIMESTAMP, RFC3339
}

// Env converts the context to environment entries.
func (c RenderContext) Env() []string {
	return []string{
		"ENTROPY_GRAPH=" + c.Graph,
		"ENTROPY_OUTPUT=" + c.Output,
		"ENTROPY_FORMAT=" + c.Format,
		"ENTROPY_NODE_COUNT=" + strconv.Itoa(c.Nodes),
		"ENTROPY_EDGE_COUNT=" + strconv.Itoa(c.Edges),
		"ENTROPY_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Result is the outcome of one hook.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of one render.
type Executor struct {
	config  *Config
	ctx     RenderContext
	results []Result
}

// NewExecutor creates an executor for config.
func NewExecutor(config *Config, ctx RenderContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, ctx: ctx}
}

// SetContext replaces the render context for later phases, once the node
// counts are known.
func (e *Executor) SetContext(ctx RenderContext) {
	e.ctx = ctx
}

// RunPreRender runs pre-render hooks in order and stops at the first
// failure whose policy is fail.
func (e *Executor) RunPreRender(ctx context.Context) error {
	for _, hook := range e.config.Hooks.PreRender {
		res := e.run(ctx, hook, PreRender)
		if !res.Success && hook.OnError == OnErrorFail {
			return fmt.Errorf("pre-render hook %q failed: %w", hook.Name, res.Error)
		}
	}
	return nil
}

// RunPostRender runs every post-render hook and joins the failures whose
// policy is fail.
func (e *Executor) RunPostRender(ctx context.Context) error {
	var errs []error
	for _, hook := range e.config.Hooks.PostRender {
		res := e.run(ctx, hook, PostRender)
		if !res.Success && hook.OnError == OnErrorFail {
			errs = append(errs, fmt.Errorf("post-render hook %q failed: %w", hook.Name, res.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(ctx context.Context, hook Hook, phase Phase) Result {
	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", hook.Command)
	cmd.Env = append(os.Environ(), e.ctx.Env()...)
	for k, v := range hook.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	// Grandchildren may hold the pipes open after the shell is killed.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Hook:     hook,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %v", timeout)
		}
		res.Error = err
	}
	debug.Log("hooks: %s %q ok=%v in %v", phase, hook.Name, res.Success, res.Duration)

	e.results = append(e.results, res)
	return res
}

// Results returns every hook outcome so far.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary counts the outcomes and lists failed hooks with their stderr.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	var sb strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&sb, "\n  %s %s: %v", r.Phase, r.Hook.Name, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "\n    stderr: %s", truncate(r.Stderr, summaryStderrMax))
		}
	}
	return fmt.Sprintf("hooks: %d succeeded, %d failed", ok, failed) + sb.String()
}

// Prepare loads the hooks of projectDir. It returns a nil executor when
// hooks are disabled or none are configured.
func Prepare(projectDir string, ctx RenderContext, disabled bool) (*Executor, []string, error) {
	if disabled {
		return nil, nil, nil
	}
	cfg, warnings, err := Load(projectDir)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Empty() {
		return nil, warnings, nil
	}
	return NewExecutor(cfg, ctx), warnings, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
