package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/entropy/pkg/config"
	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/engine"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/ui"
	"github.com/vanderheijden86/entropy/pkg/watcher"
)

func viewCmd(a *app) *cobra.Command {
	var (
		watch    bool
		debounce time.Duration
		variant  string
		physics  string
	)

	cmd := &cobra.Command{
		Use:   "view [graph]",
		Short: "Explore a graph in the terminal",
		Long: "Open a graph in a full-screen view. Drag nodes with the mouse, zoom\n" +
			"with the wheel and press ? for key bindings. Without a file the bundled\n" +
			"sample graph is shown.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && len(args) == 0 {
				return fmt.Errorf("--watch needs a graph file")
			}

			g, err := loadGraph(args)
			if err != nil {
				return err
			}

			ecfg := a.cfg.ToEngine()
			if variant != "" {
				ecfg.Variant = variant
			}
			if physics != "" {
				p, err := physicsPreset(physics)
				if err != nil {
					return err
				}
				ecfg.Physics = p
			}
			e, err := engine.New(ecfg)
			if err != nil {
				return err
			}
			e.SetGraph(g)

			closeLog, err := logToStateDir()
			if err != nil {
				return err
			}
			defer closeLog()

			title := "entropy"
			if len(args) == 1 {
				title = "entropy · " + filepath.Base(args[0])
			}
			opts := []ui.Option{
				ui.WithTitle(title),
				ui.WithTheme(ui.DefaultTheme(lipgloss.DefaultRenderer())),
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			group, ctx := errgroup.WithContext(ctx)

			if watch {
				path := args[0]
				w, err := watcher.NewWatcher(path,
					watcher.WithDebounce(debounce),
					watcher.WithOnError(func(err error) { debug.Log("watcher: %s: %v", path, err) }),
				)
				if err != nil {
					return err
				}
				opts = append(opts, ui.WithWatcher(w, func() (model.Graph, error) {
					return loadGraph(args)
				}))
				group.Go(func() error {
					return w.Watch(ctx)
				})
			}

			group.Go(func() error {
				defer cancel()
				return ui.Run(ctx, ui.New(e, opts...))
			})
			return group.Wait()
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the graph when the file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounceDuration, "quiet period before a change is reloaded")
	cmd.Flags().StringVar(&variant, "variant", "", "visual variant (overrides config)")
	cmd.Flags().StringVar(&physics, "physics", "", "force constants: dashboard or preview (overrides config)")
	return cmd
}

// logToStateDir sends debug output to a file while the full-screen view owns
// the terminal.
func logToStateDir() (func(), error) {
	if !debug.Enabled() {
		return func() {}, nil
	}
	dir := config.StateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	restore, err := debug.ToFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return restore, nil
}
