package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/entropy/pkg/cliui"
	"github.com/vanderheijden86/entropy/pkg/engine"
	"github.com/vanderheijden86/entropy/pkg/export"
	"github.com/vanderheijden86/entropy/pkg/hooks"
	"github.com/vanderheijden86/entropy/pkg/layout"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/render"
)

// defaultMaxTicks bounds headless runs. The default cooling schedule
// settles in under a hundred steps.
const defaultMaxTicks = 1000

type settleOptions struct {
	ticks   int
	variant string
	physics string
	width   float64
	height  float64
}

func (o *settleOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.ticks, "ticks", defaultMaxTicks, "maximum simulation steps before stopping")
	cmd.Flags().StringVar(&o.variant, "variant", "", "visual variant: "+strings.Join(render.VariantNames(), ", "))
	cmd.Flags().StringVar(&o.physics, "physics", "", "force constants: dashboard or preview (default from config)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "canvas width in pixels (default from config)")
	cmd.Flags().Float64Var(&o.height, "height", 0, "canvas height in pixels (default from config)")
}

// settle runs the simulation headless until it cools or the tick budget is
// spent, then fits the view to the result.
func settle(a *app, g model.Graph, o settleOptions) (*engine.Engine, int, error) {
	if o.ticks < 0 {
		return nil, 0, fmt.Errorf("--ticks must not be negative, got %d", o.ticks)
	}
	ecfg := a.cfg.ToEngine()
	if o.variant != "" {
		ecfg.Variant = strings.ToLower(strings.TrimSpace(o.variant))
	}
	if o.physics != "" {
		p, err := physicsPreset(o.physics)
		if err != nil {
			return nil, 0, err
		}
		ecfg.Physics = p
	}
	if o.width > 0 {
		ecfg.Size.W = o.width
	}
	if o.height > 0 {
		ecfg.Size.H = o.height
	}
	ecfg.ScatterSize = ecfg.Size
	ecfg.AutoFitDelay = -1
	ecfg.Viewport.FitDuration = 0

	e, err := engine.New(ecfg)
	if err != nil {
		return nil, 0, err
	}
	e.SetGraph(g)

	n := 0
	for n < o.ticks && e.Running() {
		e.Tick()
		n++
	}
	e.FitToView()
	return e, n, nil
}

func renderCmd(a *app) *cobra.Command {
	var (
		opts    settleOptions
		output  string
		format  string
		title   string
		labels  bool
		legend  bool
		noHooks bool
	)

	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Lay out a graph and write an SVG or PNG snapshot",
		Example: "  entropy render deps.json -o deps.svg\n" +
			"  entropy render deps.yaml -o deps.png --variant soft --width 1600 --height 1200\n" +
			"  entropy render deps.json -o - --format svg > deps.svg",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphPath string
			if len(args) == 1 {
				graphPath = args[0]
			}
			if output == "" {
				output = snapshotName(graphPath, ".svg")
			}
			out := cmd.ErrOrStderr()

			hctx := hooks.RenderContext{
				Graph:     graphPath,
				Output:    output,
				Format:    outputFormat(output, format),
				Timestamp: time.Now(),
			}
			projectDir, err := os.Getwd()
			if err != nil {
				return err
			}
			hookExec, warnings, err := hooks.Prepare(projectDir, hctx, noHooks)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				cliui.Warnf(out, "%s", w)
			}
			if hookExec != nil {
				defer func() {
					if s := hookExec.Summary(); s != "" {
						cliui.Subtle.Fprintln(out, "  "+s)
					}
				}()
				if err := hookExec.RunPreRender(cmd.Context()); err != nil {
					return err
				}
			}

			g, err := loadGraph(args)
			if err != nil {
				return err
			}
			e, ticks, err := settle(a, g, opts)
			if err != nil {
				return err
			}

			frame := e.Frame()
			xopts := export.Options{Format: format, Title: title, Labels: labels, Legend: legend}
			if output == "-" {
				err = writeSnapshot(cmd.OutOrStdout(), frame, xopts)
			} else {
				err = export.SaveSnapshot(output, frame, xopts)
			}
			if err != nil {
				return err
			}

			if output != "-" {
				fmt.Fprintf(out, "  %s %s  %s\n", cliui.StatusIcon(true), output,
					cliui.Subtle.Sprintf("%d nodes, %d edges, %d ticks, zoom %.0f%%",
						len(frame.Nodes), len(frame.Edges), ticks, frame.Transform.K*100))
			}
			if e.Running() {
				cliui.Warnf(out, "layout still moving after %d ticks (alpha %.3f); raise --ticks for a settled picture", ticks, e.Alpha())
			}

			if hookExec == nil {
				return nil
			}
			hctx.Nodes, hctx.Edges = len(frame.Nodes), len(frame.Edges)
			hookExec.SetContext(hctx)
			return hookExec.RunPostRender(cmd.Context())
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg or .png), or - for stdout (default <graph>.svg)")
	cmd.Flags().StringVar(&format, "format", "", "svg or png (default from the output extension)")
	cmd.Flags().StringVar(&title, "title", "", "caption drawn in the top-left corner")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw node labels")
	cmd.Flags().BoolVar(&legend, "legend", false, "draw the node kind legend")
	cmd.Flags().BoolVar(&noHooks, "no-hooks", false, "skip hooks from "+hooks.Path("."))
	return cmd
}

// physicsPreset returns a named set of force constants.
func physicsPreset(name string) (layout.Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dashboard":
		return layout.DefaultConfig(), nil
	case "preview":
		return layout.PreviewConfig(), nil
	default:
		return layout.Config{}, fmt.Errorf("unknown physics preset %q (want dashboard or preview)", name)
	}
}

// writeSnapshot streams a snapshot, refusing to dump PNG bytes on a terminal.
func writeSnapshot(w io.Writer, frame *render.Frame, opts export.Options) error {
	if opts.Format == "" {
		opts.Format = "svg"
	}
	if f, ok := w.(*os.File); ok && strings.EqualFold(opts.Format, "png") && term.IsTerminal(int(f.Fd())) {
		return errors.New("refusing to write PNG to a terminal; redirect stdout or use -o file.png")
	}
	return export.Write(w, frame, opts)
}

// outputFormat is the snapshot format a render will produce.
func outputFormat(output, format string) string {
	if format != "" {
		return strings.ToLower(strings.TrimPrefix(format, "."))
	}
	if strings.EqualFold(filepath.Ext(output), ".png") {
		return "png"
	}
	return "svg"
}

// snapshotName is the default output for a graph file: graph.json -> graph.svg.
func snapshotName(graphPath, ext string) string {
	if graphPath == "" {
		return "sample" + ext
	}
	base := filepath.Base(graphPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
