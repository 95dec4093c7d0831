package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/entropy/pkg/cliui"
	"github.com/vanderheijden86/entropy/pkg/config"
	"github.com/vanderheijden86/entropy/pkg/debug"
	"github.com/vanderheijden86/entropy/pkg/loader"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/version"
)

// app is the state shared by every subcommand.
type app struct {
	configPath string
	cpuProfile string
	verbose    bool

	cfg     config.Config
	profile *os.File
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "entropy",
		Short: "entropy · force-directed graph layouts",
		Long: cliui.Brand.Sprint(cliui.Mark+" entropy") + " · lay out and explore graphs\n" +
			cliui.Subtle.Sprint("Load a JSON, YAML or JSONL graph and watch it settle"),
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.teardown()
			return nil
		},
	}
	root.SetVersionTemplate("{{ .Version }}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default "+config.ConfigPath()+")")
	flags.StringVar(&a.cpuProfile, "cpu-profile", "", "write a CPU profile to file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		viewCmd(a),
		renderCmd(a),
		simulateCmd(a),
		statsCmd(),
		configCmd(a),
		versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.verbose {
		debug.SetEnabled(true)
	}
	if cmd.Annotations[skipConfig] != "" {
		a.cfg = config.DefaultConfig()
		return nil
	}

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.cpuProfile != "" {
		f, err := os.Create(a.cpuProfile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		a.profile = f
	}
	return nil
}

// teardown flushes the CPU profile. It is safe to call more than once.
func (a *app) teardown() {
	if a.profile != nil {
		pprof.StopCPUProfile()
		a.profile.Close()
		a.profile = nil
	}
}

// loadGraph reads the dataset named by args, or the bundled sample.
func loadGraph(args []string) (model.Graph, error) {
	if len(args) == 0 || args[0] == "" {
		return loader.Sample(), nil
	}
	return loader.Load(args[0])
}
