package main

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/entropy/pkg/analysis"
	"github.com/vanderheijden86/entropy/pkg/cliui"
)

func statsCmd() *cobra.Command {
	var (
		asJSON bool
		top    int
	)

	cmd := &cobra.Command{
		Use:   "stats [graph]",
		Short: "Print structural statistics: components, cycles, central nodes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args)
			if err != nil {
				return err
			}
			s := analysis.Analyze(g)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					analysis.Stats
					Top []analysis.Ranked `json:"top"`
				}{s, s.Top(top)})
			}

			cliui.Banner(out, "stats")
			fmt.Fprintf(out, "  %d nodes, %d edges, density %.3f\n", s.Nodes, s.Edges, s.Density)
			fmt.Fprintf(out, "  %d components (largest %d)\n", len(s.Components), largest(s.Components))
			fmt.Fprintf(out, "  %s dependency cycles: %d\n", cliui.StatusIcon(len(s.Cycles) == 0), len(s.Cycles))
			for _, c := range s.Cycles {
				fmt.Fprintf(out, "      %s\n", cliui.Warn.Sprint(strings.Join(c, " → ")))
			}
			if len(s.Articulation) > 0 {
				fmt.Fprintf(out, "  cut nodes: %s\n", strings.Join(s.Articulation, ", "))
			}
			fmt.Fprintln(out)

			rows := [][]string{}
			for _, r := range s.Top(top) {
				rows = append(rows, []string{r.ID, strconv.FormatFloat(r.PageRank, 'f', 4, 64), strconv.Itoa(r.Degree), strconv.Itoa(r.Core)})
			}
			cliui.Table(out, []string{"ID", "PAGERANK", "DEGREE", "CORE"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of central nodes to list (-1 for all)")
	return cmd
}

func largest(groups [][]string) int {
	n := 0
	for _, g := range groups {
		n = max(n, len(g))
	}
	return n
}
