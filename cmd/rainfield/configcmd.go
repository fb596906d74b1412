package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [prefix]",
		Short: "Show the merged configuration",
		Long: `Show every configuration key after merging defaults, the config file,
RAINFIELD_ environment variables and flags. An optional prefix filters keys.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd.Context())
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}

			keys := make([]string, 0, len(s.keys))
			for k := range s.keys {
				if strings.HasPrefix(k, prefix) {
					keys = append(keys, k)
				}
			}
			slices.Sort(keys)

			out := cmd.OutOrStdout()
			src := s.file
			if src == "" {
				src = "defaults"
			}
			_, _ = fmt.Fprintln(out, summaryLine("source", src))

			w := table.NewWriter()
			w.SetOutputMirror(out)
			w.SetStyle(table.StyleLight)
			w.AppendHeader(table.Row{"Key", "Value"})
			for _, k := range keys {
				w.AppendRow(table.Row{k, fmtValue(s.keys[k])})
			}
			w.Render()
			return nil
		},
	}
}
