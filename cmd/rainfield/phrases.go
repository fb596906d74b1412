package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newPhrasesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "List the subliminal phrase tiers",
		Long: `List the subliminal phrase catalog with each tier's weight and selection share.
The built-in tiers are shown unless subliminal.catalog names a YAML file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := sessionFrom(cmd.Context())
			cat, err := s.cfg.Catalog()
			if err != nil {
				return err
			}

			total := 0.0
			for _, t := range cat.Tiers {
				total += t.Weight
			}

			w := table.NewWriter()
			w.SetOutputMirror(cmd.OutOrStdout())
			w.SetStyle(table.StyleLight)
			w.AppendHeader(table.Row{"Tier", "Weight", "Share", "Phrases"})
			for _, t := range cat.Tiers {
				share := fmt.Sprintf("%.1f%%", 100*t.Weight/total)
				if all {
					for i, p := range t.Phrases {
						if i == 0 {
							w.AppendRow(table.Row{t.Name, t.Weight, share, p})
							continue
						}
						w.AppendRow(table.Row{"", "", "", p})
					}
					w.AppendSeparator()
					continue
				}
				w.AppendRow(table.Row{t.Name, t.Weight, share, sample(t.Phrases)})
			}
			w.AppendFooter(table.Row{"", total, "", fmt.Sprintf("%d tiers", len(cat.Tiers))})
			w.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every phrase")
	return cmd
}

// sample summarizes a tier as its count and first phrase
func sample(phrases []string) string {
	if len(phrases) == 0 {
		return ""
	}
	first := phrases[0]
	if len(phrases) == 1 {
		return first
	}
	return fmt.Sprintf("%d: %s, ...", len(phrases), first)
}
