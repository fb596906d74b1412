package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, titleStyle.Render("rainfield v"+Version))
			_, _ = fmt.Fprintln(out, summaryLine("go", runtime.Version()))
			_, _ = fmt.Fprintln(out, summaryLine("platform", runtime.GOOS+"/"+runtime.GOARCH))
			return nil
		},
	}
}
