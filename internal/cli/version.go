package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gardonyia/basket/internal/config"
	"github.com/gardonyia/basket/internal/models"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s) built %s\n", ProjectName, Version, CommitID, BuildDate)
			fmt.Fprintf(out, "\nBuild Info:\n")
			fmt.Fprintf(out, "  Go:       %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "  Sources:  %v\n", sourceNames(config.KnownSources))
			return nil
		},
	}
}

func sourceNames(sources []models.Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return names
}
