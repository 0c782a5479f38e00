// Command syncctl runs the parentlink sync layer from a terminal: an
// operator console over the five collections, a local fake backend and
// version output.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/parentlink/internal/buildinfo"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "syncctl",
		Short:         "parentlink client sync layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(replCmd())
	cmd.AddCommand(fakeRemoteCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	})
	return cmd
}
