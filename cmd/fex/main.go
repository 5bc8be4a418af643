package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fex [directory]",
	Short: "A terminal file manager",
	Long: `fex is a multi-column terminal file manager with asynchronous
directory loading, live previews and filesystem-change awareness.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(infoCmd)
}
