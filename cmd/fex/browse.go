package main

import (
	"fmt"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"

	"github.com/michaelscutari/fex/internal/app"
	"github.com/michaelscutari/fex/internal/config"
	"github.com/michaelscutari/fex/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [directory]",
	Short: "Browse a directory interactively",
	Long:  `Open the interactive file manager, starting in the given directory.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

var (
	browseConfig    string
	browseStartFile string
	browseWorkers   int
)

func init() {
	browseCmd.Flags().StringVarP(&browseConfig, "config", "c", "", "Path to config file")
	browseCmd.Flags().StringVar(&browseStartFile, "select", "", "Select this file on startup")
	browseCmd.Flags().IntVar(&browseWorkers, "workers", 0, "Worker pool size (0 = NumCPU+1)")
	rootCmd.Flags().AddFlagSet(browseCmd.Flags())
}

func runBrowse(cmd *cobra.Command, args []string) error {
	path := browseConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if browseWorkers > 0 {
		cfg.Workers = browseWorkers
	}

	start := ""
	if len(args) > 0 {
		start = args[0]
	}

	a, err := app.New(cfg, start)
	if err != nil {
		return err
	}
	defer a.Close()

	if browseStartFile != "" {
		a.Fm.CursorMoveTo(browseStartFile)
	}

	if err := tui.Run(a); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
