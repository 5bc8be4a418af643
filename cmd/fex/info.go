package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"

	"github.com/michaelscutari/fex/internal/config"
	"github.com/michaelscutari/fex/internal/visits"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the most visited directories",
	Long:  `Print the directory jump list recorded from past sessions.`,
	RunE:  runInfo,
}

var infoLimit int

func init() {
	infoCmd.Flags().IntVarP(&infoLimit, "limit", "n", 20, "Number of entries to show")
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}

	store, err := visits.Open(cfg.VisitsFile)
	if err != nil {
		return err
	}
	defer store.Close()

	top, err := store.Top(infoLimit)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		fmt.Println("no visits recorded yet")
		return nil
	}

	fmt.Printf("%-8s %-20s %s\n", "VISITS", "LAST", "PATH")
	for _, v := range top {
		fmt.Printf("%-8s %-20s %s\n",
			humanize.Comma(v.Count),
			v.LastVisit.Format(time.DateTime),
			v.Path,
		)
	}
	return nil
}
