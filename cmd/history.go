package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/m1rl0k/findingsengine/pkg/store"
)

var (
	historyPath  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored scan results, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(cfg.Store.Path, true, false)
		if err != nil {
			return err
		}
		defer s.Close()

		scans, err := s.Recent(historyPath, historyLimit)
		if err != nil {
			return err
		}
		if len(scans) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored scans.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tFILE\tSCORE\tGRADE\tRISK\tFINDINGS\tSUPPRESSED")
		for _, sc := range scans {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%d\n",
				time.Unix(sc.Timestamp, 0).UTC().Format(time.RFC3339),
				sc.Path, sc.Score, sc.Grade, sc.Risk, sc.Total(), sc.Suppressed)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyPath, "path", "", "Only show scans of this file")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of scans to show")
	rootCmd.AddCommand(historyCmd)
}
