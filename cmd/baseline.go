package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m1rl0k/findingsengine/pkg/baseline"
)

var (
	baselineOutput   string
	baselineReason   string
	baselineLanguage string
	baselineQuality  bool
	baselineReports  = make(map[string]*string)
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage accepted findings",
}

var baselineCreateCmd = &cobra.Command{
	Use:   "create <file|dir>",
	Short: "Scan and record every current finding as accepted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := cfg.Compile()
		if err != nil {
			return err
		}
		reports, err := loadReports(baselineReports)
		if err != nil {
			return err
		}
		e := newEngine(cc, baselineQuality, nil)
		results, err := scanTargets(e, cc, args[0], baselineLanguage, reports, cmd.InOrStdin())
		if err != nil {
			return err
		}

		b := buildBaseline(results, baselineReason)
		out := firstNonEmpty(baselineOutput, cfg.Baseline.Path)
		if err := b.Save(out); err != nil {
			return fmt.Errorf("save baseline: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%sBaseline with %d findings written to %s%s\n", GreenColor, b.Count(), out, ResetColor)
		return nil
	},
}

func init() {
	baselineCreateCmd.Flags().StringVarP(&baselineOutput, "output", "o", "", "Baseline file (default: "+baseline.DefaultBaselineFile+")")
	baselineCreateCmd.Flags().StringVar(&baselineReason, "reason", "accepted", "Reason recorded for every entry")
	baselineCreateCmd.Flags().StringVarP(&baselineLanguage, "language", "l", "", "Language of the input (default: detected from the file extension)")
	baselineCreateCmd.Flags().BoolVar(&baselineQuality, "quality", false, "Also accept code-quality issues")
	addReportFlags(baselineCreateCmd, baselineReports)
	baselineCmd.AddCommand(baselineCreateCmd)
	rootCmd.AddCommand(baselineCmd)
}

func buildBaseline(results []fileResult, reason string) *baseline.Baseline {
	b := baseline.New()
	for _, r := range results {
		for _, f := range r.Result.Findings() {
			b.Add(baseline.CreateEntry(r.Path, r.Lines, f, reason))
		}
	}
	return b
}
