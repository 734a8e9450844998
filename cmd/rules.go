package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/m1rl0k/findingsengine/pkg/rules"
)

var rulesLanguage string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate detection rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := cfg.Compile()
		if err != nil {
			return err
		}
		listRules(cmd, cc.Table, rulesLanguage)
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Compile a YAML or JSON rule file and report every invalid rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := rules.LoadFile(args[0])
		if err != nil {
			return err
		}
		t, err := rules.Compile(specs, rules.CompileOptions{MinEntropy: cfg.General.MinEntropy})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%d rules OK%s\n", GreenColor, t.Len(), ResetColor)
		return nil
	},
}

func init() {
	rulesListCmd.Flags().StringVarP(&rulesLanguage, "language", "l", "", "Only list rules for this language")
	rulesCmd.AddCommand(rulesListCmd, rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}

func listRules(cmd *cobra.Command, t *rules.Table, language string) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tLANGUAGE\tSEVERITY\tCATEGORY")
	for _, r := range t.All() {
		if language != "" && r.Language != language && r.Language != "" {
			continue
		}
		lang := r.Language
		if lang == "" {
			lang = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Kind, lang, r.Severity, r.Category)
	}
	tw.Flush()
}
