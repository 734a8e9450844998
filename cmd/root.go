package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/baseline"
	"github.com/m1rl0k/findingsengine/pkg/config"
	"github.com/m1rl0k/findingsengine/pkg/engine"
	"github.com/m1rl0k/findingsengine/pkg/logging"
	"github.com/m1rl0k/findingsengine/pkg/rules"
)

// Version is reported in SARIF output.
const Version = "0.3.0"

var (
	debugMode  bool
	configPath string

	logger = zap.NewNop()
	cfg    = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "findingsengine",
	Short: "Detect secrets and vulnerability patterns, merge scanner results and score the risk",
	Long: `findingsengine scans source text for hardcoded secrets and vulnerable code
patterns, merges the results with reports from external scanners (semgrep,
eslint, gitleaks, trufflehog, trivy) and produces a scored security report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(debugMode)
		if err != nil {
			return err
		}
		logger = l

		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		c, err := config.Load(configPath, wd)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: "+config.DefaultConfigFile+" in the working directory)")
}

// newEngine wires a compiled config into an engine.
func newEngine(cc *config.CompiledConfig, quality bool, b *baseline.Baseline) *engine.Engine {
	return engine.New(engine.Options{
		Registry:      rules.NewRegistry(cc.Table),
		Logger:        logger,
		Noise:         cc.GetNoiseFilter(),
		ContextRadius: cc.GetContextRadius(),
		Allowed:       cc.IsSecretAllowed,
		RuleDisabled:  cc.IsRuleDisabled,
		Quality:       quality || cc.Config.General.Quality,
		Baseline:      b,
		MaxInputBytes: int(cc.GetMaxFileSize()),
	})
}
