package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/m1rl0k/findingsengine/pkg/adapters"
	"github.com/m1rl0k/findingsengine/pkg/baseline"
	"github.com/m1rl0k/findingsengine/pkg/config"
	"github.com/m1rl0k/findingsengine/pkg/engine"
	"github.com/m1rl0k/findingsengine/pkg/finding"
	"github.com/m1rl0k/findingsengine/pkg/source"
	"github.com/m1rl0k/findingsengine/pkg/store"
)

// stdinPath names text read from standard input.
const stdinPath = "-"

var errThreshold = errors.New("findings at or above the failure threshold")

var (
	scanLanguage string
	scanOutput   string
	scanQuality  bool
	scanBaseline string
	scanStore    bool
	scanFailOn   string
	toolReports  = make(map[string]*string)
)

var scanCmd = &cobra.Command{
	Use:   "scan <file|dir|->",
	Short: "Scan a file, a directory tree or standard input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := cfg.Compile()
		if err != nil {
			return err
		}

		threshold, err := parseFailOn(scanFailOn)
		if err != nil {
			return err
		}

		reports, err := loadReports(toolReports)
		if err != nil {
			return err
		}

		b, err := baseline.Load(firstNonEmpty(scanBaseline, cfg.Baseline.Path))
		if err != nil {
			return err
		}

		e := newEngine(cc, scanQuality, b)
		results, err := scanTargets(e, cc, args[0], scanLanguage, reports, cmd.InOrStdin())
		if err != nil {
			return err
		}

		if scanStore || cfg.Store.Enabled {
			if err := persist(results); err != nil {
				return err
			}
		}

		if err := render(cmd.OutOrStdout(), scanOutput, results); err != nil {
			return err
		}
		if threshold != "" && exceeds(results, threshold) {
			return fmt.Errorf("%w (%s)", errThreshold, threshold)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanLanguage, "language", "l", "", "Language of the input (default: detected from the file extension)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "text", "Output format (text, json, yaml, sarif)")
	scanCmd.Flags().BoolVar(&scanQuality, "quality", false, "Also report code-quality issues")
	scanCmd.Flags().StringVar(&scanBaseline, "baseline", "", "Baseline file of accepted findings")
	scanCmd.Flags().BoolVar(&scanStore, "store", false, "Record the reports in the scan history")
	scanCmd.Flags().StringVar(&scanFailOn, "fail-on", "", "Exit non-zero when a finding has at least this severity")
	addReportFlags(scanCmd, toolReports)
	rootCmd.AddCommand(scanCmd)
}

// addReportFlags registers one report path flag per supported tool.
func addReportFlags(c *cobra.Command, into map[string]*string) {
	for _, tool := range adapters.Tools() {
		into[tool] = c.Flags().String(tool, "", fmt.Sprintf("Path to a %s JSON report to merge", tool))
	}
}

// fileResult is the scan of one file. Path is empty for standard input.
type fileResult struct {
	Path   string
	Lines  []string
	Result *engine.Result
}

func (r fileResult) name() string {
	if r.Path == "" {
		return "<stdin>"
	}
	return r.Path
}

func loadReports(paths map[string]*string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for tool, p := range paths {
		if p == nil || *p == "" {
			continue
		}
		data, err := os.ReadFile(*p)
		if err != nil {
			return nil, fmt.Errorf("read %s report: %w", tool, err)
		}
		if _, err := adapters.Parse(tool, data, ""); err != nil {
			return nil, err
		}
		out[tool] = data
	}
	return out, nil
}

// scanTargets scans arg, which is a file, a directory or stdinPath. Files
// are scanned concurrently; results are ordered by path.
func scanTargets(e *engine.Engine, cc *config.CompiledConfig, arg, language string, reports map[string][]byte, stdin io.Reader) ([]fileResult, error) {
	if arg == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		res, err := scanText(e, adapters.Target{}, string(data), language, reports)
		if err != nil {
			return nil, err
		}
		return []fileResult{res}, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		res, err := scanText(e, adapters.Target{Path: arg}, string(data), language, reports)
		if err != nil {
			return nil, err
		}
		return []fileResult{res}, nil
	}

	paths, err := collectFiles(arg, cc)
	if err != nil {
		return nil, err
	}

	var (
		results []fileResult
		wg      sync.WaitGroup
		mu      sync.Mutex
		sem     = make(chan struct{}, runtime.NumCPU())
	)
	for _, p := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := os.ReadFile(p)
			if err != nil {
				logger.Warn("read failed", zap.String("file", p), zap.Error(err))
				return
			}
			res, err := scanText(e, adapters.Target{Path: p, Root: arg}, string(data), language, reports)
			if err != nil {
				var inputErr *finding.InputError
				if errors.As(err, &inputErr) {
					logger.Debug("skipping file", zap.String("file", p), zap.Error(err))
					return
				}
				logger.Warn("scan failed", zap.String("file", p), zap.Error(err))
				return
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// scanText scans one file's text merged with the report findings for that
// file.
func scanText(e *engine.Engine, target adapters.Target, text, language string, reports map[string][]byte) (fileResult, error) {
	tools := make([]string, 0, len(reports))
	for tool := range reports {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	var sources []engine.Source
	for _, tool := range tools {
		fs, err := adapters.ParseTarget(tool, reports[tool], target)
		if err != nil {
			return fileResult{}, err
		}
		sources = append(sources, engine.Source{Name: tool, Findings: fs})
	}

	res, err := e.Scan(engine.Input{Text: text, Language: language, Path: target.Path}, sources...)
	if err != nil {
		return fileResult{}, err
	}
	return fileResult{Path: target.Path, Lines: source.Lines(text), Result: res}, nil
}

// collectFiles walks root, skipping ignored directories and allowlisted
// paths.
func collectFiles(root string, cc *config.CompiledConfig) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel != "." && shouldIgnore(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldIgnore(rel) || !cc.IsPathAllowed(rel) {
			return nil
		}
		if info.Size() > cc.GetMaxFileSize() {
			logger.Debug("skipping large file", zap.String("file", path), zap.Int64("size", info.Size()))
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}

var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\.git($|/)`),
	regexp.MustCompile(`(^|/)node_modules($|/)`),
	regexp.MustCompile(`(^|/)vendor($|/)`),
	regexp.MustCompile(`(^|/)\.scanengine($|/)`),
}

func shouldIgnore(rel string) bool {
	for _, re := range ignorePatterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

func parseFailOn(raw string) (finding.Severity, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	s, ok := finding.ParseSeverity(raw)
	if !ok {
		return "", fmt.Errorf("invalid --fail-on severity %q", raw)
	}
	return s, nil
}

func exceeds(results []fileResult, threshold finding.Severity) bool {
	for _, r := range results {
		for _, f := range r.Result.Findings() {
			if f.Severity.Rank() >= threshold.Rank() {
				return true
			}
		}
	}
	return false
}

func persist(results []fileResult) error {
	s, err := store.Open(cfg.Store.Path, true, cfg.Store.Ephemeral)
	if err != nil {
		return err
	}
	defer s.Close()
	for _, r := range results {
		if err := s.Save(r.name(), r.Result.Report); err != nil {
			return err
		}
	}
	logger.Debug("reports stored", zap.String("db", cfg.Store.Path), zap.Int("scans", len(results)))
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
