// Package store keeps a sqlite history of scan reports.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/m1rl0k/findingsengine/pkg/report"
)

// DefaultPath is the history database used by the CLI.
const DefaultPath = ".scanengine/history.db"

// Scan is one stored report summary.
type Scan struct {
	ID         string
	Path       string
	Language   string
	Timestamp  int64
	Score      int
	Grade      string
	Risk       string
	Critical   int
	High       int
	Medium     int
	Low        int
	Info       int
	Suppressed int
}

// Total is the number of findings in the scan.
func (s Scan) Total() int {
	return s.Critical + s.High + s.Medium + s.Low + s.Info
}

// Finding is one stored canonical finding.
type Finding struct {
	ScanID     string
	Key        string
	Kind       string
	Category   string
	Severity   string
	Line       int
	Confidence float64
	Sources    []string
	RuleIDs    []string
	Evidence   string
}

// Store persists reports. A disabled store accepts writes and returns
// nothing.
type Store struct {
	db        *sql.DB
	enabled   bool
	dbPath    string
	ephemeral bool
}

// Open opens or creates the database at dbPath. An ephemeral store removes
// its file on Close and keeps only short evidence hashes.
func Open(dbPath string, enabled, ephemeral bool) (*Store, error) {
	if !enabled {
		return &Store{enabled: false, dbPath: dbPath, ephemeral: ephemeral}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, enabled: true, dbPath: dbPath, ephemeral: ephemeral}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		language TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		score INTEGER NOT NULL,
		grade TEXT NOT NULL,
		risk TEXT NOT NULL,
		critical INTEGER NOT NULL,
		high INTEGER NOT NULL,
		medium INTEGER NOT NULL,
		low INTEGER NOT NULL,
		info INTEGER NOT NULL,
		suppressed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL REFERENCES scans(id),
		finding_key TEXT NOT NULL,
		kind TEXT NOT NULL,
		category TEXT NOT NULL,
		severity TEXT NOT NULL,
		line_number INTEGER NOT NULL,
		confidence REAL NOT NULL,
		sources TEXT NOT NULL,
		rule_ids TEXT NOT NULL,
		evidence TEXT NOT NULL,
		UNIQUE(scan_id, finding_key)
	);

	CREATE INDEX IF NOT EXISTS idx_scans_path ON scans(path);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	CREATE INDEX IF NOT EXISTS idx_findings_scan ON findings(scan_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Save records a report for path in one transaction.
func (s *Store) Save(path string, r report.Report) error {
	if !s.enabled {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	counts := r.Metrics.SeverityDistribution
	_, err = tx.Exec(`
	INSERT OR REPLACE INTO scans (
		id, path, language, timestamp, score, grade, risk,
		critical, high, medium, low, info, suppressed
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Executive.ScanID,
		path,
		r.Executive.Language,
		r.Executive.Timestamp.Unix(),
		r.Security.Score.Score,
		r.Security.Score.Grade,
		string(r.Executive.OverallRisk),
		counts.Critical, counts.High, counts.Medium, counts.Low, counts.Info,
		r.Metrics.Scan.Suppressed,
	)
	if err != nil {
		return fmt.Errorf("failed to store scan: %w", err)
	}

	groups := [][]report.Finding{r.Findings.Vulnerabilities, r.Findings.Secrets, r.Findings.CodeQuality}
	for _, group := range groups {
		for _, f := range group {
			_, err := tx.Exec(`
			INSERT OR REPLACE INTO findings (
				scan_id, finding_key, kind, category, severity, line_number,
				confidence, sources, rule_ids, evidence
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.Executive.ScanID,
				f.Key,
				f.Kind,
				f.Category,
				f.Severity,
				f.Line,
				f.Confidence,
				strings.Join(f.Sources, ","),
				strings.Join(f.RuleIDs, ","),
				sanitizeSnippet(f.MaskedValue, s.ephemeral),
			)
			if err != nil {
				return fmt.Errorf("failed to store finding %s: %w", f.Key, err)
			}
		}
	}
	return tx.Commit()
}

// Recent returns up to limit scans, newest first. A non-empty path
// restricts the history to that file.
func (s *Store) Recent(path string, limit int) ([]Scan, error) {
	if !s.enabled {
		return []Scan{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, path, language, timestamp, score, grade, risk,
	       critical, high, medium, low, info, suppressed
	FROM scans
	WHERE (? = '' OR path = ?)
	ORDER BY timestamp DESC, id ASC
	LIMIT ?
	`
	rows, err := s.db.Query(query, path, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var out []Scan
	for rows.Next() {
		var sc Scan
		if err := rows.Scan(
			&sc.ID, &sc.Path, &sc.Language, &sc.Timestamp, &sc.Score, &sc.Grade, &sc.Risk,
			&sc.Critical, &sc.High, &sc.Medium, &sc.Low, &sc.Info, &sc.Suppressed,
		); err != nil {
			return nil, fmt.Errorf("failed to read scan: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Findings returns the stored findings of one scan in insertion order.
func (s *Store) Findings(scanID string) ([]Finding, error) {
	if !s.enabled {
		return []Finding{}, nil
	}

	rows, err := s.db.Query(`
	SELECT scan_id, finding_key, kind, category, severity, line_number,
	       confidence, sources, rule_ids, evidence
	FROM findings
	WHERE scan_id = ?
	ORDER BY id ASC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		var sources, ruleIDs string
		if err := rows.Scan(&f.ScanID, &f.Key, &f.Kind, &f.Category, &f.Severity, &f.Line,
			&f.Confidence, &sources, &ruleIDs, &f.Evidence); err != nil {
			return nil, fmt.Errorf("failed to read finding: %w", err)
		}
		f.Sources = split(sources)
		f.RuleIDs = split(ruleIDs)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Close closes the database and removes it when ephemeral.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
	}
	if s.enabled && s.ephemeral && s.dbPath != "" {
		if err := os.Remove(s.dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func sanitizeSnippet(snippet string, ephemeral bool) string {
	if snippet == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(snippet))
	encoded := hex.EncodeToString(sum[:])
	if ephemeral {
		return "sha256:" + encoded[:16]
	}
	return "sha256:" + encoded
}
