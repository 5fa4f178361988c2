// Package report defines the ScanReport data model spec.md §3 specifies:
// Finding, AnalyzerResult, risk result, and the assembled report itself.
package report

import (
	"sort"
	"time"

	"clawscan/internal/catalog"
)

// Finding is a single flagged observation tied to a rule, file, line, and
// severity. Findings are created only by analyzers; the Code-Block
// Sub-pipeline is the sole exception permitted to rewrite File/Line/
// Message on a finding after creation.
type Finding struct {
	Analyzer string           `json:"analyzer"`
	Severity catalog.Severity `json:"severity"`
	File     string           `json:"file"`
	Line     int              `json:"line,omitempty"` // 0 means null/unknown
	Message  string           `json:"message"`
	RuleID   string           `json:"ruleId"`
	Match    string           `json:"match,omitempty"`
}

// AnalyzerResult records one analyzer's execution outcome.
type AnalyzerResult struct {
	Name      string `json:"name"`
	Findings  int    `json:"findings"`
	ElapsedMs int64  `json:"elapsedMs"`
	Status    string `json:"status"` // "ok" | "error"
	Error     string `json:"error,omitempty"`
}

// Summary is the per-severity finding count.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// Risk is the Risk Aggregator's verdict.
type Risk struct {
	Score int    `json:"score"`
	Level string `json:"level"` // safe | warning | dangerous
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Manifest carries supplementary SKILL.md frontmatter metadata. It is
// purely additive context for report consumers and never feeds the risk
// score.
type Manifest struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	License string `json:"license,omitempty"`
}

// ScanReport is the complete output of one scan.
type ScanReport struct {
	Target    string           `json:"target"`
	Path      string           `json:"path"`
	Timestamp time.Time        `json:"timestamp"`
	Findings  []Finding        `json:"findings"`
	Analyzers []AnalyzerResult `json:"analyzers"`
	Summary   Summary          `json:"summary"`
	Risk      Risk             `json:"risk"`
	Manifest  Manifest         `json:"manifest,omitempty"`
}

// Summarize computes a Summary from a finding slice.
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case catalog.SeverityCritical:
			s.Critical++
		case catalog.SeverityWarning:
			s.Warning++
		case catalog.SeverityInfo:
			s.Info++
		}
	}
	return s
}

// SortFindings orders findings by (file, line, ruleId) so that two scans
// of an unchanged tree produce byte-identical output, per spec.md §8
// invariant 5.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})
}
