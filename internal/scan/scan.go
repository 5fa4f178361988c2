// Package scan implements the Scan Orchestrator: it resolves a skill
// target, runs every analyzer against it, and assembles the final
// ScanReport. Analyzers share no mutable state and each reads its own
// files independently, so — unlike the single-request, scan-at-a-time
// core this was distilled from — they run concurrently here.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"clawscan/internal/analyzer"
	"clawscan/internal/auditlog"
	"clawscan/internal/catalog"
	"clawscan/internal/report"
	"clawscan/internal/risk"
)

// Orchestrator wires the rule catalog and blocklist into the seven
// analyzers and runs them against a target directory.
type Orchestrator struct {
	patterns  *catalog.Patterns
	blocklist *catalog.Blocklist
	logger    *auditlog.Logger
	// strictProfile disables the CLI-wrapper Stage A halving entirely
	// (config.ScanConfig.Profile == "strict"), trading the false-negative
	// risk the design notes flag for fewer false negatives on manifests
	// that game the heuristic.
	strictProfile bool
}

func New(patterns *catalog.Patterns, blocklist *catalog.Blocklist) *Orchestrator {
	return &Orchestrator{patterns: patterns, blocklist: blocklist, logger: auditlog.New("")}
}

// WithLogger attaches an audit-log sidecar; a nil or unconfigured logger
// is a no-op, so this is safe to call unconditionally.
func (o *Orchestrator) WithLogger(l *auditlog.Logger) *Orchestrator {
	o.logger = l
	return o
}

// WithStrictProfile disables the CLI-wrapper Stage A halving.
func (o *Orchestrator) WithStrictProfile(strict bool) *Orchestrator {
	o.strictProfile = strict
	return o
}

// Scan resolves target as a skill directory and runs all analyzers against
// it, returning the assembled report. The target is validated before any
// analyzer runs so a missing/non-directory path surfaces immediately
// rather than producing a misleading partial report.
func (o *Orchestrator) Scan(target string) (report.ScanReport, error) {
	info, err := os.Stat(target)
	if err != nil {
		return report.ScanReport{}, fmt.Errorf("CLAW_SCAN_TARGET: %w", err)
	}
	if !info.IsDir() {
		return report.ScanReport{}, fmt.Errorf("CLAW_SCAN_TARGET: %s is not a directory", target)
	}

	scriptAnalyzer := analyzer.NewScriptAnalyzer(o.patterns)
	networkAnalyzer := analyzer.NewNetworkAnalyzer(o.patterns, o.blocklist)
	credentialsAnalyzer := analyzer.NewCredentialsAnalyzer(o.patterns)
	obfuscationAnalyzer := analyzer.NewObfuscationAnalyzer(o.patterns)
	typosquatAnalyzer := analyzer.NewTyposquatAnalyzer(o.patterns)
	promptInjectionAnalyzer := analyzer.NewPromptInjectionAnalyzer(o.patterns)

	// The four re-entrant "code analyzers" are a pure capability the
	// SKILL.md Analyzer invokes on extracted fenced blocks. Typosquat and
	// Prompt-Injection are deliberately excluded: a code block is not a
	// markdown document.
	codeAnalyzers := []analyzer.Analyzer{scriptAnalyzer, networkAnalyzer, credentialsAnalyzer, obfuscationAnalyzer}
	skillMdAnalyzer := analyzer.NewSkillMdAnalyzer(o.patterns, codeAnalyzers)

	ordered := []analyzer.Analyzer{
		skillMdAnalyzer,
		scriptAnalyzer,
		networkAnalyzer,
		credentialsAnalyzer,
		obfuscationAnalyzer,
		typosquatAnalyzer,
		promptInjectionAnalyzer,
	}

	findingSets := make([][]report.Finding, len(ordered))
	results := make([]report.AnalyzerResult, len(ordered))

	var g errgroup.Group
	for i, a := range ordered {
		i, a := i, a
		g.Go(func() error {
			o.logger.AnalyzerStart(a.Name(), target)
			start := time.Now()
			findings, err := a.Analyze(target)
			elapsed := time.Since(start)
			o.logger.AnalyzerFinish(a.Name(), len(findings), elapsed.Milliseconds(), err)

			result := report.AnalyzerResult{
				Name:      a.Name(),
				Findings:  len(findings),
				ElapsedMs: elapsed.Milliseconds(),
				Status:    "ok",
			}
			if err != nil {
				result.Status = "error"
				result.Error = err.Error()
			}
			results[i] = result
			findingSets[i] = findings
			return nil
		})
	}
	// Analyzer errors are trapped into AnalyzerResult.Status above and
	// never propagate; g.Wait only reports an unexpected orchestration
	// failure, which no analyzer goroutine here produces.
	_ = g.Wait()

	var findings []report.Finding
	for _, fs := range findingSets {
		findings = append(findings, fs...)
	}
	report.SortFindings(findings)

	manifest := skillMdAnalyzer.Manifest()
	isCliWrapper := !o.strictProfile && isCliWrapperTarget(target)

	riskResult := risk.Aggregate(findings, isCliWrapper)
	o.logger.ScanComplete(target, riskResult.Score, riskResult.Level)

	scanReport := report.ScanReport{
		Target:    target,
		Path:      target,
		Timestamp: timestamp(),
		Findings:  findings,
		Analyzers: results,
		Summary:   report.Summarize(findings),
		Risk:      riskResult,
		Manifest:  manifest,
	}
	return scanReport, nil
}

// isCliWrapperTarget reads SKILL.md (if present) for the CLI-wrapper
// heuristic. A missing or unreadable SKILL.md is simply not a wrapper.
func isCliWrapperTarget(root string) bool {
	data, err := os.ReadFile(filepath.Join(root, "SKILL.md"))
	if err != nil {
		return false
	}
	return risk.IsCliWrapper(string(data))
}

// timestamp is split out so tests can't accidentally depend on wall-clock
// behavior beyond "a time was recorded".
func timestamp() time.Time {
	return time.Now()
}
