// Package analyzer implements the seven scan analyzers plus the
// code-block sub-pipeline spec.md §4.4-§4.10 describe. Each analyzer is
// injected with the rule catalog it needs at construction time and reads
// files itself via internal/walker; none of them share mutable state,
// which is what lets the Scan Orchestrator run them concurrently.
package analyzer

import (
	"clawscan/internal/catalog"
	"clawscan/internal/report"
)

// Analyzer is the capability the Scan Orchestrator invokes. Script,
// Network, Credentials, and Obfuscation analyzers also satisfy this
// interface when the Code-Block Sub-pipeline points them at a temp
// directory of extracted blocks instead of the real skill root.
type Analyzer interface {
	Name() string
	Analyze(root string) ([]report.Finding, error)
}

func sevToFinding(analyzerName, file string, line int, ruleID string, severity catalog.Severity, message, match string) report.Finding {
	return report.Finding{
		Analyzer: analyzerName,
		Severity: severity,
		File:     file,
		Line:     line,
		Message:  message,
		RuleID:   ruleID,
		Match:    match,
	}
}
