package analyzer

import (
	"regexp"
	"strings"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
	"clawscan/internal/ruleengine"
	"clawscan/internal/walker"
)

const credSnippetLimit = 40

var (
	quotedBase64   = regexp.MustCompile(`["']([A-Za-z0-9+/=]{40,})["']`)
	quotedHex      = regexp.MustCompile(`["']([0-9a-fA-F]{32,})["']`)
	passwordAssign = regexp.MustCompile(`(?i)\bpassword\s*[:=]\s*["']([^"']{8,})["']`)
	cliFlagMention = regexp.MustCompile(`--password\b`)
)

// CredentialsAnalyzer applies the credentials rule group plus
// high-entropy secret heuristics: quoted base64/hex blobs and literal
// password assignments.
type CredentialsAnalyzer struct {
	patterns *catalog.Patterns
}

func NewCredentialsAnalyzer(patterns *catalog.Patterns) *CredentialsAnalyzer {
	return &CredentialsAnalyzer{patterns: patterns}
}

func (a *CredentialsAnalyzer) Name() string { return "credentials" }

func (a *CredentialsAnalyzer) Analyze(root string) ([]report.Finding, error) {
	if err := a.patterns.CategoryErrors["credentials"]; err != nil {
		return nil, err
	}

	files, err := walker.Walk(root, walker.BroadExtensions)
	if err != nil {
		return nil, err
	}

	var findings []report.Finding
	for _, f := range files {
		for _, m := range ruleengine.ScanLines(f.Content, a.patterns.Credentials) {
			findings = append(findings, sevToFinding(a.Name(), f.RelPath, m.Line, m.RuleID, m.Severity, m.Description, m.Snippet))
		}
		findings = append(findings, a.scanSecretHeuristics(f.RelPath, f.Content)...)
	}
	return findings, nil
}

func (a *CredentialsAnalyzer) scanSecretHeuristics(relPath, content string) []report.Finding {
	var findings []report.Finding
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lineNum := i + 1

		if m := quotedBase64.FindString(line); m != "" {
			findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "base64Exec", catalog.SeverityWarning,
				"Quoted base64-like string of 40+ characters", ruleengine.Truncate(m, credSnippetLimit)))
		}
		if m := quotedHex.FindString(line); m != "" {
			findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "hexSecret", catalog.SeverityWarning,
				"Quoted hex string of 32+ characters", ruleengine.Truncate(m, credSnippetLimit)))
		}
		if cliFlagMention.MatchString(line) {
			continue
		}
		if m := passwordAssign.FindString(line); m != "" {
			findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "hardcodedPassword", catalog.SeverityWarning,
				"Hardcoded password assignment", ruleengine.Truncate(m, credSnippetLimit)))
		}
	}
	return findings
}
