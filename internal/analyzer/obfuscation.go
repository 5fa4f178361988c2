package analyzer

import (
	"regexp"
	"strings"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
	"clawscan/internal/ruleengine"
	"clawscan/internal/walker"
)

const longLineLimit = 500

var (
	hexIdentifier = regexp.MustCompile(`_0x[0-9a-f]+`)

	obfuscatorSignatures = []string{
		"javascript-obfuscator", "JSFuck", "jjencode", "aaencode", "pyarmor", "pyobfuscate",
	}
)

// ObfuscationAnalyzer applies the obfuscation rule group plus heuristics
// for minified lines, `_0x`-style identifier floods, and known
// obfuscator-tool signature strings.
type ObfuscationAnalyzer struct {
	patterns *catalog.Patterns
}

func NewObfuscationAnalyzer(patterns *catalog.Patterns) *ObfuscationAnalyzer {
	return &ObfuscationAnalyzer{patterns: patterns}
}

func (a *ObfuscationAnalyzer) Name() string { return "obfuscation" }

func (a *ObfuscationAnalyzer) Analyze(root string) ([]report.Finding, error) {
	if err := a.patterns.CategoryErrors["obfuscation"]; err != nil {
		return nil, err
	}

	files, err := walker.Walk(root, walker.BroadExtensions)
	if err != nil {
		return nil, err
	}

	var findings []report.Finding
	for _, f := range files {
		for _, m := range ruleengine.ScanLines(f.Content, a.patterns.Obfuscation) {
			findings = append(findings, sevToFinding(a.Name(), f.RelPath, m.Line, m.RuleID, m.Severity, m.Description, m.Snippet))
		}
		findings = append(findings, a.scanHeuristics(f.RelPath, f.Content)...)
	}
	return findings, nil
}

func (a *ObfuscationAnalyzer) scanHeuristics(relPath, content string) []report.Finding {
	var findings []report.Finding

	if !strings.HasSuffix(strings.ToLower(relPath), ".json") {
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			if len(line) > longLineLimit {
				findings = append(findings, sevToFinding(a.Name(), relPath, i+1, "longLine", catalog.SeverityWarning,
					"Line exceeds 500 characters (possible minified code)", ""))
				break
			}
		}
	}

	if count := len(hexIdentifier.FindAllString(content, -1)); count > 3 {
		findings = append(findings, sevToFinding(a.Name(), relPath, 0, "jsObfuscator", catalog.SeverityCritical,
			"Obfuscator-style _0x identifiers appear repeatedly in this file", ""))
	}

	for _, sig := range obfuscatorSignatures {
		if strings.Contains(content, sig) {
			findings = append(findings, sevToFinding(a.Name(), relPath, 0, "obfuscationTool", catalog.SeverityCritical,
				"Known obfuscation tool signature detected: "+sig, ""))
		}
	}

	return findings
}
