package analyzer

import (
	"regexp"
	"strings"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
	"clawscan/internal/ruleengine"
	"clawscan/internal/walker"
)

var unusualInterpreters = regexp.MustCompile(`(?i)^#!.*\b(perl|ruby|php|lua|tclsh)\b`)
var shebangLine = regexp.MustCompile(`^#!`)

// ScriptAnalyzer applies the execution rule group to script files and
// flags oversize files, unusual shebang interpreters, and extension-less
// shebanged executables.
type ScriptAnalyzer struct {
	patterns *catalog.Patterns
}

func NewScriptAnalyzer(patterns *catalog.Patterns) *ScriptAnalyzer {
	return &ScriptAnalyzer{patterns: patterns}
}

func (a *ScriptAnalyzer) Name() string { return "script" }

func (a *ScriptAnalyzer) Analyze(root string) ([]report.Finding, error) {
	var findings []report.Finding

	if err := a.patterns.CategoryErrors["execution"]; err != nil {
		return nil, err
	}

	files, err := walker.Walk(root, walker.ScriptExtensions)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		for _, m := range ruleengine.ScanLines(f.Content, a.patterns.Execution) {
			findings = append(findings, sevToFinding(a.Name(), f.RelPath, m.Line, m.RuleID, m.Severity, m.Description, m.Snippet))
		}
		findings = append(findings, shebangFindings(a.Name(), f.RelPath, f.Content, true)...)
	}

	oversized, err := walker.Oversized(root, walker.ScriptExtensions)
	if err != nil {
		return nil, err
	}
	for _, rel := range oversized {
		findings = append(findings, sevToFinding(a.Name(), rel, 0, "largeFile", catalog.SeverityWarning,
			"File exceeds the per-file size cap", ""))
	}

	noExt, err := walker.WalkNoExtension(root)
	if err != nil {
		return nil, err
	}
	for _, f := range noExt {
		findings = append(findings, shebangFindings(a.Name(), f.RelPath, f.Content, false)...)
	}

	return findings, nil
}

// shebangFindings inspects the first line of content for a shebang. When
// hasExtension is false and the file is shebanged, it additionally emits
// noExtension.
func shebangFindings(analyzerName, relPath, content string, hasExtension bool) []report.Finding {
	firstLine, _, _ := strings.Cut(content, "\n")
	if !shebangLine.MatchString(firstLine) {
		return nil
	}
	var findings []report.Finding
	if m := unusualInterpreters.FindStringSubmatch(firstLine); m != nil {
		findings = append(findings, sevToFinding(analyzerName, relPath, 1, "unusualInterpreter", catalog.SeverityInfo,
			"Shebang names an unusual interpreter: "+m[1], ruleengine.Truncate(firstLine, 120)))
	}
	if !hasExtension {
		findings = append(findings, sevToFinding(analyzerName, relPath, 1, "noExtension", catalog.SeverityInfo,
			"Shebanged file has no extension", ruleengine.Truncate(firstLine, 120)))
	}
	return findings
}
