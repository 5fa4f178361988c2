package analyzer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
	"clawscan/internal/ruleengine"
	"clawscan/internal/walker"
)

var promptInjectionExtensions = []string{".md", ".txt"}

// PromptInjectionAnalyzer applies the prompt-injection rule group plus
// structural markdown inspection: invisible characters, suspicious HTML
// comments, markdown link/image abuse, and emphatic ALL-CAPS runs.
type PromptInjectionAnalyzer struct {
	patterns *catalog.Patterns
}

func NewPromptInjectionAnalyzer(patterns *catalog.Patterns) *PromptInjectionAnalyzer {
	return &PromptInjectionAnalyzer{patterns: patterns}
}

func (a *PromptInjectionAnalyzer) Name() string { return "promptInjection" }

func (a *PromptInjectionAnalyzer) Analyze(root string) ([]report.Finding, error) {
	if err := a.patterns.CategoryErrors["promptInjection"]; err != nil {
		return nil, err
	}

	files, err := walker.Walk(root, promptInjectionExtensions)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].RelPath == "SKILL.md" {
			return true
		}
		if files[j].RelPath == "SKILL.md" {
			return false
		}
		return files[i].RelPath < files[j].RelPath
	})

	var findings []report.Finding
	for _, f := range files {
		for _, m := range ruleengine.ScanLines(f.Content, a.patterns.PromptInjection) {
			findings = append(findings, sevToFinding(a.Name(), f.RelPath, m.Line, m.RuleID, m.Severity, m.Description, m.Snippet))
		}
		findings = append(findings, a.invisibleCharFindings(f.RelPath, f.Content)...)
		findings = append(findings, a.hiddenCommentFindings(f.RelPath, f.Content)...)
		findings = append(findings, a.markdownAbuseFindings(f.RelPath, f.Content)...)
		findings = append(findings, a.emphaticCapsFindings(f.RelPath, f.Content)...)
	}
	return findings, nil
}

type invisibleCharType struct {
	label string
	lo    rune
	hi    rune
}

var invisibleCharTypes = []invisibleCharType{
	{"ZWSP", 0x200B, 0x200B},
	{"ZWNJ", 0x200C, 0x200C},
	{"ZWJ", 0x200D, 0x200D},
	{"WordJoiner", 0x2060, 0x2060},
	{"InvisibleTimes", 0x2062, 0x2062},
	{"InvisibleSeparator", 0x2063, 0x2063},
	{"InvisiblePlus", 0x2064, 0x2064},
	{"LRM", 0x200E, 0x200E},
	{"RLM", 0x200F, 0x200F},
	{"LRO", 0x202D, 0x202D},
	{"RLO", 0x202E, 0x202E},
	{"BOM", 0xFEFF, 0xFEFF},
	{"TagChars", 0xE0001, 0xE007F},
}

func (a *PromptInjectionAnalyzer) invisibleCharFindings(relPath, content string) []report.Finding {
	var findings []report.Finding
	for _, t := range invisibleCharTypes {
		line := firstLineContaining(content, t.lo, t.hi)
		if line == 0 {
			continue
		}
		findings = append(findings, sevToFinding(a.Name(), relPath, line, "invisibleChars", catalog.SeverityCritical,
			"Invisible Unicode character detected ("+t.label+")", ""))
	}
	return findings
}

func firstLineContaining(content string, lo, hi rune) int {
	line := 1
	for _, r := range content {
		if r == '\n' {
			line++
			continue
		}
		if r >= lo && r <= hi {
			return line
		}
	}
	return 0
}

var (
	htmlComment    = regexp.MustCompile(`(?s)<!--(.*?)-->`)
	commentSuspect = regexp.MustCompile(`(?i)\b(execute|run|eval|invoke)\b|\b(override|ignore|bypass)\b|\b(hidden|real|actual|true)\s+(instructions?|purpose|task)\b|do\s*not\s+(tell|show|reveal)|don'?t\s+(tell|show|reveal)|\b(password|api[ _-]?key|secret|token|credential)\b`)
)

func (a *PromptInjectionAnalyzer) hiddenCommentFindings(relPath, content string) []report.Finding {
	var findings []report.Finding
	for _, loc := range htmlComment.FindAllStringSubmatchIndex(content, -1) {
		body := content[loc[2]:loc[3]]
		if len(strings.TrimSpace(body)) < 15 {
			continue
		}
		if !commentSuspect.MatchString(body) {
			continue
		}
		line := 1 + strings.Count(content[:loc[0]], "\n")
		findings = append(findings, sevToFinding(a.Name(), relPath, line, "hiddenComment", catalog.SeverityCritical,
			"Suspicious hidden HTML comment", ruleengine.Truncate(strings.TrimSpace(body), 120)))
	}
	return findings
}

var (
	markdownImage = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)
	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
)

func (a *PromptInjectionAnalyzer) markdownAbuseFindings(relPath, content string) []report.Finding {
	var findings []report.Finding
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lineNum := i + 1
		for _, m := range markdownImage.FindAllStringSubmatch(line, -1) {
			alt, target := m[1], strings.TrimSpace(m[2])
			if strings.HasPrefix(strings.ToLower(target), "data:") {
				findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "dataUriMarkdown", catalog.SeverityWarning,
					"Markdown image uses a data: URI", ruleengine.Truncate(target, 120)))
			}
			if len(alt) > 200 {
				findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "longAltText", catalog.SeverityWarning,
					"Markdown image alt text exceeds 200 characters", ""))
			}
		}
		for _, loc := range markdownLink.FindAllStringSubmatchIndex(line, -1) {
			if loc[0] > 0 && line[loc[0]-1] == '!' {
				continue // image, not a plain link
			}
			target := strings.TrimSpace(line[loc[4]:loc[5]])
			if strings.HasPrefix(strings.ToLower(target), "javascript:") {
				findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "jsProtocolLink", catalog.SeverityCritical,
					"Markdown link uses a javascript: target", ruleengine.Truncate(target, 120)))
			}
		}
	}
	return findings
}

// capsRun matches a contiguous run of 4+ all-caps tokens on one line,
// separated only by whitespace or light punctuation — the "shouting"
// shape spec.md §4.7 targets (e.g. "IGNORE ALL PREVIOUS INSTRUCTIONS"),
// not scattered unrelated acronyms (e.g. "JSON, YAML, TOML, and XML").
var capsRun = regexp.MustCompile(`\b[A-Z]{3,}\b(?:[\s,;:]+\b[A-Z]{3,}\b){3,}`)

var instructionalWords = map[string]struct{}{
	"IGNORE": {}, "OVERRIDE": {}, "MUST": {}, "ALWAYS": {}, "NEVER": {}, "IMPORTANT": {},
	"CRITICAL": {}, "EXECUTE": {}, "SEND": {}, "FOLLOW": {}, "OBEY": {}, "COMPLY": {},
	"DO": {}, "NOT": {}, "FORGET": {}, "DISREGARD": {},
}

func (a *PromptInjectionAnalyzer) emphaticCapsFindings(relPath, content string) []report.Finding {
	var findings []report.Finding
	for i, line := range strings.Split(content, "\n") {
		run := capsRun.FindString(line)
		if run == "" {
			continue
		}
		tokens := strings.FieldsFunc(run, func(r rune) bool { return !unicode.IsUpper(r) })
		instructional := false
		for _, tok := range tokens {
			if _, ok := instructionalWords[tok]; ok {
				instructional = true
				break
			}
		}
		if !instructional {
			continue
		}
		findings = append(findings, sevToFinding(a.Name(), relPath, i+1, "emphasisInjection", catalog.SeverityWarning,
			"Emphatic ALL-CAPS run combined with an instructional word", ruleengine.Truncate(strings.TrimSpace(line), 120)))
	}
	return findings
}
