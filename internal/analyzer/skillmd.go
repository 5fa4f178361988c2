package analyzer

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/mod/semver"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
	"clawscan/internal/ruleengine"
	"clawscan/internal/walker"
)

// platformDomains is the small allow-list of the platform's own domains
// excluded from the external-URL count (spec.md §4.4). Grounded on the
// teacher's default ClawHub source site.
var platformDomains = []string{"clawhub.ai"}

var externalURL = regexp.MustCompile(`https?://[^\s"'` + "`" + `<>)]+`)

var manifestMarkdown = goldmark.New(goldmark.WithExtensions(meta.Meta))

// SkillMdAnalyzer applies the skillMd rule group, invokes the code-block
// sub-pipeline, and flags short or URL-heavy manifests. It also parses
// YAML frontmatter into a Manifest, retrievable via Manifest() once
// Analyze has returned.
type SkillMdAnalyzer struct {
	patterns      *catalog.Patterns
	codeAnalyzers []Analyzer

	manifest report.Manifest
}

// NewSkillMdAnalyzer injects the four code analyzers as a pure
// capability for the code-block sub-pipeline; the SKILL.md Analyzer
// never imports itself recursively (see design note on cyclic
// invocation risk).
func NewSkillMdAnalyzer(patterns *catalog.Patterns, codeAnalyzers []Analyzer) *SkillMdAnalyzer {
	return &SkillMdAnalyzer{patterns: patterns, codeAnalyzers: codeAnalyzers}
}

func (a *SkillMdAnalyzer) Name() string { return "skillMd" }

// Manifest returns the frontmatter metadata parsed during the most
// recent Analyze call. Callers must only read it after Analyze returns.
func (a *SkillMdAnalyzer) Manifest() report.Manifest { return a.manifest }

func (a *SkillMdAnalyzer) Analyze(root string) ([]report.Finding, error) {
	path := filepath.Join(root, "SKILL.md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []report.Finding{sevToFinding(a.Name(), "SKILL.md", 0, "missingManifest", catalog.SeverityInfo,
				"No SKILL.md found — skill may be incomplete", "")}, nil
		}
		return nil, err
	}
	if len(data) > walker.MaxFileSize {
		data = data[:walker.MaxFileSize]
	}
	content := string(data)

	if err := a.patterns.CategoryErrors["skillMd"]; err != nil {
		return nil, err
	}

	var findings []report.Finding
	for _, m := range ruleengine.ScanLines(content, a.patterns.SkillMd) {
		findings = append(findings, sevToFinding(a.Name(), "SKILL.md", m.Line, m.RuleID, m.Severity, m.Description, m.Snippet))
	}

	if cbFindings, err := runCodeBlockPipeline(data, a.codeAnalyzers); err == nil {
		findings = append(findings, cbFindings...)
	}

	if len(strings.TrimSpace(content)) < 50 {
		findings = append(findings, sevToFinding(a.Name(), "SKILL.md", 0, "shortContent", catalog.SeverityWarning,
			"SKILL.md content is unusually short", ""))
	}

	if urlCount := countExternalURLs(content); urlCount > 5 {
		findings = append(findings, sevToFinding(a.Name(), "SKILL.md", 0, "manyUrls", catalog.SeverityWarning,
			fmt.Sprintf("SKILL.md references %d external URLs", urlCount), ""))
	}

	a.manifest, findings = extractManifest(a.Name(), content, findings)

	return findings, nil
}

func countExternalURLs(content string) int {
	count := 0
	for _, raw := range externalURL.FindAllString(content, -1) {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if isPlatformDomain(host) {
			continue
		}
		count++
	}
	return count
}

func isPlatformDomain(host string) bool {
	for _, d := range platformDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func extractManifest(analyzerName, content string, findings []report.Finding) (report.Manifest, []report.Finding) {
	ctx := parser.NewContext()
	if err := manifestMarkdown.Convert([]byte(content), io.Discard, parser.WithContext(ctx)); err != nil {
		return report.Manifest{}, findings
	}
	raw := meta.Get(ctx)
	var m report.Manifest
	if v, ok := raw["name"].(string); ok {
		m.Name = v
	}
	if v, ok := raw["license"].(string); ok {
		m.License = v
	}
	if v, ok := raw["version"].(string); ok {
		m.Version = v
		normalized := v
		if !strings.HasPrefix(normalized, "v") {
			normalized = "v" + normalized
		}
		if !semver.IsValid(normalized) {
			findings = append(findings, sevToFinding(analyzerName, "SKILL.md", 0, "badVersion", catalog.SeverityInfo,
				"Declared frontmatter version is not valid semver: "+v, v))
		}
	}
	return m, findings
}
