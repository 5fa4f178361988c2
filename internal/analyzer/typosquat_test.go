package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"clawscan/internal/catalog"
)

func typosquatPatterns(popular, whitelist []string) *catalog.Patterns {
	return &catalog.Patterns{
		Typosquat: catalog.TyposquatData{PopularNames: popular, Whitelist: whitelist},
	}
}

func TestTyposquatAnalyzerSubstitutionMatch(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "SKILL.md", "# he11o\n\nsome content\n")

	a := NewTyposquatAnalyzer(typosquatPatterns([]string{"hello"}, nil))
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.RuleID == "typosquatPattern" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected typosquatPattern finding, got %+v", findings)
	}
}

func TestTyposquatAnalyzerSeparatorStripping(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "SKILL.md", "# web--search\n\nsome content\n")

	a := NewTyposquatAnalyzer(typosquatPatterns([]string{"websearch"}, nil))
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.RuleID == "typosquatPattern" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected typosquatPattern finding via separator stripping, got %+v", findings)
	}
}

func TestTyposquatAnalyzerAffixAddition(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "SKILL.md", "# github-pro\n\nsome content\n")

	a := NewTyposquatAnalyzer(typosquatPatterns([]string{"github"}, nil))
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.RuleID == "typosquatPattern" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected typosquatPattern finding for short affix, got %+v", findings)
	}
}

func TestTyposquatAnalyzerWhitelistedNameReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "SKILL.md", "# he11o\n\nsome content\n")

	a := NewTyposquatAnalyzer(typosquatPatterns([]string{"hello"}, []string{"he11o"}))
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings for whitelisted name, got %+v", findings)
	}
}

func TestTyposquatAnalyzerFallsBackToDirName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "s1ack")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// no SKILL.md at all; directory basename "s1ack" should be used
	a := NewTyposquatAnalyzer(typosquatPatterns([]string{"slack"}, nil))
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.RuleID == "typosquatPattern" && f.Match == "s1ack" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected typosquatPattern finding for directory name s1ack, got %+v", findings)
	}
}

func TestTyposquatAnalyzerLevenshteinClose(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "SKILL.md", "# slak\n\nsome content\n")

	a := NewTyposquatAnalyzer(typosquatPatterns([]string{"slack"}, nil))
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.RuleID == "levenshteinClose" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected levenshteinClose finding, got %+v", findings)
	}
}
