package analyzer

import (
	"strings"
	"testing"
)

func TestObfuscationAnalyzerThreeHexIdentifiersNoFinding(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "app.js", "var _0xabc1=1;var _0xabc2=2;var _0xabc3=3;\n")

	a := NewObfuscationAnalyzer(emptyPatterns())
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, f := range findings {
		if f.RuleID == "jsObfuscator" {
			t.Fatalf("3 occurrences should not trigger jsObfuscator: %+v", findings)
		}
	}
}

func TestObfuscationAnalyzerFourHexIdentifiersTriggers(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "app.js", "var _0xabc1=1;var _0xabc2=2;var _0xabc3=3;var _0xabc4=4;\n")

	a := NewObfuscationAnalyzer(emptyPatterns())
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.RuleID == "jsObfuscator" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected jsObfuscator finding for 4 occurrences, got %+v", findings)
	}
}

func TestObfuscationAnalyzerFlagsKnownToolSignature(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "bundle.js", "/* obfuscated by javascript-obfuscator */\n")

	a := NewObfuscationAnalyzer(emptyPatterns())
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.RuleID == "obfuscationTool" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected obfuscationTool finding, got %+v", findings)
	}
}

func TestObfuscationAnalyzerFlagsLongLineExceptJSON(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("a", 600)
	writeSkillFile(t, dir, "bundle.js", long+"\n")
	writeSkillFile(t, dir, "data.json", `{"value":"`+long+`"}`)

	a := NewObfuscationAnalyzer(emptyPatterns())
	findings, err := a.Analyze(dir)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var sawJS, sawJSON bool
	for _, f := range findings {
		if f.RuleID == "longLine" {
			if f.File == "bundle.js" {
				sawJS = true
			}
			if f.File == "data.json" {
				sawJSON = true
			}
		}
	}
	if !sawJS {
		t.Fatalf("expected longLine finding for .js file")
	}
	if sawJSON {
		t.Fatalf("did not expect longLine finding for .json file")
	}
}
