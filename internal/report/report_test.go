package report

import (
	"testing"

	"clawscan/internal/catalog"
)

func TestSummarizeCountsBySeverity(t *testing.T) {
	findings := []Finding{
		{Severity: catalog.SeverityCritical},
		{Severity: catalog.SeverityCritical},
		{Severity: catalog.SeverityWarning},
		{Severity: catalog.SeverityInfo},
	}
	s := Summarize(findings)
	if s.Total != 4 || s.Critical != 2 || s.Warning != 1 || s.Info != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Critical+s.Warning+s.Info != s.Total {
		t.Fatalf("severity counts must sum to total")
	}
}

func TestSortFindingsOrdersByFileLineRule(t *testing.T) {
	findings := []Finding{
		{File: "b.sh", Line: 1, RuleID: "z"},
		{File: "a.sh", Line: 2, RuleID: "a"},
		{File: "a.sh", Line: 1, RuleID: "b"},
		{File: "a.sh", Line: 1, RuleID: "a"},
	}
	SortFindings(findings)
	want := []string{"a.sh:1:a", "a.sh:1:b", "a.sh:2:a", "b.sh:1:z"}
	for i, w := range want {
		got := findings[i].File + ":" + itoa(findings[i].Line) + ":" + findings[i].RuleID
		if got != w {
			t.Fatalf("index %d: got %s, want %s", i, got, w)
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}
