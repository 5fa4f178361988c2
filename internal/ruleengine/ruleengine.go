// Package ruleengine applies a compiled rule table to a file's text,
// producing one Finding per matching line per rule. Every matching line
// produces a finding — unlike a "first match wins" shortcut, the engine
// never stops scanning a rule early, since a rule-combination risk model
// needs every occurrence a rule fires on, not just its existence.
package ruleengine

import (
	"strings"

	"clawscan/internal/catalog"
)

// snippetLimit is the max length of a trimmed match snippet per spec.md
// §4.2. The credentials analyzer's secret heuristics do not go through
// ScanLines and apply their own 40-char cap.
const snippetLimit = 120

// Match is one line matching one rule.
type Match struct {
	RuleID      string
	Severity    catalog.Severity
	Description string
	Line        int // 1-based
	Snippet     string
}

// ScanLines runs every rule in rules against content, split on "\n" (CR
// is left attached to the line, matching spec.md §4.2's LF-based split).
// Multiple rules may fire on the same line; each produces a separate
// Match.
func ScanLines(content string, rules []catalog.Rule) []Match {
	if len(rules) == 0 {
		return nil
	}
	lines := strings.Split(content, "\n")
	var out []Match
	for _, rule := range rules {
		for i, line := range lines {
			loc := rule.Pattern.FindStringIndex(line)
			if loc == nil {
				continue
			}
			out = append(out, Match{
				RuleID:      rule.ID,
				Severity:    rule.Severity,
				Description: rule.Description,
				Line:        i + 1,
				Snippet:     Truncate(strings.TrimSpace(line[loc[0]:loc[1]]), snippetLimit),
			})
		}
	}
	return out
}

// Truncate trims s to at most n characters, appending "..." when it was
// longer, as spec.md's match-snippet discipline requires throughout.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
