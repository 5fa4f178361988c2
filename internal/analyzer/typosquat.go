package analyzer

import (
	"os"
	"path/filepath"
	"strings"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
)

// TyposquatAnalyzer compares the skill's declared name against a list of
// popular names using edit distance and character-substitution
// heuristics attackers use to disguise a lookalike name.
type TyposquatAnalyzer struct {
	patterns *catalog.Patterns
}

func NewTyposquatAnalyzer(patterns *catalog.Patterns) *TyposquatAnalyzer {
	return &TyposquatAnalyzer{patterns: patterns}
}

func (a *TyposquatAnalyzer) Name() string { return "typosquat" }

func (a *TyposquatAnalyzer) Analyze(root string) ([]report.Finding, error) {
	dirName := normalizeName(filepath.Base(filepath.Clean(root)))
	name := deriveSkillName(root, dirName)

	whitelist := toNormalizedSet(a.patterns.Typosquat.Whitelist)
	if _, ok := whitelist[name]; ok {
		return nil, nil
	}
	if _, ok := whitelist[dirName]; ok {
		return nil, nil
	}

	var findings []report.Finding
	for _, popular := range a.patterns.Typosquat.PopularNames {
		p := normalizeName(popular)
		if p == "" || name == p {
			continue
		}

		if d := levenshtein(name, p); (d == 1 || d == 2) && max(len(name), len(p)) >= 4 {
			findings = append(findings, sevToFinding(a.Name(), "SKILL.md", 0, "levenshteinClose", catalog.SeverityWarning,
				"Skill name is a close edit-distance match to popular name "+popular, name))
		}

		// continue (not break) after each match below: a name can trip more
		// than one of these reasons against the same popular name, but we
		// only need one typosquatPattern finding per (name, popular) pair.
		if matchesSubstitution(name, p) {
			findings = append(findings, sevToFinding(a.Name(), "SKILL.md", 0, "typosquatPattern", catalog.SeverityCritical,
				"Skill name matches popular name "+popular+" via character substitution", name))
			continue
		}

		strippedName := stripSeparators(name)
		strippedPopular := stripSeparators(p)
		if strippedName == strippedPopular && name != p {
			findings = append(findings, sevToFinding(a.Name(), "SKILL.md", 0, "typosquatPattern", catalog.SeverityCritical,
				"Skill name matches popular name "+popular+" after separator stripping", name))
			continue
		}

		if strings.Contains(name, p) && len(name) <= len(p)+5 {
			findings = append(findings, sevToFinding(a.Name(), "SKILL.md", 0, "typosquatPattern", catalog.SeverityCritical,
				"Skill name is popular name "+popular+" plus a short affix", name))
		}
	}
	return findings, nil
}

func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

func toNormalizedSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[normalizeName(n)] = struct{}{}
	}
	return out
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, "_", "")
}

var substitutionPairs = []struct{ from, to string }{
	{"1", "l"}, {"l", "1"},
	{"0", "o"}, {"o", "0"},
	{"rn", "m"},
	{"vv", "w"},
}

// matchesSubstitution reports whether applying any single disguise
// substitution to name produces exactly popular.
func matchesSubstitution(name, popular string) bool {
	for _, pair := range substitutionPairs {
		if strings.ReplaceAll(name, pair.from, pair.to) == popular {
			return true
		}
	}
	return false
}

// deriveSkillName reads SKILL.md's first heading, if present, normalizing
// it the way a directory name is normalized; falls back to dirName when
// there is no manifest or no heading.
func deriveSkillName(root, dirName string) string {
	data, err := os.ReadFile(filepath.Join(root, "SKILL.md"))
	if err != nil {
		return dirName
	}
	if heading := firstHeadingText(data); heading != "" {
		return normalizeName(heading)
	}
	return dirName
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min(min(del, ins), sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
