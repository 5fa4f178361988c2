// Package risk implements the combination-aware Risk Aggregator: it turns
// a flat finding set into a single score and verdict.
package risk

import (
	"strings"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
)

const (
	weightCritical = 10
	weightWarning  = 2
	weightInfo     = 0
)

var cliIndicators = []string{
	"cli", "command-line", "command line", "wrapper", "terminal",
	"shell command", "executes", "runs command", "run command", "spawns",
	"child_process", "subprocess", "exec(", "execsync", "spawn(",
	"tool that", "tool for", "curl", "calls the",
}

// ruleSet is the set of distinct ruleIds present across all findings.
type ruleSet map[string]struct{}

func newRuleSet(findings []report.Finding) ruleSet {
	s := make(ruleSet, len(findings))
	for _, f := range findings {
		s[f.RuleID] = struct{}{}
	}
	return s
}

func (s ruleSet) has(ids ...string) bool {
	for _, id := range ids {
		if _, ok := s[id]; ok {
			return true
		}
	}
	return false
}

func (s ruleSet) all(ids ...string) bool {
	for _, id := range ids {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}

// IsCliWrapper applies the CLI-wrapper heuristic to SKILL.md text: it is a
// false-positive guard for legitimate shell-wrapping skills, not a security
// boundary, and a malicious manifest can game it by sprinkling vocabulary.
func IsCliWrapper(skillMdText string) bool {
	lower := strings.ToLower(skillMdText)
	distinct := 0
	for _, ind := range cliIndicators {
		if strings.Contains(lower, ind) {
			distinct++
		}
	}
	return distinct >= 2
}

// Aggregate computes the Stage A / Stage B score and derives a verdict.
// isCliWrapper halves Stage A only (floor division); it never attenuates
// Stage B combination bonuses.
func Aggregate(findings []report.Finding, isCliWrapper bool) report.Risk {
	stageA := 0
	for _, f := range findings {
		switch f.Severity {
		case catalog.SeverityCritical:
			stageA += weightCritical
		case catalog.SeverityWarning:
			stageA += weightWarning
		case catalog.SeverityInfo:
			stageA += weightInfo
		}
	}
	if isCliWrapper {
		stageA /= 2
	}

	stageB := combinationBonus(newRuleSet(findings))

	score := stageA + stageB
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return report.Risk{
		Score: score,
		Level: verdictLevel(score),
		Label: verdictLabel(score),
		Emoji: verdictEmoji(score),
	}
}

func verdictLevel(score int) string {
	switch {
	case score >= 50:
		return "dangerous"
	case score >= 20:
		return "warning"
	default:
		return "safe"
	}
}

func verdictLabel(score int) string {
	switch verdictLevel(score) {
	case "dangerous":
		return "DANGEROUS"
	case "warning":
		return "WARNING"
	default:
		return "SAFE"
	}
}

func verdictEmoji(score int) string {
	switch verdictLevel(score) {
	case "dangerous":
		return "\U0001F534" // red circle
	case "warning":
		return "\U0001F7E1" // yellow circle
	default:
		return "\U0001F7E2" // green circle
	}
}

func combinationBonus(s ruleSet) int {
	exec := s.has("evalExec", "shellExecution")
	promptInjection := s.has("promptInjection", "roleHijack", "instructionOverride",
		"authoritySpoofing", "steganoInstructions", "conversationManip")
	credAccess := s.has("sshKeyAccess", "browserData", "apiKeyPatterns")
	envAccess := s.has("envFileAccess", "clawbotPaths")
	webhook := s.has("discordWebhook", "telegramBot", "slackWebhook")
	network := s.has("httpRequests", "rawSockets")
	obfuscation := s.has("jsObfuscator", "obfuscationTool", "longLine")
	blocklistedDomain := s.has("blocklistedDomain")
	blocklistedIP := s.has("blocklistedIP")
	dataExfilPrompt := s.has("dataExfilPrompt")
	fakePrerequisites := s.has("fakePrerequisites")
	externalUrls := s.has("externalUrls")

	bonus := 0

	if credAccess && (webhook || blocklistedDomain || blocklistedIP) {
		bonus += 60
	}
	if s.has("reverseShell") {
		bonus += 60
	}
	if s.has("downloadExecute") {
		bonus += 50
	}
	if promptInjection {
		bonus += 50
	}
	if dataExfilPrompt {
		bonus += 50
	}
	if s.has("hiddenCommands") {
		bonus += 50
	}
	if s.has("invisibleChars") {
		bonus += 40
	}
	if s.has("privEscalation") {
		bonus += 40
	}
	if fakePrerequisites {
		if externalUrls {
			bonus += 40
		} else {
			bonus += 25
		}
	}
	if s.has("hiddenComment") {
		bonus += 35
	}
	if obfuscation && exec {
		bonus += 35
	}
	if webhook && envAccess {
		bonus += 35
	}
	if blocklistedDomain {
		bonus += 30
	}
	if blocklistedIP {
		bonus += 30
	}
	if s.has("cronPersistence") {
		bonus += 30
	}
	if promptInjection && dataExfilPrompt {
		bonus += 20
	}
	if credAccess && network && !webhook && !blocklistedDomain {
		bonus += 15
	}
	if s.has("base64Exec") && exec {
		bonus += 15
	}
	if obfuscation && !exec {
		bonus += 10
	}
	if webhook && !credAccess && !envAccess {
		bonus += 10
	}

	return bonus
}
