package risk

import (
	"testing"

	"clawscan/internal/catalog"
	"clawscan/internal/report"
)

func f(ruleID string, sev catalog.Severity) report.Finding {
	return report.Finding{RuleID: ruleID, Severity: sev, File: "SKILL.md"}
}

func TestAggregateEmptyFindingsIsSafe(t *testing.T) {
	risk := Aggregate(nil, false)
	if risk.Score != 0 || risk.Level != "safe" {
		t.Fatalf("expected score 0 / safe, got %+v", risk)
	}
}

func TestAggregateShortContentOnlyScoresTwo(t *testing.T) {
	findings := []report.Finding{f("shortContent", catalog.SeverityWarning)}
	risk := Aggregate(findings, false)
	if risk.Score != 2 {
		t.Fatalf("expected score 2, got %d", risk.Score)
	}
	if risk.Level != "safe" {
		t.Fatalf("expected safe, got %s", risk.Level)
	}
}

func TestAggregateDownloadExecuteAndBlocklistedIPReachesHundred(t *testing.T) {
	findings := []report.Finding{
		f("blocklistedIP", catalog.SeverityCritical),
		f("downloadExecute", catalog.SeverityCritical),
	}
	risk := Aggregate(findings, false)
	// StageA = 10 + 10 = 20, StageB = 50 (downloadExecute) + 30 (blocklistedIP) = 80
	if risk.Score != 100 {
		t.Fatalf("expected score 100, got %d", risk.Score)
	}
	if risk.Level != "dangerous" {
		t.Fatalf("expected dangerous, got %s", risk.Level)
	}
}

func TestAggregatePromptInjectionCombinationReachesHundred(t *testing.T) {
	findings := []report.Finding{
		f("instructionOverride", catalog.SeverityCritical),
		f("dataExfilPrompt", catalog.SeverityCritical),
		f("blocklistedDomain", catalog.SeverityCritical),
		f("emphasisInjection", catalog.SeverityWarning),
	}
	risk := Aggregate(findings, false)
	// StageA = 10+10+10+2 = 32
	// StageB = promptInjection(+50) + dataExfilPrompt(+50) + blocklistedDomain(+30)
	//        + promptInjection&dataExfilPrompt(+20) = 150, clamped with StageA to 100
	if risk.Score != 100 {
		t.Fatalf("expected score 100, got %d", risk.Score)
	}
	if risk.Level != "dangerous" {
		t.Fatalf("expected dangerous, got %s", risk.Level)
	}
}

func TestAggregateTyposquatAloneHasNoComboBonus(t *testing.T) {
	findings := []report.Finding{f("typosquatPattern", catalog.SeverityCritical)}
	risk := Aggregate(findings, false)
	if risk.Score != 10 {
		t.Fatalf("expected score 10 (StageA only, no combo bonus), got %d", risk.Score)
	}
	if risk.Level != "safe" {
		t.Fatalf("expected safe, got %s", risk.Level)
	}
}

func TestAggregateCliWrapperHalvesStageAOnly(t *testing.T) {
	findings := []report.Finding{
		f("evalExec", catalog.SeverityCritical),
		f("evalExec", catalog.SeverityCritical),
		f("evalExec", catalog.SeverityCritical),
	}
	without := Aggregate(findings, false)
	with := Aggregate(findings, true)
	if with.Score != without.Score/2 {
		t.Fatalf("expected halved stage A score, got with=%d without=%d", with.Score, without.Score)
	}
}

func TestAggregateCliWrapperDoesNotHalveComboBonus(t *testing.T) {
	findings := []report.Finding{
		f("downloadExecute", catalog.SeverityCritical),
	}
	with := Aggregate(findings, true)
	// StageA = 10 -> halved to 5; StageB = 50 (never halved)
	if with.Score != 55 {
		t.Fatalf("expected score 55, got %d", with.Score)
	}
}

func TestAggregateScoreNeverExceedsHundred(t *testing.T) {
	var findings []report.Finding
	for i := 0; i < 30; i++ {
		findings = append(findings, f("evalExec", catalog.SeverityCritical))
	}
	risk := Aggregate(findings, false)
	if risk.Score != 100 {
		t.Fatalf("expected clamp at 100, got %d", risk.Score)
	}
}

func TestIsCliWrapperRequiresTwoDistinctIndicators(t *testing.T) {
	if IsCliWrapper("this is just a cli") {
		t.Fatalf("single indicator should not classify as CLI wrapper")
	}
	if !IsCliWrapper("this cli tool is a wrapper around curl") {
		t.Fatalf("expected three distinct indicators to classify as CLI wrapper")
	}
}

func TestVerdictThresholds(t *testing.T) {
	cases := []struct {
		score int
		level string
	}{
		{0, "safe"},
		{19, "safe"},
		{20, "warning"},
		{49, "warning"},
		{50, "dangerous"},
		{100, "dangerous"},
	}
	for _, c := range cases {
		if got := verdictLevel(c.score); got != c.level {
			t.Fatalf("score %d: expected %s, got %s", c.score, c.level, got)
		}
	}
}
