package analyzer

import (
	"net/url"
	"regexp"
	"strings"

	"clawscan/internal/catalog"
	"clawscan/internal/netmatch"
	"clawscan/internal/report"
	"clawscan/internal/ruleengine"
	"clawscan/internal/walker"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'` + "`" + `<>)]+`)

// NetworkAnalyzer applies the network rule group plus blocklist/webhook/
// TLD heuristics driven by blocklist.json and the IP/CIDR matcher.
type NetworkAnalyzer struct {
	patterns  *catalog.Patterns
	blocklist *catalog.Blocklist
}

func NewNetworkAnalyzer(patterns *catalog.Patterns, blocklist *catalog.Blocklist) *NetworkAnalyzer {
	return &NetworkAnalyzer{patterns: patterns, blocklist: blocklist}
}

func (a *NetworkAnalyzer) Name() string { return "network" }

func (a *NetworkAnalyzer) Analyze(root string) ([]report.Finding, error) {
	if err := a.patterns.CategoryErrors["network"]; err != nil {
		return nil, err
	}

	files, err := walker.Walk(root, walker.BroadExtensions)
	if err != nil {
		return nil, err
	}

	var findings []report.Finding
	for _, f := range files {
		for _, m := range ruleengine.ScanLines(f.Content, a.patterns.Network) {
			findings = append(findings, sevToFinding(a.Name(), f.RelPath, m.Line, m.RuleID, m.Severity, m.Description, m.Snippet))
		}
		findings = append(findings, a.scanLineHeuristics(f.RelPath, f.Content)...)
	}
	return findings, nil
}

func (a *NetworkAnalyzer) scanLineHeuristics(relPath, content string) []report.Finding {
	var findings []report.Finding
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lineNum := i + 1
		lower := strings.ToLower(line)

		for domain := range a.blocklist.Domains {
			if strings.Contains(lower, strings.ToLower(domain)) {
				findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "blocklistedDomain", catalog.SeverityCritical,
					"Blocklisted domain referenced: "+domain, ruleengine.Truncate(strings.TrimSpace(line), 120)))
			}
		}

		for _, ip := range netmatch.ExtractIPv4Literals(line) {
			if netmatch.MatchesBlocklist(ip, a.blocklist.IPs) {
				findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "blocklistedIP", catalog.SeverityCritical,
					"Blocklisted IP referenced: "+ip, ruleengine.Truncate(strings.TrimSpace(line), 120)))
			}
		}

		if a.blocklist.DiscordWebhookPattern != nil && a.blocklist.DiscordWebhookPattern.MatchString(line) {
			findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "discordWebhook", catalog.SeverityCritical,
				"Discord webhook URL detected", ruleengine.Truncate(strings.TrimSpace(line), 120)))
		}
		if a.blocklist.TelegramBotPattern != nil && a.blocklist.TelegramBotPattern.MatchString(line) {
			findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "telegramBot", catalog.SeverityCritical,
				"Telegram bot API URL detected", ruleengine.Truncate(strings.TrimSpace(line), 120)))
		}
		if a.blocklist.SlackWebhookPattern != nil && a.blocklist.SlackWebhookPattern.MatchString(line) {
			findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "slackWebhook", catalog.SeverityWarning,
				"Slack webhook URL detected", ruleengine.Truncate(strings.TrimSpace(line), 120)))
		}

		for _, raw := range urlPattern.FindAllString(line, -1) {
			u, err := url.Parse(raw)
			if err != nil || u.Hostname() == "" {
				continue
			}
			host := strings.ToLower(u.Hostname())
			if idx := strings.LastIndexByte(host, '.'); idx >= 0 {
				tld := host[idx+1:]
				if _, bad := a.blocklist.SuspiciousTLDs[tld]; bad {
					findings = append(findings, sevToFinding(a.Name(), relPath, lineNum, "suspiciousTld", catalog.SeverityWarning,
						"URL host ends with a suspicious TLD: "+host, ruleengine.Truncate(raw, 120)))
				}
			}
		}
	}
	return findings
}
