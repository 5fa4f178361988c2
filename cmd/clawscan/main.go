package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clawscan/internal/auditlog"
	"clawscan/internal/catalog"
	"clawscan/internal/config"
	"clawscan/internal/report"
	"clawscan/internal/scan"
)

// ExitCoder lets a command report a specific process exit code instead of
// the default 1, per spec.md §6's conventional safe/warning/dangerous/
// scan-error mapping.
type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ex, ok := err.(ExitCoder); ok {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "clawscan",
		Short:         "Pre-install security scanner for agent skills",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(newScanCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newRulesCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newVersionCmd())

	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

// loadEngine reads the config document and the two catalog files it
// points at, returning an orchestrator ready to scan.
func loadEngine(configPath string) (*scan.Orchestrator, config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Ensure(path)
	if err != nil {
		return nil, config.Config{}, err
	}

	patternsPath, blocklistPath, err := config.ResolveCatalogPaths(cfg, filepath.Dir(path))
	if err != nil {
		return nil, config.Config{}, err
	}

	patterns, err := catalog.LoadPatterns(patternsPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	blocklist, err := catalog.LoadBlocklist(blocklistPath)
	if err != nil {
		return nil, config.Config{}, err
	}

	logger := auditlog.New(cfg.Logging.Path)
	orch := scan.New(&patterns, &blocklist).
		WithLogger(logger).
		WithStrictProfile(cfg.Scan.Profile == "strict")
	return orch, cfg, nil
}

func newScanCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a skill directory and print a risk verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cfg, err := loadEngine(*configPath)
			if err != nil {
				return &exitError{code: 3, msg: err.Error()}
			}

			rep, err := orch.Scan(args[0])
			if err != nil {
				return &exitError{code: 3, msg: err.Error()}
			}

			if *jsonOutput {
				blob, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return &exitError{code: 3, msg: err.Error()}
				}
				fmt.Println(string(blob))
			} else {
				printReport(rep)
			}

			return exitForVerdict(rep, cfg)
		},
	}
}

func printReport(rep report.ScanReport) {
	fmt.Printf("%s %s  score=%d  (%d critical, %d warning, %d info)\n",
		rep.Risk.Emoji, rep.Risk.Label, rep.Risk.Score,
		rep.Summary.Critical, rep.Summary.Warning, rep.Summary.Info)
	for _, f := range rep.Findings {
		if f.Line > 0 {
			fmt.Printf("  [%s] %s:%d %s (%s)\n", f.Severity, f.File, f.Line, f.Message, f.RuleID)
		} else {
			fmt.Printf("  [%s] %s %s (%s)\n", f.Severity, f.File, f.Message, f.RuleID)
		}
	}
	for _, a := range rep.Analyzers {
		if a.Status == "error" {
			fmt.Printf("  analyzer %s failed: %s\n", a.Name, a.Error)
		}
	}
}

// exitForVerdict maps the verdict to the shipped CLI's conventional exit
// codes (safe→0, warning→1, dangerous→2); this mapping is a property of
// the CLI wrapper, not the core scanner.
func exitForVerdict(rep report.ScanReport, cfg config.Config) error {
	switch rep.Risk.Level {
	case "dangerous":
		return &exitError{code: 2, msg: fmt.Sprintf("dangerous skill: score %d", rep.Risk.Score)}
	case "warning":
		return &exitError{code: 1, msg: fmt.Sprintf("warning: score %d", rep.Risk.Score)}
	default:
		return nil
	}
}

func newRulesCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	rulesCmd := &cobra.Command{Use: "rules", Short: "Inspect the loaded rule catalog"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all loaded rules by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			cfg, err := config.Ensure(path)
			if err != nil {
				return &exitError{code: 3, msg: err.Error()}
			}
			patternsPath, _, err := config.ResolveCatalogPaths(cfg, filepath.Dir(path))
			if err != nil {
				return &exitError{code: 3, msg: err.Error()}
			}
			patterns, err := catalog.LoadPatterns(patternsPath)
			if err != nil {
				return &exitError{code: 3, msg: err.Error()}
			}

			if *jsonOutput {
				blob, err := json.MarshalIndent(patterns, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(blob))
				return nil
			}

			printRuleGroup("skillMd", patterns.SkillMd)
			printRuleGroup("execution", patterns.Execution)
			printRuleGroup("network", patterns.Network)
			printRuleGroup("credentials", patterns.Credentials)
			printRuleGroup("obfuscation", patterns.Obfuscation)
			printRuleGroup("promptInjection", patterns.PromptInjection)
			for category, catErr := range patterns.CategoryErrors {
				fmt.Printf("  category %s failed to load: %v\n", category, catErr)
			}
			return nil
		},
	}
	rulesCmd.AddCommand(listCmd)
	return rulesCmd
}

func printRuleGroup(name string, rules []catalog.Rule) {
	fmt.Printf("%s (%d rules)\n", name, len(rules))
	for _, r := range rules {
		fmt.Printf("  %-24s %-8s %s\n", r.ID, r.Severity, r.Description)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("clawscan (config schema v%d)\n", config.SchemaVersion)
			return nil
		},
	}
}
