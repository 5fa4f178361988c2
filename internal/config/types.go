package config

// Config is the frozen v1 engine configuration for a ClawScan run.
type Config struct {
	Version int           `toml:"version"`
	Catalog CatalogConfig `toml:"catalog"`
	Scan    ScanConfig    `toml:"scan"`
	Logging LoggingConfig `toml:"logging"`
}

// CatalogConfig locates the external rule/blocklist data files consumed
// by the Rule Catalog Loader.
type CatalogConfig struct {
	PatternsPath  string `toml:"patterns_path"`
	BlocklistPath string `toml:"blocklist_path"`
}

// ScanConfig controls engine-wide scan behavior.
type ScanConfig struct {
	// Profile is "default" or "strict". In "strict" profile the
	// CLI-wrapper halving (spec.md §4.9) never applies, trading the
	// false-negative risk the design notes flag for fewer false
	// negatives on manifests that game the heuristic.
	Profile string `toml:"profile"`
	// BlockSeverity is the verdict level ("safe"|"warning"|"dangerous")
	// a caller treats as blocking. It is validated and stored only: the
	// clawscan CLI's exit codes depend on the verdict alone and do not
	// read this field.
	BlockSeverity string `toml:"block_severity"`
	// MaxFileSizeBytes is a per-file size cap. It is validated and
	// stored only; the File Walker applies its own walker.MaxFileSize
	// constant and does not read this field.
	MaxFileSizeBytes int64 `toml:"max_file_size_bytes"`
}

// LoggingConfig controls the optional audit-log sidecar.
type LoggingConfig struct {
	// Path to a JSONL scan-event log. Empty disables logging.
	Path  string `toml:"path"`
	Level string `toml:"level"`
}
