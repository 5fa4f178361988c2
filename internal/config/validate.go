package config

import "fmt"

var allowedProfiles = map[string]struct{}{
	"default": {},
	"strict":  {},
}

var allowedVerdicts = map[string]struct{}{
	"safe":      {},
	"warning":   {},
	"dangerous": {},
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate rejects a config document that Normalize has already filled in
// but that still carries out-of-range or unrecognized values.
func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("CFG_VERSION: unsupported config version %d", cfg.Version)
	}
	if cfg.Catalog.PatternsPath == "" {
		return fmt.Errorf("CFG_CATALOG_PATTERNS: patterns_path must not be empty")
	}
	if cfg.Catalog.BlocklistPath == "" {
		return fmt.Errorf("CFG_CATALOG_BLOCKLIST: blocklist_path must not be empty")
	}
	if _, ok := allowedProfiles[cfg.Scan.Profile]; !ok {
		return fmt.Errorf("CFG_SCAN_PROFILE: invalid profile %q", cfg.Scan.Profile)
	}
	if _, ok := allowedVerdicts[cfg.Scan.BlockSeverity]; !ok {
		return fmt.Errorf("CFG_SCAN_BLOCK_SEVERITY: invalid block_severity %q", cfg.Scan.BlockSeverity)
	}
	if cfg.Scan.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("CFG_SCAN_MAX_FILE_SIZE: max_file_size_bytes must be positive")
	}
	if cfg.Logging.Level != "" {
		if _, ok := allowedLogLevels[cfg.Logging.Level]; !ok {
			return fmt.Errorf("CFG_LOGGING_LEVEL: invalid level %q", cfg.Logging.Level)
		}
	}
	return nil
}
