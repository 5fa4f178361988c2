package config

// Normalize fills in zero-value fields with their defaults so that a
// partially-specified TOML document behaves the same as the full default.
func Normalize(cfg Config) Config {
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	if cfg.Catalog.PatternsPath == "" {
		cfg.Catalog.PatternsPath = "patterns.json"
	}
	if cfg.Catalog.BlocklistPath == "" {
		cfg.Catalog.BlocklistPath = "blocklist.json"
	}
	if cfg.Scan.Profile == "" {
		cfg.Scan.Profile = "default"
	}
	if cfg.Scan.BlockSeverity == "" {
		cfg.Scan.BlockSeverity = "warning"
	}
	if cfg.Scan.MaxFileSizeBytes == 0 {
		cfg.Scan.MaxFileSizeBytes = DefaultMaxFileSize
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return cfg
}
