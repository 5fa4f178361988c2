package config

const (
	SchemaVersion = 1

	// DefaultMaxFileSize is the 1 MiB per-file read cap from spec.md §4.1.
	DefaultMaxFileSize = 1 << 20
)

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Catalog: CatalogConfig{
			PatternsPath:  "patterns.json",
			BlocklistPath: "blocklist.json",
		},
		Scan: ScanConfig{
			Profile:          "default",
			BlockSeverity:    "warning",
			MaxFileSizeBytes: DefaultMaxFileSize,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
