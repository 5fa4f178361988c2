package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clawscan/config.toml"
	}
	return filepath.Join(home, ".clawscan", "config.toml")
}

func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}

// ResolveCatalogPaths expands and, if relative, anchors the patterns/
// blocklist paths to baseDir (typically the config file's directory), so a
// config document can reference catalog files relative to itself.
func ResolveCatalogPaths(cfg Config, baseDir string) (patternsPath, blocklistPath string, err error) {
	patternsPath, err = ExpandPath(cfg.Catalog.PatternsPath)
	if err != nil {
		return "", "", err
	}
	blocklistPath, err = ExpandPath(cfg.Catalog.BlocklistPath)
	if err != nil {
		return "", "", err
	}
	if !filepath.IsAbs(patternsPath) {
		patternsPath = filepath.Join(baseDir, patternsPath)
	}
	if !filepath.IsAbs(blocklistPath) {
		blocklistPath = filepath.Join(baseDir, blocklistPath)
	}
	return filepath.Clean(patternsPath), filepath.Clean(blocklistPath), nil
}
