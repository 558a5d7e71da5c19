// Package results persists sweep tables as CSV and keeps a per-sweep history of
// recorded runs.
package results

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default directory names below the project root.
const (
	ReportDirName = "report"
	DataDirName   = "data"
	ImageDirName  = "img"
	RunsDirName   = "runs"
)

// ResolveImageDir returns <root>/report/img when a report directory exists,
// otherwise <root>/data/img. It does not create anything.
func ResolveImageDir(root string) string {
	reportDir := filepath.Join(root, ReportDirName)
	if info, err := os.Stat(reportDir); err == nil && info.IsDir() {
		return filepath.Join(reportDir, ImageDirName)
	}
	return filepath.Join(root, DataDirName, ImageDirName)
}

// EnsureOutputDirectory creates path and its parents.
func EnsureOutputDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("output directory path is empty")
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", path, err)
	}
	return nil
}
