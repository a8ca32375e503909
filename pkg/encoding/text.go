// Package encoding provides text decoding and path helpers for exported
// game-world files.
package encoding

import (
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewReader wraps r so that the returned reader always yields UTF-8.
// A leading UTF-8 BOM is dropped and UTF-16 input (either endianness,
// detected by its BOM) is transcoded. Input without a BOM passes through
// as UTF-8.
func NewReader(r io.Reader) io.Reader {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(r, decoder)
}

// NormalizePath converts an exported path to the host separator.
// Exporters running on Windows write backslashes even in relative paths.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return filepath.FromSlash(path)
}

// ResolvePath resolves an exported path against baseDir. Absolute paths are
// kept as-is; the result is always cleaned.
func ResolvePath(baseDir, path string) string {
	path = NormalizePath(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// TrimExt returns path without its extension.
func TrimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
