package project

import (
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".go":   "text/x-go",
	".rs":   "text/rust",
	".py":   "text/python",
	".js":   "text/javascript",
	".ts":   "text/typescript",
	".json": "application/json",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
	".toml": "text/toml",
	".md":   "text/markdown",
	".txt":  "text/plain",
	".html": "text/html",
	".css":  "text/css",
	".hcl":  "text/hcl",
	".sql":  "text/x-sql",
}

// GuessMimeType maps a filename extension to a MIME type.
func GuessMimeType(filename string) string {
	if m, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return m
	}
	return "application/octet-stream"
}
