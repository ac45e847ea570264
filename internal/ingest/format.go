package ingest

import (
	"path/filepath"
	"strings"
)

// Format identifies the parsing strategy for an uploaded file. It is
// resolved once from the filename extension and switched on afterwards.
type Format int

const (
	FormatPlainText Format = iota
	FormatMarkdown
	FormatPDF
)

// ResolveFormat maps a filename extension to its Format. Unknown or missing
// extensions default to plain text.
func ResolveFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md":
		return FormatMarkdown
	case ".pdf":
		return FormatPDF
	default:
		return FormatPlainText
	}
}

func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatPDF:
		return "pdf"
	default:
		return "plaintext"
	}
}
