// Package export renders a published story as a downloadable PDF.
package export

import "errors"

// Format represents the export output format.
type Format string

const FormatPDF Format = "pdf"

// Request contains parameters for an export operation.
type Request struct {
	StoryID string
	Format  Format
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrContentUnavailable indicates the story content could not be loaded.
	ErrContentUnavailable = errors.New("export content unavailable")
	// ErrPDFDependencyMissing indicates headless Chrome is not installed.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
