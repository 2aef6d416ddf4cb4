// Package printing renders order invoices to PDF with headless Chrome.
package printing

import (
	"context"
	"errors"
)

// PDFRenderer converts a complete HTML document to PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}

var (
	// ErrEmptyHTML is returned for blank documents
	ErrEmptyHTML = errors.New("HTML content is empty")
	// ErrRenderTimeout is returned when Chrome does not finish in time
	ErrRenderTimeout = errors.New("PDF rendering timed out")
)
