package printing

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PaperSize names an ISO 216 sheet.
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4"
	PaperSizeA5 PaperSize = "A5"
)

// sheet returns the portrait width and height in millimetres.
func (p PaperSize) sheet() (w, h float64, ok bool) {
	switch p {
	case PaperSizeA4:
		return 210, 297, true
	case PaperSizeA5:
		return 148, 210, true
	}
	return 0, 0, false
}

func (p PaperSize) IsValid() bool {
	_, _, ok := p.sheet()
	return ok
}

type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins are in millimetres.
type Margins struct {
	Top, Right, Bottom, Left int
}

// DefaultMargins frame devis, factures and bons de livraison.
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 12, Bottom: 15, Left: 12}
}

// RenderRequest is one HTML page to print. HTML may be a fragment, in which
// case it is wrapped in a UTF-8 document titled Title.
type RenderRequest struct {
	HTML        string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
	Title       string
	// FooterHTML is repeated on every page; Chrome fills the pageNumber and
	// totalPages classes.
	FooterHTML string
	// Timeout replaces the renderer default when set.
	Timeout time.Duration
}

func (r *RenderRequest) validate() error {
	switch {
	case r == nil:
		return NewRenderError(ErrCodeInvalidHTML, "no render request", nil)
	case strings.TrimSpace(r.HTML) == "":
		return NewRenderError(ErrCodeInvalidHTML, "empty HTML", nil)
	case !r.PaperSize.IsValid():
		return NewRenderError(ErrCodeInvalidPaperSize, fmt.Sprintf("unsupported paper size %q", r.PaperSize), nil)
	}
	return nil
}

type RenderResult struct {
	PDFData   []byte
	PageCount int
	Duration  time.Duration
}

// HTMLRenderer prints HTML pages to PDF.
type HTMLRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
	ErrCodeBusy             = "RENDERER_BUSY"
)

// RenderError carries a stable code alongside the underlying failure.
type RenderError struct {
	Code    string
	Message string
	Err     error
}

func NewRenderError(code, message string, err error) *RenderError {
	return &RenderError{Code: code, Message: message, Err: err}
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *RenderError) Unwrap() error { return e.Err }
