// Package extract runs the OCR extraction collaborator and validates its
// page-structured output.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout is returned when the extraction process exceeds its
	// time budget.
	ErrTimeout = errors.New("extraction timed out")

	// ErrNoPages is returned when an extraction reports no pages.
	ErrNoPages = errors.New("extraction returned no pages")
)

// ReportedError is an error the extraction process reported in its
// output.
type ReportedError struct {
	Message string
}

func (e *ReportedError) Error() string {
	return "extraction failed: " + e.Message
}

// Extractor turns a document into a Raw extraction.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Raw, error)
}

// Raw is the page-structured output of the extraction process.
type Raw struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	PDFPath string `json:"pdf_path,omitempty"`
	Pages   []Page `json:"pages"`

	source []byte
}

// Page is one document page.
type Page struct {
	Page   int     `json:"page"`
	Text   string  `json:"text"`
	Tables []Table `json:"tables"`
}

// Table is a detected table region with its OCR text.
type Table struct {
	BBox    []float64 `json:"bbox"`
	OCRText string    `json:"ocr_text"`
}

// Parse decodes extraction output.
func Parse(data []byte) (*Raw, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("extraction output is empty")
	}
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode extraction output: %w", err)
	}
	raw.source = data
	return &raw, nil
}

// Validate fails when the extraction reported an error or has no pages.
func (r *Raw) Validate() error {
	if r.Error != "" {
		return &ReportedError{Message: r.Error}
	}
	if strings.EqualFold(r.Status, "error") {
		return &ReportedError{Message: "status error"}
	}
	if len(r.Pages) == 0 {
		return ErrNoPages
	}
	return nil
}

// JSON returns the extraction as the oracle sees it: the original output
// when available, otherwise a fresh encoding.
func (r *Raw) JSON() string {
	if len(r.source) > 0 {
		return string(r.source)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(data)
}

// Text concatenates page text and table OCR text in page order.
func (r *Raw) Text() string {
	var b strings.Builder
	for _, p := range r.Pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}
		for _, tbl := range p.Tables {
			if t := strings.TrimSpace(tbl.OCRText); t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
