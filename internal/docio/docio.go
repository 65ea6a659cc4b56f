// Package docio extracts translatable text from documents and writes
// translated documents back out in their source format.
package docio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/agentran/internal/failure"
)

// DefaultMaxSize is the largest accepted input file.
const DefaultMaxSize = 25 << 20

// Extensions lists the accepted input formats.
var Extensions = []string{".txt", ".md", ".json", ".html", ".htm", ".docx", ".pptx", ".pdf"}

// Document is extracted source text split into structural units: one per
// slide for PPTX, one per page for PDF, a single unit otherwise.
type Document struct {
	Path   string
	Format string
	Units  []string
}

func (d *Document) UnitCount() int { return len(d.Units) }

// Text joins the units with blank lines.
func (d *Document) Text() string {
	return strings.Join(d.Units, unitSeparator)
}

// Final is a finalized chunk translation and the unit it belongs to.
type Final struct {
	Unit int
	Text string
}

const (
	chunkSeparator = "\n"
	unitSeparator  = "\n\n"
)

// Read validates and extracts path. Files larger than maxSize (≤ 0 means
// DefaultMaxSize) and unknown extensions are rejected before anything is
// parsed.
func Read(path string, maxSize int64) (*Document, error) {
	const op = "read document"
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, failure.New(failure.UnsupportedInput, op, fmt.Errorf("file not found: %w", err))
	}
	if info.IsDir() {
		return nil, failure.Newf(failure.UnsupportedInput, op, "%s is a directory", path)
	}
	if info.Size() > maxSize {
		return nil, failure.Newf(failure.UnsupportedInput, op,
			"file size exceeds the maximum limit of %.0fMB. Current size: %.2fMB",
			float64(maxSize)/(1<<20), float64(info.Size())/(1<<20))
	}

	format := formatOf(path)
	var units []string
	switch format {
	case ".txt", ".md":
		units, err = readText(path)
	case ".json":
		units, err = readJSON(path)
	case ".html":
		units, err = readHTML(path)
	case ".docx":
		units, err = readDOCX(path)
	case ".pptx":
		units, err = readPPTX(path)
	case ".pdf":
		units, err = readPDF(path)
	default:
		return nil, failure.Newf(failure.UnsupportedInput, op, "unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, failure.New(failure.UnsupportedInput, op, err)
	}

	return &Document{Path: path, Format: format, Units: units}, nil
}

func formatOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".htm" {
		return ".html"
	}
	return ext
}

// OutputPath is where Write puts the translation of doc: next to the
// source, or in dir when it is set. PDF is written as plain text.
func OutputPath(doc *Document, dir string) string {
	ext := filepath.Ext(doc.Path)
	if doc.Format == ".pdf" {
		ext = ".txt"
	}
	return siblingPath(doc.Path, dir, "_translated"+ext)
}

// DetailsPath is where WriteDetails puts the session record.
func DetailsPath(doc *Document, dir string) string {
	return siblingPath(doc.Path, dir, "_details.json")
}

func siblingPath(src, dir, suffix string) string {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, name+suffix)
}

// Write writes the translated document and returns its path. Finals must
// be in chunk order; every Unit must be a unit of doc.
func Write(doc *Document, finals []Final, dir string) (string, error) {
	units, err := group(doc, finals)
	if err != nil {
		return "", err
	}

	out := OutputPath(doc, dir)
	switch doc.Format {
	case ".docx":
		err = writeDOCX(out, units)
	case ".pptx":
		err = writePPTX(doc.Path, out, units)
	case ".json":
		err = writeJSON(out, units)
	case ".html":
		err = writeHTML(out, units)
	default:
		err = os.WriteFile(out, []byte(joinUnits(units)), 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

// WriteDetails writes details as indented JSON and returns the path.
func WriteDetails(doc *Document, details any, dir string) (string, error) {
	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode details: %w", err)
	}
	out := DetailsPath(doc, dir)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

// group collects finalized texts per unit. A unit outside the document is
// a hard error; units without chunks stay nil.
func group(doc *Document, finals []Final) ([][]string, error) {
	units := make([][]string, doc.UnitCount())
	for i, f := range finals {
		if f.Unit < 0 || f.Unit >= len(units) {
			return nil, failure.Newf(failure.Internal, "write document",
				"chunk %d maps to unit %d but %s has %d units", i+1, f.Unit, filepath.Base(doc.Path), len(units))
		}
		units[f.Unit] = append(units[f.Unit], f.Text)
	}
	return units, nil
}

func joinUnits(units [][]string) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		if len(u) > 0 {
			parts = append(parts, strings.Join(u, chunkSeparator))
		}
	}
	return strings.Join(parts, unitSeparator)
}
