package terminology

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/valpere/agentran/internal/failure"
)

// Formats lists the accepted glossary file extensions.
var Formats = []string{"csv", "tsv", "xlsx", "json", "yaml", "yml", "toml", "txt"}

// ParseFile loads a glossary, choosing the parser by file extension.
func ParseFile(path string) (Map, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supported(format) {
		return Map{}, failure.Newf(failure.UnsupportedInput, "load glossary "+filepath.Base(path),
			"unsupported terminology file format: %q (supported: %s)", format, strings.Join(Formats, ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return Map{}, failure.New(failure.TerminologySource, "load glossary "+filepath.Base(path), err)
	}
	defer f.Close()

	m, err := Parse(f, format)
	if err != nil {
		return Map{}, failure.New(failure.TerminologySource, "load glossary "+filepath.Base(path), err)
	}
	return m, nil
}

// Parse reads a glossary in the given format (an extension without the dot).
func Parse(r io.Reader, format string) (Map, error) {
	switch format {
	case "csv":
		return parseDelimited(r, ',')
	case "tsv":
		return parseDelimited(r, '\t')
	case "xlsx":
		return parseXLSX(r)
	case "json":
		var raw map[string]any
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return Map{}, fmt.Errorf("JSON must be an object of terms: %w", err)
		}
		return fromMapping(raw)
	case "yaml", "yml":
		var raw map[string]any
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
			return Map{}, fmt.Errorf("YAML must be a mapping of terms: %w", err)
		}
		return fromMapping(raw)
	case "toml":
		var raw map[string]any
		if err := toml.NewDecoder(r).Decode(&raw); err != nil {
			return Map{}, fmt.Errorf("invalid TOML glossary: %w", err)
		}
		return fromMapping(raw)
	case "txt":
		return parseLines(r)
	default:
		return Map{}, failure.Newf(failure.UnsupportedInput, "parse glossary", "unsupported terminology file format: %q", format)
	}
}

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// fromMapping accepts a flat mapping whose values are scalars.
func fromMapping(raw map[string]any) (Map, error) {
	entries := make(map[string]string, len(raw))
	for src, v := range raw {
		switch v := v.(type) {
		case string:
			entries[src] = v
		case bool, int, int64, uint64, float64:
			entries[src] = fmt.Sprint(v)
		default:
			return Map{}, fmt.Errorf("term %q must map to a single target term, got %T", src, v)
		}
	}
	return New(entries), nil
}

func parseDelimited(r io.Reader, comma rune) (Map, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return Map{}, fmt.Errorf("failed to read delimited glossary: %w", err)
	}
	return fromRows(rows)
}

func parseXLSX(r io.Reader) (Map, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Map{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Map{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Map{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// fromRows takes the first two columns of each row. A first row whose two
// cells are both column names ("source", "term", "target", "translation")
// is skipped.
func fromRows(rows [][]string) (Map, error) {
	if len(rows) == 0 {
		return Map{}, nil
	}
	widest := 0
	for _, row := range rows {
		if len(row) > widest {
			widest = len(row)
		}
	}
	if widest < 2 {
		return Map{}, fmt.Errorf("glossary must have at least 2 columns: source term and target term")
	}

	if isHeader(rows[0]) {
		rows = rows[1:]
	}
	entries := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		entries[row[0]] = row[1]
	}
	return New(entries), nil
}

var headerWords = map[string]bool{
	"source":      true,
	"source term": true,
	"term":        true,
	"target":      true,
	"target term": true,
	"translation": true,
}

// isHeader reports whether both leading cells are column names rather
// than glossary content.
func isHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	second := strings.ToLower(strings.TrimSpace(row[1]))
	return headerWords[first] && headerWords[second]
}

// parseLines reads "source<TAB>target" or "source:target" lines. Blank
// lines, lines starting with '#', and lines with neither separator are
// ignored.
func parseLines(r io.Reader) (Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Map{}, fmt.Errorf("failed to read glossary: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	entries := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var src, tgt string
		var ok bool
		if strings.Contains(line, "\t") {
			src, tgt, ok = strings.Cut(line, "\t")
		} else {
			src, tgt, ok = strings.Cut(line, ":")
		}
		if !ok {
			continue
		}
		entries[strings.TrimSpace(src)] = strings.TrimSpace(tgt)
	}
	if err := sc.Err(); err != nil {
		return Map{}, fmt.Errorf("failed to read glossary: %w", err)
	}
	return New(entries), nil
}
