package docio

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// readPDF returns one unit per page. pdfcpu validates the file and gives
// the page count; ledongthuc/pdf extracts the text.
func readPDF(path string) ([]string, error) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	units := make([]string, pages)
	for i := 1; i <= pages && i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		units[i-1] = strings.TrimSpace(text)
	}
	return units, nil
}
