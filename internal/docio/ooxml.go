package docio

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Office Open XML parts are rewritten in place with regular expressions so
// that unknown markup survives byte for byte.
var (
	wordParaRe  = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	wordTextRe  = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)
	drawParaRe  = regexp.MustCompile(`(?s)<a:p[ >].*?</a:p>`)
	drawTextRe  = regexp.MustCompile(`(?s)<a:t(?:\s[^>]*)?>(.*?)</a:t>`)
	slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

// paragraphs returns the non-blank paragraph texts of an XML part.
func paragraphs(part string, paraRe, textRe *regexp.Regexp) []string {
	var out []string
	for _, p := range paraRe.FindAllString(part, -1) {
		if text := paragraphText(p, textRe); strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	}
	return out
}

func paragraphText(p string, textRe *regexp.Regexp) string {
	var b strings.Builder
	for _, m := range textRe.FindAllStringSubmatch(p, -1) {
		b.WriteString(html.UnescapeString(m[1]))
	}
	return b.String()
}

// replaceParagraphs puts lines into the non-blank paragraphs of part in
// order. The first run of a paragraph takes its line and later runs are
// emptied; surplus lines go into the last paragraph, surplus paragraphs
// are emptied.
func replaceParagraphs(part string, paraRe, textRe *regexp.Regexp, lines []string) string {
	total := len(paragraphs(part, paraRe, textRe))
	idx := 0
	return paraRe.ReplaceAllStringFunc(part, func(p string) string {
		if strings.TrimSpace(paragraphText(p, textRe)) == "" {
			return p
		}

		var text string
		switch {
		case idx >= len(lines):
		case idx == total-1:
			text = strings.Join(lines[idx:], " ")
		default:
			text = lines[idx]
		}
		idx++

		first := true
		return textRe.ReplaceAllStringFunc(p, func(run string) string {
			open := run[:strings.Index(run, ">")+1]
			end := run[strings.LastIndex(run, "</"):]
			if !first {
				return open + end
			}
			first = false
			return open + escapeXML(text) + end
		})
	})
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func readZipEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readDOCX(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("invalid DOCX: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		part, err := readZipEntry(f)
		if err != nil {
			return nil, err
		}
		return []string{strings.Join(paragraphs(part, wordParaRe, wordTextRe), "\n")}, nil
	}
	return nil, fmt.Errorf("invalid DOCX: word/document.xml not found")
}

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
	docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docxFooter = `</w:body></w:document>`
)

// writeDOCX writes a new document with one paragraph per translated line.
func writeDOCX(out string, units [][]string) error {
	var body strings.Builder
	body.WriteString(docxHeader)
	for _, u := range units {
		for _, l := range lines(u) {
			fmt.Fprintf(&body, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escapeXML(l))
		}
	}
	body.WriteString(docxFooter)

	return writeZip(out, []zipPart{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", body.String()},
	})
}

type zipPart struct {
	name, data string
}

func writeZip(out string, parts []zipPart) (err error) {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := zip.NewWriter(f)
	for _, p := range parts {
		pw, err := w.Create(p.name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(pw, p.data); err != nil {
			return err
		}
	}
	return w.Close()
}

type slide struct {
	num  int
	file *zip.File
}

func slides(r *zip.Reader) []slide {
	var out []slide
	for _, f := range r.File {
		m := slideNameRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		out = append(out, slide{num: n, file: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].num < out[j].num })
	return out
}

// readPPTX returns one unit per slide, in slide number order.
func readPPTX(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("invalid PPTX: %w", err)
	}
	defer r.Close()

	list := slides(&r.Reader)
	if len(list) == 0 {
		return nil, fmt.Errorf("invalid PPTX: no slides found")
	}

	units := make([]string, len(list))
	for i, s := range list {
		part, err := readZipEntry(s.file)
		if err != nil {
			return nil, err
		}
		units[i] = strings.Join(paragraphs(part, drawParaRe, drawTextRe), "\n")
	}
	return units, nil
}

// writePPTX copies src to out, replacing the text of each translated
// slide. Pictures, layouts and untranslated slides are copied untouched.
func writePPTX(src, out string, units [][]string) (err error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("invalid PPTX: %w", err)
	}
	defer r.Close()

	replace := make(map[string][]string)
	for i, s := range slides(&r.Reader) {
		if i < len(units) && len(units[i]) > 0 {
			replace[s.file.Name] = lines(units[i])
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := zip.NewWriter(f)
	for _, entry := range r.File {
		text, ok := replace[entry.Name]
		if !ok {
			if err := w.Copy(entry); err != nil {
				return err
			}
			continue
		}

		part, err := readZipEntry(entry)
		if err != nil {
			return err
		}
		pw, err := w.CreateHeader(&zip.FileHeader{Name: entry.Name, Method: zip.Deflate, Modified: entry.Modified})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(pw, replaceParagraphs(part, drawParaRe, drawTextRe, text)); err != nil {
			return err
		}
	}
	return w.Close()
}
