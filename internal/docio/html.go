package docio

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/valpere/agentran/internal/markdown"
)

var skipElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// readHTML extracts the visible text, one paragraph per block element.
func readHTML(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	var current strings.Builder
	flush := func() {
		if text := strings.Join(strings.Fields(current.String()), " "); text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()

	return []string{strings.Join(paragraphs, "\n\n")}, nil
}

// writeHTML renders each translated line as a paragraph of a standalone page.
func writeHTML(out string, units [][]string) error {
	var paras []string
	for _, u := range units {
		paras = append(paras, lines(u)...)
	}
	title := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	return os.WriteFile(out, []byte(markdown.Document(title, markdown.Paragraphs(paras))), 0o644)
}
