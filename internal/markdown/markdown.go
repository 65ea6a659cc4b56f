package markdown

import (
	"fmt"
	"html"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func ToHTML(md []byte) string {
	opts := mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	}
	renderer := mdhtml.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

// Paragraphs renders each line as a literal <p> element. The lines are not
// parsed as markdown, so "1. ", "# " or "*x*" come out as typed.
func Paragraphs(lines []string) string {
	doc := &ast.Document{}
	for _, l := range lines {
		p := &ast.Paragraph{}
		ast.AppendChild(p, &ast.Text{Leaf: ast.Leaf{Literal: []byte(l)}})
		ast.AppendChild(doc, p)
	}
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.FlagsNone})
	return string(markdown.Render(doc, renderer))
}

// Page renders md inside a standalone UTF-8 HTML document.
func Page(title string, md []byte) string {
	return Document(title, ToHTML(md))
}

// Document wraps already rendered HTML in a standalone UTF-8 page.
func Document(title, body string) string {
	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body)
}
