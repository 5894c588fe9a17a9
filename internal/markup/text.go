// Package markup converts the stored representations of record text (HTML, markdown,
// plain text) into the plain text that is embedded and shown in previews.
package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Record text formats understood by ToPlainText.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// skipped elements contribute no text at all.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Img:      true,
	atom.Svg:      true,
}

// paragraphs are separated from their neighbours by a blank line, other blocks by a line break.
var paragraphs = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
	atom.H6: true, atom.Blockquote: true, atom.Pre: true, atom.Table: true, atom.Ul: true,
	atom.Ol: true, atom.Hr: true,
}

var blocks = map[atom.Atom]bool{
	atom.Div: true, atom.Li: true, atom.Tr: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true, atom.Aside: true,
	atom.Dt: true, atom.Dd: true, atom.Figure: true, atom.Figcaption: true,
}

// ToPlainText converts text stored in the given format to plain text.
// An empty format is treated as HTML.
func ToPlainText(format, text string) (string, error) {
	switch format {
	case FormatHTML, "":
		return PlainText(text), nil
	case FormatMarkdown:
		rendered, err := MarkdownToHTML([]byte(text))
		if err != nil {
			return "", err
		}
		return PlainText(rendered), nil
	case FormatText:
		return strings.TrimSpace(text), nil
	default:
		return "", fmt.Errorf("unknown text format %q", format)
	}
}

// PlainText strips HTML markup, keeping the readable text. Link text is kept, images and
// scripts are dropped, block elements become line breaks and <pre> content is preserved.
// Input without markup passes through with whitespace normalized.
func PlainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// html.Parse only fails on reader errors.
		return strings.TrimSpace(s)
	}

	w := &textWriter{}
	w.walk(doc, false)

	lines := strings.Split(w.buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := excessNewlines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}

type textWriter struct {
	buf bytes.Buffer
}

func (w *textWriter) atLineStart() bool {
	b := w.buf.Bytes()
	return len(b) == 0 || b[len(b)-1] == '\n'
}

func (w *textWriter) breakLine(n int) {
	if w.buf.Len() == 0 {
		return
	}
	b := w.buf.Bytes()
	trailing := len(b) - len(bytes.TrimRight(b, "\n"))
	for ; trailing < n; trailing++ {
		w.buf.WriteByte('\n')
	}
}

func (w *textWriter) walk(n *html.Node, inPre bool) {
	switch n.Type {
	case html.TextNode:
		if inPre {
			w.buf.WriteString(n.Data)
			return
		}
		text := strings.Join(strings.Fields(n.Data), " ")
		if text == "" {
			if !w.atLineStart() && !endsWithSpace(w.buf.Bytes()) {
				w.buf.WriteByte(' ')
			}
			return
		}
		if !w.atLineStart() && startsWithSpace(n.Data) && !endsWithSpace(w.buf.Bytes()) {
			w.buf.WriteByte(' ')
		}
		w.buf.WriteString(text)
		if endsWithSpace([]byte(n.Data)) {
			w.buf.WriteByte(' ')
		}
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			w.buf.WriteByte('\n')
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	sep := 0
	if n.Type == html.ElementNode {
		switch {
		case paragraphs[n.DataAtom]:
			sep = 2
		case blocks[n.DataAtom]:
			sep = 1
		}
	}

	w.breakLine(sep)
	pre := inPre || n.DataAtom == atom.Pre
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, pre)
	}
	w.breakLine(sep)
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[0]))
}

func endsWithSpace(b []byte) bool {
	return len(b) > 0 && bytes.ContainsRune([]byte(" \t\n\r\f"), rune(b[len(b)-1]))
}
