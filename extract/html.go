package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements dropped along with everything inside them.
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Aside:    true,
	atom.Form:     true,
	atom.Iframe:   true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
}

// Class names and ids of sidebars, ads and comment threads.
var skippedMarkers = map[string]bool{
	"sidebar":       true,
	"advertisement": true,
	"ad":            true,
	"ads":           true,
	"nav":           true,
	"menu":          true,
	"comment":       true,
	"comments":      true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true, atom.Main: true,
	atom.Br: true, atom.Hr: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Dl: true, atom.Dt: true, atom.Dd: true, atom.Figure: true, atom.Figcaption: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// page is the readable part of an HTML document.
type page struct {
	title string
	text  string
}

// parseHTML extracts the title and readable text of an HTML document.
func parseHTML(r io.Reader) (*page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &page{title: findTitle(doc)}

	var b strings.Builder
	render(&b, doc)
	p.text = collapseBlankLines(b.String())
	return p, nil
}

// findTitle prefers <title>, then og:title, then the first <h1>.
func findTitle(doc *html.Node) string {
	if n := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Title }); n != nil {
		if t := strings.TrimSpace(textOf(n)); t != "" {
			return t
		}
	}
	og := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Meta && attr(n, "property") == "og:title" && strings.TrimSpace(attr(n, "content")) != ""
	})
	if og != nil {
		return strings.TrimSpace(attr(og, "content"))
	}
	if n := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.H1 }); n != nil {
		return strings.Join(strings.Fields(textOf(n)), " ")
	}
	return ""
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func skipped(n *html.Node) bool {
	if skippedElements[n.DataAtom] || n.DataAtom == atom.Head {
		return true
	}
	if skippedMarkers[strings.ToLower(attr(n, "id"))] {
		return true
	}
	for _, class := range strings.Fields(strings.ToLower(attr(n, "class"))) {
		if skippedMarkers[class] {
			return true
		}
	}
	return false
}

func render(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text == "" {
			return
		}
		if needsSpace(b, n.Data) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		if endsWithSpace(n.Data) {
			b.WriteByte(' ')
		}
		return
	case html.ElementNode:
		if skipped(n) {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteString("\n\n")
	}
	if level, ok := headingLevels[n.DataAtom]; ok {
		b.WriteString(strings.Repeat("#", level) + " ")
	}
	if n.DataAtom == atom.Li {
		b.WriteString("- ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(b, c)
	}

	if n.DataAtom == atom.A {
		if href := attr(n, "href"); strings.HasPrefix(href, "http") {
			b.WriteString(" (" + href + ")")
		}
	}
	if block {
		b.WriteString("\n\n")
	}
}

func needsSpace(b *strings.Builder, raw string) bool {
	if b.Len() == 0 || !startsWithSpace(raw) {
		return false
	}
	s := b.String()
	last := s[len(s)-1]
	return last != ' ' && last != '\n'
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\r\n", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\r\n", rune(s[len(s)-1]))
}

// collapseBlankLines trims trailing whitespace from each line and keeps at
// most one blank line between paragraphs.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	prevEmpty := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !prevEmpty {
				out = append(out, "")
			}
			prevEmpty = true
			continue
		}
		out = append(out, line)
		prevEmpty = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
