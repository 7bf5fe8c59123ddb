// Package dom exposes a parsed HTML document as a read-only element tree plus
// its flattened visible text. Extraction code only sees the Element interface
// and never mutates the tree.
package dom

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a read-only view of one element in a document.
type Element interface {
	// Tag is the lowercased tag name, e.g. "table", "div".
	Tag() string
	// Text is the trimmed text content of the element and its descendants.
	Text() string
	// Children returns immediate child elements in document order.
	Children() []Element
	// FindAll returns descendant elements (not the receiver) whose tag is in
	// tags, in document order. With no tags every descendant is returned.
	FindAll(tags ...string) []Element
}

// Snapshot is one immutable extraction input: the element tree and the
// flattened visible text of the same document. Root may be nil for plain
// text inputs.
type Snapshot struct {
	Root Element
	Text string
}

// Parse reads an HTML document and builds a Snapshot. Text is derived from
// the <body> the way a browser lays out innerText.
func Parse(r io.Reader) (Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "dom: parse html")
	}
	root := documentElement(doc)
	if root == nil {
		return Snapshot{}, eris.New("dom: document has no root element")
	}
	textRoot := findFirst(root, atom.Body)
	if textRoot == nil {
		textRoot = root
	}
	return Snapshot{
		Root: &node{n: root},
		Text: InnerText(textRoot),
	}, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) (Snapshot, error) {
	return Parse(strings.NewReader(s))
}

// ParseWithText builds the tree from r but keeps text as the document text.
// Used when a browser already computed innerText.
func ParseWithText(r io.Reader, text string) (Snapshot, error) {
	snap, err := Parse(r)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Text = text
	return snap, nil
}

// FromText wraps plain text in a Snapshot with no element tree.
func FromText(text string) Snapshot {
	return Snapshot{Text: text}
}

type node struct {
	n *html.Node
}

func (e *node) Tag() string {
	return e.n.Data
}

func (e *node) Text() string {
	var b strings.Builder
	collectText(e.n, &b)
	return strings.TrimSpace(b.String())
}

func (e *node) Children() []Element {
	var out []Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &node{n: c})
		}
	}
	return out
}

func (e *node) FindAll(tags ...string) []Element {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[strings.ToLower(t)] = struct{}{}
	}

	var out []Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if _, ok := want[c.Data]; ok || len(want) == 0 {
				out = append(out, &node{n: c})
			}
			walk(c)
		}
	}
	walk(e.n)
	return out
}

// collectText appends raw descendant text, skipping non-rendered elements.
func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if hidden(n) {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func documentElement(doc *html.Node) *html.Node {
	if doc.Type == html.ElementNode {
		return doc
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func hidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
		return true
	}
	return false
}
