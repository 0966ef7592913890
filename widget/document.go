package widget

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Handler is an event listener. Returning false suppresses the default action
// of the event, like returning false from a jQuery handler.
type Handler func() bool

// Document is an HTML node tree with an event listener registry. It is the
// page state the widget reads and mutates.
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]Handler
}

// NewDocument wraps an existing node tree.
func NewDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]Handler),
	}
}

// Parse reads a complete HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return NewDocument(root), nil
}

// ParseFragment reads an HTML fragment as if it were the content of <body>.
func ParseFragment(r io.Reader) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return NewDocument(root), nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// ByID returns the first element with the given id, in document order.
func (d *Document) ByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return First(d.root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// ByClass returns every element carrying class, in document order.
func (d *Document) ByClass(class string) []*html.Node {
	return FindAll(d.root, HasClassFunc(class))
}

// FirstByClass returns the first element carrying class.
func (d *Document) FirstByClass(class string) *html.Node {
	return First(d.root, HasClassFunc(class))
}

// Remove detaches n from the tree and drops the listeners bound inside it.
func (d *Document) Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	walk(n, func(c *html.Node) bool {
		delete(d.listeners, c)
		return false
	})
	n.Parent.RemoveChild(n)
}

// On binds h to event on n.
func (d *Document) On(n *html.Node, event string, h Handler) {
	if n == nil || h == nil {
		return
	}
	byEvent := d.listeners[n]
	if byEvent == nil {
		byEvent = make(map[string][]Handler)
		d.listeners[n] = byEvent
	}
	byEvent[event] = append(byEvent[event], h)
}

// Listeners returns the number of handlers bound to event on n.
func (d *Document) Listeners(n *html.Node, event string) int {
	return len(d.listeners[n][event])
}

// Dispatch runs the handlers bound to event on n in binding order. It reports
// whether the default action may proceed.
func (d *Document) Dispatch(n *html.Node, event string) bool {
	proceed := true
	for _, h := range d.listeners[n][event] {
		if !h() {
			proceed = false
		}
	}
	return proceed
}

// Click dispatches a click on the element with the given id. found is false
// when no such element exists.
func (d *Document) Click(id string) (proceed bool, found bool) {
	n := d.ByID(id)
	if n == nil {
		return true, false
	}
	return d.Dispatch(n, "click"), true
}

// FormValues serialises the named, enabled controls of the document the way a
// browser submits a form.
func (d *Document) FormValues() url.Values {
	form := url.Values{}
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		name, _ := Attr(n, "name")
		if name == "" {
			return false
		}
		if _, disabled := Attr(n, "disabled"); disabled {
			return false
		}
		switch n.DataAtom {
		case atom.Input:
			typ, _ := Attr(n, "type")
			switch strings.ToLower(typ) {
			case "submit", "button", "reset", "file", "image":
				return false
			case "checkbox", "radio":
				if _, checked := Attr(n, "checked"); !checked {
					return false
				}
				v, ok := Attr(n, "value")
				if !ok {
					v = "on"
				}
				form.Add(name, v)
				return false
			}
			form.Add(name, Value(n))
		case atom.Select:
			for _, v := range selectedValues(n) {
				form.Add(name, v)
			}
		case atom.Textarea:
			form.Add(name, Value(n))
		}
		return false
	})
	return form
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// OuterHTML renders a single node.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Value returns the current value of a form control.
func Value(n *html.Node) string {
	if n == nil {
		return ""
	}
	switch n.DataAtom {
	case atom.Select:
		vs := selectedValues(n)
		if len(vs) == 0 {
			return ""
		}
		return vs[0]
	case atom.Textarea:
		return Text(n)
	case atom.Option:
		if v, ok := Attr(n, "value"); ok {
			return v
		}
		return strings.TrimSpace(Text(n))
	}
	v, _ := Attr(n, "value")
	return v
}

// SetValue sets the value of an input or textarea.
func SetValue(n *html.Node, v string) {
	if n == nil {
		return
	}
	if n.DataAtom == atom.Textarea {
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
		return
	}
	SetAttr(n, "value", v)
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return false
	})
	return sb.String()
}

func selectedValues(sel *html.Node) []string {
	options := FindAll(sel, IsTag(atom.Option))
	if len(options) == 0 {
		return nil
	}
	_, multiple := Attr(sel, "multiple")
	var out []string
	for _, o := range options {
		if _, selected := Attr(o, "selected"); selected {
			out = append(out, Value(o))
			if !multiple {
				return out
			}
		}
	}
	if len(out) == 0 && !multiple {
		out = append(out, Value(options[0]))
	}
	return out
}
