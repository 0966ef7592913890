package widget

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Match reports whether a node is selected.
type Match func(n *html.Node) bool

// IsTag matches elements of any of the given tags.
func IsTag(tags ...atom.Atom) Match {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && slices.Contains(tags, n.DataAtom)
	}
}

// HasClassFunc matches elements carrying class.
func HasClassFunc(class string) Match {
	return func(n *html.Node) bool {
		return HasClass(n, class)
	}
}

// And matches nodes selected by every m.
func And(ms ...Match) Match {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Or matches nodes selected by any m.
func Or(ms ...Match) Match {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// walk visits n and its descendants in document order until fn returns true.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if fn(n) {
		return true
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if walk(c, fn) {
			return true
		}
		c = next
	}
	return false
}

// First returns the first node under root (root included) selected by m.
func First(root *html.Node, m Match) *html.Node {
	if root == nil {
		return nil
	}
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if m(n) {
			found = n
			return true
		}
		return false
	})
	return found
}

// FindAll returns every node under root (root included) selected by m.
func FindAll(root *html.Node, m Match) []*html.Node {
	if root == nil {
		return nil
	}
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if m(n) {
			out = append(out, n)
		}
		return false
	})
	return out
}

// Closest returns n or its nearest ancestor selected by m.
func Closest(n *html.Node, m Match) *html.Node {
	for ; n != nil; n = n.Parent {
		if m(n) {
			return n
		}
	}
	return nil
}

// Clone returns a detached deep copy of n. Event listeners are not copied.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key, adding it when missing.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key.
func RemoveAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n is an element carrying class.
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return slices.Contains(Classes(n), class)
}

// AddClass adds classes missing from n.
func AddClass(n *html.Node, classes ...string) {
	list := Classes(n)
	for _, c := range classes {
		if !slices.Contains(list, c) {
			list = append(list, c)
		}
	}
	SetAttr(n, "class", strings.Join(list, " "))
}

// RemoveClass removes classes from n. The class attribute is dropped once empty.
func RemoveClass(n *html.Node, classes ...string) {
	list := slices.DeleteFunc(Classes(n), func(c string) bool {
		return slices.Contains(classes, c)
	})
	if len(list) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(list, " "))
}
