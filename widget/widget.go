// Package widget implements the possible-values editor of the dynamic field
// admin screen on an HTML document: adding rows from the hidden template,
// removing rows behind a tombstone, and keeping the default-value dropdown in
// line with the remaining keys.
package widget

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"dynamicfieldadmin/valuelist"
)

// Markup contract shared with the templates that render the editor.
const (
	AddID              = "AddValue"
	InsertClass        = "ValueInsert"
	RowClass           = "ValueRow"
	TemplateClass      = "ValueTemplate"
	HiddenClass        = "Hidden"
	TombstoneClass     = "DeletedValue"
	RemoveControlClass = "ValueRemove"
	RemoveButtonClass  = "RemoveButton"
	RequiredClass      = "Validate_Required"
)

// Host registration and validation identifiers.
const (
	Namespace        = "Agent.Admin.DynamicFieldRemoteDB"
	Category         = "APP_MODULE"
	ValidationScreen = "DynamicField"
)

// Host is the surrounding admin application.
type Host interface {
	// Redraw asks an enhanced dropdown to refresh after its options changed.
	valuelist.Redrawer
	RegisterNamespace(namespace, category string)
	ValidationInit(screen string)
}

// Widget edits the value list held in a Document.
type Widget struct {
	doc       *Document
	host      Host
	observers []valuelist.KeyObserver
}

// New announces the widget to the host and attaches the default-value
// synchroniser. Call Init to bind the controls.
func New(doc *Document, host Host) *Widget {
	w := &Widget{doc: doc, host: host}
	w.Subscribe(&defaultSync{doc: doc, host: host})
	host.RegisterNamespace(Namespace, Category)
	return w
}

// Subscribe adds an observer notified whenever a row with a non-empty key is
// removed.
func (w *Widget) Subscribe(o valuelist.KeyObserver) {
	w.observers = append(w.observers, o)
}

// Document returns the document the widget edits.
func (w *Widget) Document() *Document {
	return w.doc
}

// Init binds the add control and the remove controls already on the page,
// then runs the host's validation setup for the screen.
func (w *Widget) Init() {
	if add := w.doc.ByID(AddID); add != nil {
		w.doc.On(add, "click", func() bool {
			var container *html.Node
			if group := Closest(add, IsTag(atom.Fieldset)); group != nil {
				container = First(group, HasClassFunc(InsertClass))
			}
			return w.AddValue(container)
		})
	}

	for _, rm := range w.doc.ByClass(RemoveControlClass) {
		w.bindRemove(rm)
	}

	w.host.ValidationInit(ValidationScreen)
}

func (w *Widget) bindRemove(rm *html.Node) {
	w.doc.On(rm, "click", func() bool {
		id, _ := Attr(rm, "id")
		return w.RemoveValue(id)
	})
}

// AddValue appends a new row, cloned from the hidden template, to container.
// The row gets the next index from the counter control; every control in it
// is renamed to carry the index. It always returns false.
func (w *Widget) AddValue(container *html.Node) bool {
	if container == nil {
		return false
	}
	counterNode := w.doc.ByID(valuelist.CounterID)
	if counterNode == nil {
		return false
	}
	counter, err := strconv.Atoi(strings.TrimSpace(Value(counterNode)))
	if err != nil || counter < 0 || counter >= valuelist.MaxCounter {
		return false
	}
	template := w.doc.FirstByClass(TemplateClass)
	if template == nil {
		return false
	}

	n := counter + 1
	SetValue(counterNode, strconv.Itoa(n))

	row := Clone(template)
	RemoveClass(row, HiddenClass, TemplateClass)
	AddClass(row, RowClass)

	controls := FindAll(row, Or(
		IsTag(atom.Input, atom.Select, atom.Textarea, atom.Button),
		And(IsTag(atom.A), HasClassFunc(RemoveButtonClass)),
	))
	for _, c := range controls {
		id, ok := Attr(c, "id")
		if !ok || id == "" {
			continue
		}
		newID := valuelist.FieldID(id, n)
		SetAttr(c, "id", newID)
		SetAttr(c, "name", newID)
		AddClass(c, RequiredClass)

		if c.Parent != nil {
			renamePlaceholder(c.Parent, valuelist.ErrorID(id), valuelist.ErrorID(newID))
			renamePlaceholder(c.Parent, valuelist.ServerErrorID(id), valuelist.ServerErrorID(newID))
		}

		if HasClass(c, RemoveButtonClass) {
			w.bindRemove(c)
		}
	}

	for _, label := range FindAll(row, IsTag(atom.Label)) {
		if target, ok := Attr(label, "for"); ok && target != "" {
			SetAttr(label, "for", valuelist.FieldID(target, n))
		}
	}

	container.AppendChild(row)
	return false
}

func renamePlaceholder(scope *html.Node, from, to string) {
	p := First(scope, func(n *html.Node) bool {
		id, ok := Attr(n, "id")
		return ok && id == from
	})
	if p == nil {
		return
	}
	SetAttr(p, "id", to)
	SetAttr(p, "name", to)
}

// RemoveValue removes the row of the remove control with the given id. A
// hidden Key_<index> control with an empty value is left in the row's group so
// the submitted form still reports the index, and the row's key is dropped
// from the default-value dropdown. Identifiers without a trailing _<digits>
// are ignored. It always returns false.
func (w *Widget) RemoveValue(id string) bool {
	index, ok := valuelist.ParseRowIndex(id)
	if !ok {
		return false
	}
	trigger := w.doc.ByID(id)
	if trigger == nil {
		return false
	}

	keyID := valuelist.FieldID(valuelist.KeyBase, index)
	key := Value(w.doc.ByID(keyID))

	if template := w.doc.FirstByClass(TombstoneClass); template != nil {
		tombstone := Clone(template)
		SetAttr(tombstone, "id", keyID)
		SetAttr(tombstone, "name", keyID)
		RemoveClass(tombstone, TombstoneClass)

		group := Closest(trigger, IsTag(atom.Fieldset))
		if group == nil {
			group = Closest(trigger.Parent, HasClassFunc(InsertClass))
		}
		if group != nil {
			group.AppendChild(tombstone)
		}
	}

	if key != "" {
		for _, o := range w.observers {
			o.KeyRemoved(key)
		}
	}

	w.doc.Remove(trigger.Parent)
	return false
}

// defaultSync keeps the default-value dropdown limited to existing keys.
type defaultSync struct {
	doc  *Document
	host Host
}

func (s *defaultSync) KeyRemoved(key string) {
	sel := s.doc.ByID(valuelist.DefaultID)
	if sel == nil {
		return
	}
	for _, opt := range FindAll(sel, IsTag(atom.Option)) {
		if v, ok := Attr(opt, "value"); ok && v == key {
			s.doc.Remove(opt)
		}
	}
	s.host.Redraw(valuelist.DefaultID)
}
