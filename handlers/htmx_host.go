package handlers

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/services"
	"dynamicfieldadmin/templates"
	"dynamicfieldadmin/widget"
)

// htmxHost lets the value editor talk to the browser through HX-Trigger
// response events.
type htmxHost struct {
	e       *core.RequestEvent
	modules *services.ModuleRegistry
	redrawn []string
}

func newHTMXHost(e *core.RequestEvent, modules *services.ModuleRegistry) *htmxHost {
	return &htmxHost{e: e, modules: modules}
}

// Redraw fires redraw.InputField on the client with every control redrawn so
// far in this request.
func (h *htmxHost) Redraw(id string) {
	if !slices.Contains(h.redrawn, id) {
		h.redrawn = append(h.redrawn, id)
	}
	mergeTrigger(h.e, "redraw.InputField", map[string]any{"ids": h.redrawn})
}

func (h *htmxHost) RegisterNamespace(namespace, category string) {
	h.modules.RegisterNamespace(namespace, category)
}

// ValidationInit fires validationInit so the client re-binds its form
// validation for screen.
func (h *htmxHost) ValidationInit(screen string) {
	mergeTrigger(h.e, "validationInit", map[string]string{"screen": screen})
}

// Redrawn reports whether id was redrawn during the request.
func (h *htmxHost) Redrawn(id string) bool {
	return slices.Contains(h.redrawn, id)
}

// newValueEditor renders the value editor for data, loads it into a widget
// document and initialises the widget against the request.
func newValueEditor(e *core.RequestEvent, data templates.DynamicFieldFormData) (*widget.Widget, *htmxHost, error) {
	var buf bytes.Buffer
	if err := templates.ValueEditor(data).Render(e.Request.Context(), &buf); err != nil {
		return nil, nil, fmt.Errorf("render value editor: %w", err)
	}
	doc, err := widget.ParseFragment(&buf)
	if err != nil {
		return nil, nil, fmt.Errorf("parse value editor: %w", err)
	}

	host := newHTMXHost(e, services.Modules)
	w := widget.New(doc, host)
	w.Init()
	return w, host, nil
}
