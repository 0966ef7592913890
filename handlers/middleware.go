package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/services"
	"dynamicfieldadmin/templates"
	"dynamicfieldadmin/widget"
)

type contextKey string

const LayoutDataKey contextKey = "layoutData"

// GetLayoutData extracts the pre-built LayoutData from the request context.
func GetLayoutData(r *http.Request) templates.LayoutData {
	if val, ok := r.Context().Value(LayoutDataKey).(templates.LayoutData); ok {
		return val
	}
	return templates.LayoutData{ActivePath: r.URL.Path}
}

// AdminLayoutMiddleware builds the navigation shared by every admin page and
// stores it in the request context so handlers and templates can use it.
func AdminLayoutMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		layout := templates.LayoutData{
			ActivePath: e.Request.URL.Path,
			Nav:        BuildNavItems(e.Request, app),
		}

		ctx := context.WithValue(e.Request.Context(), LayoutDataKey, layout)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

// pageLayout returns the layout for a full page titled title. The client
// modules are read last so registrations made while handling the request are
// included.
func pageLayout(r *http.Request, title string) templates.LayoutData {
	layout := GetLayoutData(r)
	layout.Title = title
	layout.Modules = services.Modules.Namespaces(widget.Category)
	return layout
}
