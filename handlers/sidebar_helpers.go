package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/templates"
)

const (
	listPath   = "/admin/dynamicfields"
	createPath = "/admin/dynamicfields/create"
)

// BuildNavItems constructs the admin navigation for the current request. The
// list entry carries the number of remote database fields.
func BuildNavItems(r *http.Request, app *pocketbase.PocketBase) []templates.NavItem {
	count, err := app.CountRecords(collections.DynamicFields,
		dbx.HashExp{"field_type": collections.FieldTypeRemoteDB})
	if err != nil {
		log.Printf("sidebar: could not count dynamic fields: %v", err)
	}

	path := r.URL.Path
	return []templates.NavItem{
		{
			Label:  fmt.Sprintf("Dynamic Fields (%d)", count),
			Href:   listPath,
			Active: strings.HasPrefix(path, listPath) && path != createPath,
		},
		{
			Label:  "Add Remote Database Field",
			Href:   createPath,
			Active: path == createPath,
		},
	}
}
