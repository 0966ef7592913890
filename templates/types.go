// Package templates renders the dynamic field admin pages and the fragments
// returned to HTMX requests.
package templates

import (
	"dynamicfieldadmin/services"
	"dynamicfieldadmin/valuelist"
)

// DynamicFieldFormData is everything the create/edit form shows.
type DynamicFieldFormData struct {
	ID                 string
	Name               string
	Label              string
	FieldOrder         int
	Valid              bool
	ObjectType         string
	Values             *valuelist.List
	Default            *valuelist.Options
	PossibleNone       bool
	TranslatableValues bool
	TreeView           bool
	Link               string
	DB                 services.RemoteDB
	Errors             map[string]string
}

// DynamicFieldListItem is one row of the overview table.
type DynamicFieldListItem struct {
	ID         string
	Name       string
	Label      string
	ObjectType string
	FieldOrder int
	Valid      bool
	ValueCount int
}

// NavItem is a link in the side navigation.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// LayoutData is shared by every full page.
type LayoutData struct {
	Title      string
	ActivePath string
	Nav        []NavItem
	// Modules lists the client modules the page initialises.
	Modules []string
}
