package templates

import (
	"fmt"
	"strconv"

	"dynamicfieldadmin/services"
	"dynamicfieldadmin/valuelist"
	"dynamicfieldadmin/widget"
)

// Endpoints the value editor posts to.
const (
	AddValuePath     = "/admin/dynamicfields/values/add"
	RemoveValuePath  = "/admin/dynamicfields/values/remove"
	ImportValuesPath = "/admin/dynamicfields/values/import"
	PossibleValuesID = "PossibleValues"
	InsertID         = "ValueInsert"
)

// FormID is the id of the dynamic field form.
const FormID = "EditDynamicField"

// FormAction returns where the form posts: create for a new field, save for
// an existing one.
func FormAction(id string) string {
	if id == "" {
		return "/admin/dynamicfields"
	}
	return fmt.Sprintf("/admin/dynamicfields/%s/save", id)
}

type choice struct {
	Value string
	Text  string
}

var validityChoices = []choice{
	{Value: "1", Text: "valid"},
	{Value: "2", Text: "invalid"},
}

func stringChoices(values []string) []choice {
	out := make([]choice, 0, len(values))
	for _, v := range values {
		out = append(out, choice{Value: v, Text: v})
	}
	return out
}

func objectTypeChoices() []choice { return stringChoices(services.ObjectTypes) }
func dbmsChoices() []choice       { return stringChoices(services.DBMSTypes) }

func validityValue(valid bool) string {
	if valid {
		return "1"
	}
	return "2"
}

func validityText(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func counterOf(l *valuelist.List) int {
	if l == nil {
		return 0
	}
	return l.Counter()
}

func liveRows(l *valuelist.List) []valuelist.Row {
	if l == nil {
		return nil
	}
	return l.Live()
}

func tombstones(l *valuelist.List) []int {
	if l == nil {
		return nil
	}
	return l.Tombstones()
}

// rowID is the control id in row index. Row 0 is the template, whose controls
// keep their bare base ids.
func rowID(base string, index int) string {
	if index == 0 {
		return base
	}
	return valuelist.FieldID(base, index)
}

func rowClass(index int) string {
	if index == 0 {
		return widget.TemplateClass + " " + widget.HiddenClass
	}
	return widget.RowClass
}

func optionsOrEmpty(o *valuelist.Options) *valuelist.Options {
	if o != nil {
		return o
	}
	return &valuelist.Options{ID: valuelist.DefaultID, Items: []valuelist.Option{{Value: "", Text: "-"}}}
}

func pageTitle(layout LayoutData) string {
	if layout.Title == "" {
		return "Dynamic Fields"
	}
	return layout.Title
}

func formTitle(data DynamicFieldFormData) string {
	if data.ID == "" {
		return "Add Remote Database Field"
	}
	return "Edit Remote Database Field: " + data.Name
}

func editPath(id string) string {
	return fmt.Sprintf("/admin/dynamicfields/%s/edit", id)
}

func exportPath(id string) string {
	return fmt.Sprintf("/admin/dynamicfields/%s/values/export", id)
}
