package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/templates"
)

// HandleDynamicFieldList renders the overview of remote database fields.
// Route: GET /admin/dynamicfields
func HandleDynamicFieldList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter(
			collections.DynamicFields,
			"field_type = {:type}",
			"field_order,name",
			0, 0,
			dbx.Params{"type": collections.FieldTypeRemoteDB},
		)
		if err != nil {
			log.Printf("dynamic_field_list: query failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]templates.DynamicFieldListItem, 0, len(records))
		for _, rec := range records {
			items = append(items, templates.DynamicFieldListItem{
				ID:         rec.Id,
				Name:       rec.GetString("name"),
				Label:      rec.GetString("label"),
				ObjectType: rec.GetString("object_type"),
				FieldOrder: rec.GetInt("field_order"),
				Valid:      rec.GetBool("valid"),
				ValueCount: len(possibleValues(rec)),
			})
		}

		if isHTMX(e.Request) {
			return templates.DynamicFieldListContent(items).Render(e.Request.Context(), e.Response)
		}
		layout := pageLayout(e.Request, "Dynamic Fields")
		return templates.DynamicFieldListPage(items, layout).Render(e.Request.Context(), e.Response)
	}
}
