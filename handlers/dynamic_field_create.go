package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/services"
	"dynamicfieldadmin/templates"
	"dynamicfieldadmin/valuelist"
)

// HandleDynamicFieldCreate renders an empty remote database field form.
// Route: GET /admin/dynamicfields/create
func HandleDynamicFieldCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		list := valuelist.New(0)
		data := templates.DynamicFieldFormData{
			FieldOrder: 1,
			Valid:      true,
			ObjectType: services.ObjectTypes[0],
			Values:     list,
			Default:    valuelist.DefaultOptions(list, "", nil),
			DB:         services.RemoteDB{DBMS: services.DBMSTypes[0]},
			Errors:     make(map[string]string),
		}
		return renderDynamicFieldForm(e, data)
	}
}

// HandleDynamicFieldSave validates and stores a new remote database field.
// Route: POST /admin/dynamicfields
func HandleDynamicFieldSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := parseRequestForm(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		in, errs := services.ParseDynamicFieldForm(form)
		checkName(app, in.Name, "", errs)

		if len(errs) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			return renderDynamicFieldForm(e, inputToFormData("", in, form, errs))
		}

		col, err := app.FindCollectionByNameOrId(collections.DynamicFields)
		if err != nil {
			log.Printf("dynamic_field_create: could not find %s collection: %v", collections.DynamicFields, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		applyInput(record, in)
		if err := app.Save(record); err != nil {
			log.Printf("dynamic_field_create: could not save dynamic field: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Dynamic field created successfully")
		return redirectToList(e)
	}
}

// renderDynamicFieldForm initialises the value editor for the page and
// renders the form, on its own for HTMX requests.
func renderDynamicFieldForm(e *core.RequestEvent, data templates.DynamicFieldFormData) error {
	if _, _, err := newValueEditor(e, data); err != nil {
		log.Printf("dynamic_field_form: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	if isHTMX(e.Request) {
		return templates.DynamicFieldForm(data).Render(e.Request.Context(), e.Response)
	}
	title := "Add Remote Database Field"
	if data.ID != "" {
		title = "Edit " + data.Name
	}
	return templates.DynamicFieldPage(data, pageLayout(e.Request, title)).Render(e.Request.Context(), e.Response)
}

func redirectToList(e *core.RequestEvent) error {
	if isHTMX(e.Request) {
		e.Response.Header().Set("HX-Redirect", listPath)
		return e.String(http.StatusOK, "")
	}
	return e.Redirect(http.StatusFound, listPath)
}
