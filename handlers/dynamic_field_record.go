package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/services"
	"dynamicfieldadmin/templates"
	"dynamicfieldadmin/valuelist"
)

const maxUploadSize = 10 << 20

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// parseRequestForm parses urlencoded and multipart bodies alike.
func parseRequestForm(r *http.Request) (url.Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return nil, err
		}
		return r.Form, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.Form, nil
}

// possibleValues reads the stored possible values of a dynamic field record.
func possibleValues(rec *core.Record) []valuelist.Value {
	var values []valuelist.Value
	if err := rec.UnmarshalJSONField("possible_values", &values); err != nil {
		log.Printf("dynamic_field: record %s has unreadable possible_values: %v", rec.Id, err)
		return nil
	}
	return values
}

// recordToFormData prepares the edit form for a stored field. Rows are
// numbered from 1 in stored order.
func recordToFormData(rec *core.Record) templates.DynamicFieldFormData {
	list := valuelist.FromValues(possibleValues(rec))
	return templates.DynamicFieldFormData{
		ID:                 rec.Id,
		Name:               rec.GetString("name"),
		Label:              rec.GetString("label"),
		FieldOrder:         rec.GetInt("field_order"),
		Valid:              rec.GetBool("valid"),
		ObjectType:         rec.GetString("object_type"),
		Values:             list,
		Default:            valuelist.DefaultOptions(list, rec.GetString("default_value"), nil),
		PossibleNone:       rec.GetBool("possible_none"),
		TranslatableValues: rec.GetBool("translatable_values"),
		TreeView:           rec.GetBool("tree_view"),
		Link:               rec.GetString("link"),
		DB: services.RemoteDB{
			DBMS:           rec.GetString("dbms"),
			DSN:            rec.GetString("dsn"),
			User:           rec.GetString("db_user"),
			Password:       rec.GetString("db_password"),
			Table:          rec.GetString("db_table"),
			KeyColumn:      rec.GetString("key_column"),
			ValueColumn:    rec.GetString("value_column"),
			CacheTTL:       rec.GetInt("cache_ttl"),
			MaxQueryResult: rec.GetInt("max_query_result"),
		},
		Errors: make(map[string]string),
	}
}

// inputToFormData re-renders a rejected submission. The value rows are
// rebuilt from the raw form so indexes and tombstones survive.
func inputToFormData(id string, in services.DynamicFieldInput, form url.Values, errs map[string]string) templates.DynamicFieldFormData {
	list, err := valuelist.FromForm(form)
	if err != nil {
		list = valuelist.New(0)
	}
	return templates.DynamicFieldFormData{
		ID:                 id,
		Name:               in.Name,
		Label:              in.Label,
		FieldOrder:         in.FieldOrder,
		Valid:              in.Valid,
		ObjectType:         in.ObjectType,
		Values:             list,
		Default:            valuelist.DefaultOptions(list, in.DefaultValue, nil),
		PossibleNone:       in.PossibleNone,
		TranslatableValues: in.TranslatableValues,
		TreeView:           in.TreeView,
		Link:               in.Link,
		DB:                 in.DB,
		Errors:             errs,
	}
}

// applyInput copies a validated submission onto rec.
func applyInput(rec *core.Record, in services.DynamicFieldInput) {
	values := in.Values.Values()
	rec.Set("name", in.Name)
	rec.Set("label", in.Label)
	rec.Set("field_order", in.FieldOrder)
	rec.Set("valid", in.Valid)
	rec.Set("object_type", in.ObjectType)
	rec.Set("field_type", collections.FieldTypeRemoteDB)
	rec.Set("possible_values", values)
	rec.Set("default_value", in.DefaultValue)
	rec.Set("possible_none", in.PossibleNone)
	rec.Set("translatable_values", in.TranslatableValues)
	rec.Set("tree_view", in.TreeView)
	rec.Set("link", in.Link)
	rec.Set("dbms", in.DB.DBMS)
	rec.Set("dsn", in.DB.DSN)
	rec.Set("db_user", in.DB.User)
	rec.Set("db_password", in.DB.Password)
	rec.Set("db_table", in.DB.Table)
	rec.Set("key_column", in.DB.KeyColumn)
	rec.Set("value_column", in.DB.ValueColumn)
	rec.Set("cache_ttl", in.DB.CacheTTL)
	rec.Set("max_query_result", in.DB.MaxQueryResult)
}

// nameTaken reports whether another dynamic field already uses name.
// excludeID is the record being updated, empty on create.
func nameTaken(app *pocketbase.PocketBase, name, excludeID string) (bool, error) {
	var count int
	q := app.RecordQuery(collections.DynamicFields).
		Select("count(*)").
		Where(dbx.HashExp{"name": name})
	if excludeID != "" {
		q = q.AndWhere(dbx.Not(dbx.HashExp{"id": excludeID}))
	}
	if err := q.Row(&count); err != nil {
		return false, fmt.Errorf("count dynamic fields named %q: %w", name, err)
	}
	return count > 0, nil
}

// checkName adds a uniqueness error for Name unless it already has one.
func checkName(app *pocketbase.PocketBase, name, excludeID string, errs map[string]string) {
	if name == "" || errs["Name"] != "" {
		return
	}
	taken, err := nameTaken(app, name, excludeID)
	if err != nil {
		log.Printf("dynamic_field: %v", err)
		return
	}
	if taken {
		errs["Name"] = "A dynamic field with this name already exists."
	}
}
