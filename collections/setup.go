package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/services"
)

// DynamicFields is the collection holding remote database dynamic fields.
const DynamicFields = "dynamic_fields"

// FieldTypeRemoteDB is the field_type of every record this admin manages.
const FieldTypeRemoteDB = "RemoteDB"

// Setup programmatically creates/ensures the dynamic_fields collection exists.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, DynamicFields, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200, Pattern: `^[A-Za-z0-9]+$`})
		c.Fields.Add(&core.TextField{Name: "label", Required: true, Max: 200})
		c.Fields.Add(&core.NumberField{Name: "field_order", Required: true, OnlyInt: true})
		c.Fields.Add(&core.BoolField{Name: "valid"})
		c.Fields.Add(&core.SelectField{
			Name:      "object_type",
			Required:  true,
			Values:    services.ObjectTypes,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "field_type", Required: true})

		// possible_values is a JSON array of {"key": ..., "label": ...}.
		c.Fields.Add(&core.JSONField{Name: "possible_values"})
		c.Fields.Add(&core.TextField{Name: "default_value"})
		c.Fields.Add(&core.BoolField{Name: "possible_none"})
		c.Fields.Add(&core.BoolField{Name: "translatable_values"})
		c.Fields.Add(&core.BoolField{Name: "tree_view"})
		c.Fields.Add(&core.URLField{Name: "link"})

		c.Fields.Add(&core.SelectField{
			Name:      "dbms",
			Required:  true,
			Values:    services.DBMSTypes,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "dsn", Required: true})
		c.Fields.Add(&core.TextField{Name: "db_user"})
		c.Fields.Add(&core.TextField{Name: "db_password", Hidden: true})
		c.Fields.Add(&core.TextField{Name: "db_table", Required: true})
		c.Fields.Add(&core.TextField{Name: "key_column", Required: true})
		c.Fields.Add(&core.TextField{Name: "value_column", Required: true})
		c.Fields.Add(&core.NumberField{Name: "cache_ttl", OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "max_query_result", OnlyInt: true})

		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})

		c.AddIndex("idx_dynamic_fields_name", true, "name", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
