package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/valuelist"
)

type fieldDef struct {
	name        string
	label       string
	fieldOrder  int
	objectType  string
	values      []valuelist.Value
	defaultKey  string
	dbms        string
	dsn         string
	table       string
	keyColumn   string
	valueColumn string
	cacheTTL    int
}

var seedFields = []fieldDef{
	{
		name:       "CustomerRegion",
		label:      "Customer region",
		fieldOrder: 1,
		objectType: "Ticket",
		values: []valuelist.Value{
			{Key: "emea", Label: "Europe, Middle East and Africa"},
			{Key: "amer", Label: "Americas"},
			{Key: "apac", Label: "Asia Pacific"},
		},
		defaultKey:  "emea",
		dbms:        "postgresql",
		dsn:         "host=crm-db port=5432 dbname=crm sslmode=disable",
		table:       "public.regions",
		keyColumn:   "code",
		valueColumn: "name",
		cacheTTL:    300,
	},
}

// Seed inserts an example remote database field. It is safe to call on every
// startup because it returns early if any dynamic field already exists.
func Seed(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId(DynamicFields)
	if err != nil {
		return fmt.Errorf("seed: could not find %s collection: %w", DynamicFields, err)
	}
	existing, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("seed: could not query %s: %w", DynamicFields, err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: dynamic_fields collection is empty – inserting seed data …")

	for _, d := range seedFields {
		r := core.NewRecord(col)
		r.Set("name", d.name)
		r.Set("label", d.label)
		r.Set("field_order", d.fieldOrder)
		r.Set("valid", true)
		r.Set("object_type", d.objectType)
		r.Set("field_type", FieldTypeRemoteDB)
		r.Set("possible_values", d.values)
		r.Set("default_value", d.defaultKey)
		r.Set("dbms", d.dbms)
		r.Set("dsn", d.dsn)
		r.Set("db_table", d.table)
		r.Set("key_column", d.keyColumn)
		r.Set("value_column", d.valueColumn)
		r.Set("cache_ttl", d.cacheTTL)
		r.Set("max_query_result", 500)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save dynamic field %q: %w", d.name, err)
		}
	}

	log.Printf("seed: inserted %d dynamic field(s)", len(seedFields))
	return nil
}
