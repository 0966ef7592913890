// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/valuelist"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestDynamicField creates a valid remote database field with the given
// name and possible values and returns it.
func CreateTestDynamicField(t *testing.T, app *pocketbase.PocketBase, name string, values []valuelist.Value) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.DynamicFields)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collections.DynamicFields, err)
	}

	if values == nil {
		values = []valuelist.Value{}
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("label", name+" label")
	record.Set("field_order", 1)
	record.Set("valid", true)
	record.Set("object_type", "Ticket")
	record.Set("field_type", collections.FieldTypeRemoteDB)
	record.Set("possible_values", values)
	record.Set("dbms", "mysql")
	record.Set("dsn", "DBI:mysql:database=crm;host=localhost")
	record.Set("db_table", "regions")
	record.Set("key_column", "code")
	record.Set("value_column", "name")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test dynamic field: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
