package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/handlers"
)

func main() {
	app := pocketbase.New()

	var seed bool
	app.RootCmd.PersistentFlags().BoolVar(&seed, "seed", true,
		"insert an example remote database field when none exist")

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if seed {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		admin := se.Router.Group("/admin/dynamicfields")
		admin.BindFunc(handlers.AdminLayoutMiddleware(app))

		// ── Dynamic field CRUD ───────────────────────────────────
		admin.GET("", handlers.HandleDynamicFieldList(app))
		admin.GET("/create", handlers.HandleDynamicFieldCreate(app))
		admin.POST("", handlers.HandleDynamicFieldSave(app))
		admin.GET("/{id}/edit", handlers.HandleDynamicFieldEdit(app))
		admin.POST("/{id}/save", handlers.HandleDynamicFieldUpdate(app))
		admin.DELETE("/{id}", handlers.HandleDynamicFieldDelete(app))

		// ── Possible values editor ───────────────────────────────
		admin.POST("/values/add", handlers.HandleValueAdd(app))
		admin.POST("/values/remove", handlers.HandleValueRemove(app))
		admin.POST("/values/import", handlers.HandleValueImport(app))
		admin.GET("/{id}/values/export", handlers.HandleValuesExportExcel(app))

		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/admin/dynamicfields")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
