package migrations

import (
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")
		collection.ListRule = types.Pointer("")
		collection.ViewRule = types.Pointer("")

		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 200},
			&core.TextField{Name: "description", Max: 5000},
			&core.SelectField{Name: "category", Required: true, MaxSelect: 1, Values: models.Categories},
			&core.TextField{Name: "venue_name", Required: true, Max: 200},
			&core.TextField{Name: "venue_address", Max: 500},
			&core.DateField{Name: "event_date", Required: true},
			&core.TextField{Name: "event_time", Max: 5},
			&core.NumberField{Name: "duration", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.URLField{Name: "image_url"},
			&core.NumberField{Name: "base_price", Min: types.Pointer(0.0)},
			&core.NumberField{Name: "total_seats", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "available_seats", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: models.EventStatuses},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_events_status_date", false, "status, event_date", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
