package migrations

import (
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("seats")
		collection.ListRule = types.Pointer("")
		collection.ViewRule = types.Pointer("")

		collection.Fields.Add(
			&core.RelationField{Name: "event_id", Required: true, CollectionId: events.Id, CascadeDelete: true, MaxSelect: 1},
			&core.TextField{Name: "row_name", Required: true, Max: 2},
			&core.NumberField{Name: "seat_number", Required: true, OnlyInt: true, Min: types.Pointer(1.0)},
			&core.SelectField{Name: "seat_type", Required: true, MaxSelect: 1, Values: models.SeatTypes},
			&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
			&core.BoolField{Name: "is_available"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_seats_position", true, "event_id, row_name, seat_number", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("seats")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
