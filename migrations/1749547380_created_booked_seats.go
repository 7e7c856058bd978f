package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		bookings, err := app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return err
		}
		seats, err := app.FindCollectionByNameOrId("seats")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("booked_seats")
		collection.ListRule = types.Pointer("booking_id.user_id = @request.auth.id")
		collection.ViewRule = types.Pointer("booking_id.user_id = @request.auth.id")

		collection.Fields.Add(
			&core.RelationField{Name: "booking_id", Required: true, CollectionId: bookings.Id, CascadeDelete: true, MaxSelect: 1},
			&core.RelationField{Name: "seat_id", Required: true, CollectionId: seats.Id, MaxSelect: 1},
			&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
			&core.AutodateField{Name: "created", OnCreate: true},
		)

		collection.AddIndex("idx_booked_seats_booking", false, "booking_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("booked_seats")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
