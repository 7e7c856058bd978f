package migrations

import (
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("bookings")
		collection.ListRule = types.Pointer("user_id = @request.auth.id")
		collection.ViewRule = types.Pointer("user_id = @request.auth.id")

		collection.Fields.Add(
			&core.TextField{Name: "booking_reference", Required: true, Max: 32},
			&core.RelationField{Name: "user_id", Required: true, CollectionId: users.Id, MaxSelect: 1},
			&core.RelationField{Name: "event_id", Required: true, CollectionId: events.Id, MaxSelect: 1},
			&core.NumberField{Name: "total_amount", Min: types.Pointer(0.0)},
			&core.SelectField{
				Name:      "booking_status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{models.BookingStatusConfirmed, models.BookingStatusCancelled, models.BookingStatusPending},
			},
			&core.SelectField{
				Name:      "payment_status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusRefunded, models.PaymentStatusFailed},
			},
			&core.TextField{Name: "payment_method", Max: 32},
			&core.TextField{Name: "customer_name", Required: true, Max: 200},
			&core.EmailField{Name: "customer_email", Required: true},
			&core.TextField{Name: "customer_phone", Max: 32},
			&core.NumberField{Name: "seat_count", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "qr_code", Max: 64},
			&core.TextField{Name: "qr_payload", Max: 2000},
			&core.DateField{Name: "cancelled_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_bookings_reference", true, "booking_reference", "")
		collection.AddIndex("idx_bookings_user", false, "user_id, created", "")
		collection.AddIndex("idx_bookings_event", false, "event_id, booking_status", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
