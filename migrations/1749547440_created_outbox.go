package migrations

import (
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("outbox")

		collection.Fields.Add(
			&core.TextField{Name: "uuid", Required: true, Max: 64},
			&core.TextField{Name: "name", Required: true, Max: 100},
			&core.JSONField{Name: "payload", MaxSize: 1 << 20},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{models.OutboxPending, models.OutboxDispatched, models.OutboxFailed},
			},
			&core.NumberField{Name: "attempts", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "last_error", Max: 2000},
			&core.TextField{Name: "correlation_id", Max: 100},
			&core.DateField{Name: "dispatched_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_outbox_uuid", true, "uuid", "")
		collection.AddIndex("idx_outbox_pending", false, "status, created", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("outbox")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
