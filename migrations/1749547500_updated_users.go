package migrations

import (
	"ticket-storefront/models"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Only superusers may assign roles; the public API rejects any body that
// carries one.
const (
	usersCreateRule = "@request.body.role:isset = false"
	usersUpdateRule = "id = @request.auth.id && @request.body.role:isset = false"

	defaultUsersCreateRule = ""
	defaultUsersUpdateRule = "id = @request.auth.id"
)

func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection.Fields.Add(&core.SelectField{
			Name:      "role",
			MaxSelect: 1,
			Values:    []string{models.RoleCustomer, models.RoleAdmin},
		})
		collection.Fields.Add(&core.TextField{Name: "phone", Max: 32})

		collection.CreateRule = types.Pointer(usersCreateRule)
		collection.UpdateRule = types.Pointer(usersUpdateRule)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection.Fields.RemoveByName("role")
		collection.Fields.RemoveByName("phone")

		collection.CreateRule = types.Pointer(defaultUsersCreateRule)
		collection.UpdateRule = types.Pointer(defaultUsersUpdateRule)

		return app.Save(collection)
	})
}
