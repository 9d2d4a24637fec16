package handlers

import (
	"seds-backend/application/queries"
	"seds-backend/application/queries/bus"
)

// Register binds every query to its handler on the bus.
func Register(b *bus.QueryBus, forms *FormQueryHandler, catalog *CatalogQueryHandler, users *UserQueryHandler) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetFormQuery{}, bus.Typed(forms.GetForm)},
		{queries.ListStateFormsQuery{}, bus.Typed(forms.ListStateForms)},
		{queries.GetGridQuery{}, bus.Typed(forms.GetGrid)},
		{queries.RenderGridQuery{}, bus.Typed(forms.RenderGrid)},
		{queries.ListFormTypesQuery{}, bus.Typed(catalog.ListFormTypes)},
		{queries.GetFormTemplateQuery{}, bus.Typed(catalog.GetFormTemplate)},
		{queries.ListUsersQuery{}, bus.Typed(users.ListUsers)},
		{queries.GetUserQuery{}, bus.Typed(users.GetUser)},
		{queries.GetUserBySubQuery{}, bus.Typed(users.GetUserBySub)},
	}

	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}
