package catalog

import (
	"github.com/go-chi/chi/v5"
)

// Router creates a chi.Router exposing the lookup catalog: read endpoints
// for every lookup table and the admin mutations for statuses, action types,
// and the attachment content-type allowlist.
func Router(store *Store, registry *Registry) chi.Router {
	r := chi.NewRouter()

	r.Get("/sites", listHandler(store.ListSites))
	r.Get("/categories", listHandler(store.ListCategories))
	r.Get("/makes", listMakesHandler(store))
	r.Get("/models", listModelsHandler(store))
	r.Get("/variants", listVariantsHandler(store))
	r.Get("/asset-statuses", listHandler(store.ListAssetStatuses))
	r.Get("/issue-statuses", listHandler(store.ListIssueStatuses))
	r.Get("/action-types", listHandler(store.ListActionTypes))
	r.Get("/accepted-content-types", listHandler(store.ListAcceptedContentTypes))

	r.Post("/issue-statuses", createIssueStatusHandler(store, registry))
	r.Post("/action-types", createActionTypeHandler(store, registry))
	r.Post("/accepted-content-types", createAcceptedContentTypeHandler(store))

	return r
}
