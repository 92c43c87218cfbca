package issues

import (
	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

// Router creates a chi.Router for the issue tracker. The catalog store is
// needed to validate cascading classification filters on listings.
func Router(store *Store, catalogStore *catalog.Store) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listIssuesHandler(store, catalogStore))
	r.Post("/", createIssueHandler(store))
	r.Get("/summary", summaryHandler(store))
	r.Get("/{issueId}", getIssueHandler(store))
	r.Patch("/{issueId}", patchIssueHandler(store))
	r.Post("/{issueId}/actions", addActionHandler(store))

	return r
}
