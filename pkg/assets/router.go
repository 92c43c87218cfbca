package assets

import (
	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

// Router creates a chi.Router for the asset directory. The catalog store is
// needed to validate cascading classification filters on listings.
func Router(store *Store, catalogStore *catalog.Store) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listAssetsHandler(store, catalogStore))
	r.Post("/", createAssetHandler(store))
	r.Get("/{assetId}", getAssetHandler(store))
	r.Patch("/{assetId}", patchAssetHandler(store))
	r.Post("/{assetId}/retire", retireAssetHandler(store))

	return r
}
