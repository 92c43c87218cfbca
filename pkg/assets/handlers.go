package assets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/pkg/catalog"
	"github.com/fleetdesk/fleetdesk/pkg/filters"
	"github.com/fleetdesk/fleetdesk/pkg/httputil"
)

// getAssetHandler handles GET /assets/{assetId}.
func getAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assetId")
		row, err := store.Get(id)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, row)
	}
}

// listAssetsHandler handles GET /assets. Classification filters are run
// through the cascade validation before the query is built, so a make that
// does not belong to the selected category drops the make, model, and
// variant filters together.
func listAssetsHandler(store *Store, catalogStore *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f ListFilters
		var err error
		if f.SiteID, err = httputil.QueryUUID(r, "site_id"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		if f.StatusID, err = httputil.QueryUUID(r, "status_id"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		cascade := filters.Cascade{}
		if cascade.CategoryID, err = httputil.QueryUUID(r, "category_id"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		if cascade.MakeID, err = httputil.QueryUUID(r, "make_id"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		if cascade.ModelID, err = httputil.QueryUUID(r, "model_id"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		if cascade.VariantID, err = httputil.QueryUUID(r, "variant_id"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		cascade, err = filters.ResolveCascade(catalogStore, cascade)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		f.CategoryID = cascade.CategoryID
		f.MakeID = cascade.MakeID
		f.ModelID = cascade.ModelID
		f.VariantID = cascade.VariantID
		f.AssetTag = strings.TrimSpace(r.URL.Query().Get("asset_tag"))

		params := ListParams{
			Filters:     f,
			Sort:        httputil.ParseSort(r.URL.Query().Get("sort")),
			Page:        httputil.QueryInt(r, "page", 1),
			PageSize:    httputil.QueryInt(r, "page_size", 50),
			RetiredMode: ParseRetiredMode(r.URL.Query().Get("retired")),
		}

		result, err := store.List(params)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

// createAssetHandler handles POST /assets.
func createAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p CreateParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		row, err := store.Create(p)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, row)
	}
}

// patchAssetHandler handles PATCH /assets/{assetId}.
func patchAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assetId")
		var patch Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		row, err := store.ApplyPatch(id, patch)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, row)
	}
}

// retireAssetHandler handles POST /assets/{assetId}/retire.
func retireAssetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assetId")
		var p struct {
			RetireReason string `json:"retire_reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		row, err := store.Retire(id, p.RetireReason)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, row)
	}
}
