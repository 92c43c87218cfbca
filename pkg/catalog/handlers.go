package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fleetdesk/fleetdesk/pkg/httputil"
)

var validate = validator.New()

func listHandler[T any](list func() ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := list()
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list lookup rows: %v", err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": rows})
	}
}

// listMakesHandler handles GET /makes?category_id=. The parent filter is
// optional; an absent filter returns every make.
func listMakesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := httputil.QueryUUID(r, "category_id")
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		rows, err := store.ListMakes(categoryID)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list makes: %v", err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": rows})
	}
}

func listModelsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		makeID, err := httputil.QueryUUID(r, "make_id")
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		rows, err := store.ListModels(makeID)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list models: %v", err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": rows})
	}
}

func listVariantsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := httputil.QueryUUID(r, "model_id")
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		rows, err := store.ListVariants(modelID)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list variants: %v", err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": rows})
	}
}

// createIssueStatusHandler handles POST /issue-statuses. The registry is
// reloaded on success so the new code resolves immediately.
func createIssueStatusHandler(store *Store, registry *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p CreateParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if err := validate.Struct(p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
			return
		}
		row, err := store.CreateIssueStatus(p)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		if err := registry.Reload(); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("failed to reload registry: %v", err))
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, row)
	}
}

func createActionTypeHandler(store *Store, registry *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p CreateParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if err := validate.Struct(p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
			return
		}
		row, err := store.CreateActionType(p)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		if err := registry.Reload(); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("failed to reload registry: %v", err))
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, row)
	}
}

func createAcceptedContentTypeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p struct {
			ContentType string `json:"content_type" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if err := validate.Struct(p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
			return
		}
		row, err := store.CreateAcceptedContentType(p.ContentType)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, row)
	}
}
