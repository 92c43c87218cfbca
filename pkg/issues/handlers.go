package issues

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
	"github.com/fleetdesk/fleetdesk/pkg/catalog"
	"github.com/fleetdesk/fleetdesk/pkg/filters"
	"github.com/fleetdesk/fleetdesk/pkg/httputil"
)

// createIssueHandler handles POST /issues. The dedup policy is chosen per
// request via ?dedup=window; the default always creates a new issue.
func createIssueHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p CreateParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		p.Dedup = ParseDedupPolicy(r.URL.Query().Get("dedup"))
		result, err := store.Create(p)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		status := http.StatusCreated
		if result.Deduplicated {
			status = http.StatusOK
		}
		httputil.WriteJSON(w, status, result)
	}
}

// listIssuesHandler handles GET /issues.
func listIssuesHandler(store *Store, catalogStore *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f ListFilters
		var err error
		if f.AssetID, err = httputil.QueryUUID(r, "asset_id"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
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

		f.ReportedBy = strings.TrimSpace(r.URL.Query().Get("reported_by"))
		f.Search = strings.TrimSpace(r.URL.Query().Get("search"))
		f.ClosedMode = ParseClosedMode(r.URL.Query().Get("closed"))

		if f.CreatedFrom, err = queryTime(r, "created_from"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		if f.CreatedTo, err = queryTime(r, "created_to"); err != nil {
			httputil.WriteAppError(w, err)
			return
		}

		page := httputil.QueryInt(r, "page", 1)
		pageSize := httputil.QueryInt(r, "page_size", 50)

		result, err := store.List(page, pageSize, f)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

// getIssueHandler handles GET /issues/{issueId}.
func getIssueHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := store.Get(chi.URLParam(r, "issueId"))
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, detail)
	}
}

// addActionHandler handles POST /issues/{issueId}/actions.
func addActionHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID := chi.URLParam(r, "issueId")
		var p ActionParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if err := store.AddAction(issueID, p); err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, map[string]string{"issue_id": issueID})
	}
}

// patchIssueHandler handles PATCH /issues/{issueId}.
func patchIssueHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID := chi.URLParam(r, "issueId")
		var patch Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		detail, err := store.ApplyPatch(issueID, patch)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, detail)
	}
}

// summaryHandler handles GET /issues/summary for the dashboard.
func summaryHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := store.GetSummary(
			[]string{catalog.IssueStatusOpen, catalog.IssueStatusInProgress},
			[]string{catalog.IssueStatusBlocked},
		)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summary)
	}
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperr.Validationf("invalid %s, must be RFC 3339", name)
	}
	return &t, nil
}
