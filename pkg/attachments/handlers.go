package attachments

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/pkg/httputil"
)

// uploadHandler handles POST /issues/{issueId}/attachment. The body is the
// raw file; the Content-Type header names the type checked against the
// allowlist.
func uploadHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID := chi.URLParam(r, "issueId")
		row, err := store.Add(issueID, r.Header.Get("Content-Type"), r.Body)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, row)
	}
}

// downloadHandler handles GET /issues/{issueId}/attachment, streaming the
// stored bytes with the stored content type.
func downloadHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID := chi.URLParam(r, "issueId")
		rc, contentType, err := store.Open(issueID)
		if err != nil {
			httputil.WriteAppError(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, rc)
	}
}

// Mount registers the attachment routes on an issue-scoped router.
func Mount(r chi.Router, store *Store) {
	r.Post("/{issueId}/attachment", uploadHandler(store))
	r.Get("/{issueId}/attachment", downloadHandler(store))
}
