// Package httputil holds the JSON response helpers and query-parameter
// parsing shared by all fleetdesk handler packages.
package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteAppError maps an error from a store onto an HTTP status via its kind.
func WriteAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	WriteError(w, status, err.Error())
}

// QueryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func QueryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// QueryUUID returns the named query parameter when it is a well-formed UUID.
// Absent parameters yield ("", nil); malformed ones yield a validation error.
func QueryUUID(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", nil
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", apperr.Validationf("invalid %s, must be a UUID", name)
	}
	return v, nil
}

// SortField is one element of a parsed sort expression.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSort parses a sort expression like "asset_tag,-created_at" into
// ordered fields. Empty segments are skipped.
func ParseSort(expr string) []SortField {
	var out []SortField
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			f.Field = part[1:]
			f.Descending = true
		}
		out = append(out, f)
	}
	return out
}
