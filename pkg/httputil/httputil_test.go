package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
)

func TestParseSort(t *testing.T) {
	assert.Nil(t, ParseSort(""))
	assert.Nil(t, ParseSort(" , ,"))

	got := ParseSort("asset_tag,-created_at, serial_num ")
	require.Len(t, got, 3)
	assert.Equal(t, SortField{Field: "asset_tag"}, got[0])
	assert.Equal(t, SortField{Field: "created_at", Descending: true}, got[1])
	assert.Equal(t, SortField{Field: "serial_num"}, got[2])
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x", nil)
	assert.Equal(t, 3, QueryInt(r, "page", 1))
	assert.Equal(t, 1, QueryInt(r, "bad", 1))
	assert.Equal(t, 50, QueryInt(r, "missing", 50))
}

func TestQueryUUID(t *testing.T) {
	id := uuid.New().String()
	r := httptest.NewRequest(http.MethodGet, "/?site_id="+id+"&bad=nope", nil)

	got, err := QueryUUID(r, "site_id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = QueryUUID(r, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = QueryUUID(r, "bad")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestWriteAppError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.NotFoundf("missing"), http.StatusNotFound},
		{apperr.Validationf("bad input"), http.StatusBadRequest},
		{apperr.Conflictf("already there"), http.StatusConflict},
		{apperr.Internalf("boom"), http.StatusInternalServerError},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteAppError(w, tc.err)
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	}
}
