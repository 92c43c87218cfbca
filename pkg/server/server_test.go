package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fleetdesk/fleetdesk/pkg/assets"
	"github.com/fleetdesk/fleetdesk/pkg/attachments"
	"github.com/fleetdesk/fleetdesk/pkg/catalog"
	"github.com/fleetdesk/fleetdesk/pkg/issues"
)

// newTestServer wires the full API against an in-memory database the same way
// the server command does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	catalogStore := catalog.NewStore(db)
	require.NoError(t, catalogStore.AutoMigrate())
	require.NoError(t, catalog.SeedDefaults(db))

	assetStore := assets.NewStore(db)
	require.NoError(t, assetStore.AutoMigrate())

	registry, err := catalog.LoadRegistry(catalogStore)
	require.NoError(t, err)

	issueStore := issues.NewStore(db, registry)
	require.NoError(t, issueStore.AutoMigrate())

	blobs, err := attachments.NewBlobStore(t.TempDir())
	require.NoError(t, err)
	attachmentStore := attachments.NewStore(db, blobs, catalogStore)
	require.NoError(t, attachmentStore.AutoMigrate())

	router := New(db, Stores{
		Catalog:     catalogStore,
		Registry:    registry,
		Assets:      assetStore,
		Issues:      issueStore,
		Attachments: attachmentStore,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, true, body["ok"])
}

func TestIssueLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	// The seeded lookup catalog is served.
	resp, err := http.Get(ts.URL + "/api/v2/issue-statuses")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var statuses struct {
		Items []catalog.IssueStatus `json:"items"`
	}
	decodeBody(t, resp, &statuses)
	require.Len(t, statuses.Items, 4)
	statusByCode := map[string]catalog.IssueStatus{}
	for _, s := range statuses.Items {
		statusByCode[s.Code] = s
	}

	// File an asset to report against.
	resp = postJSON(t, ts.URL+"/api/v2/assets", map[string]any{
		"asset_tag":   "EV3-RC-11",
		"site_id":     "b9b7f92c-6f68-4b0e-9fb3-0f9c2d1e4a55",
		"category_id": "0a648a60-21a7-4b8e-9b5c-0f4b5d1c9e21",
		"status_id":   "5b7e2f35-4f4f-4ec4-863e-2f3e5b6a7c89",
		"variant_id":  "2f1d3c4b-5a69-4e7d-8b9c-1d2e3f4a5b6c",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var asset assets.Asset
	decodeBody(t, resp, &asset)
	require.NotEmpty(t, asset.ID)

	// File an issue.
	resp = postJSON(t, ts.URL+"/api/v2/issues", map[string]any{
		"asset_id":    asset.ID,
		"title":       "Broken wheel",
		"description": "left rear wheel does not spin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created issues.CreateResult
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.ID)

	// Close it through an action.
	resp = postJSON(t, ts.URL+"/api/v2/issues/"+created.ID+"/actions", map[string]any{
		"action_type_code": catalog.ActionTypeClosed,
		"body":             "verified fixed",
		"new_status_id":    statusByCode[catalog.IssueStatusClosed].ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/v2/issues/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail issues.Detail
	decodeBody(t, resp, &detail)
	assert.Equal(t, catalog.IssueStatusClosed, detail.Status.Code)
	require.NotNil(t, detail.ClosedAt)
	assert.Len(t, detail.Actions, 2)
	assert.Len(t, detail.StatusHistory, 2)

	// The default listing hides closed issues.
	resp, err = http.Get(ts.URL + "/api/v2/issues")
	require.NoError(t, err)
	var list issues.ListResult
	decodeBody(t, resp, &list)
	assert.Empty(t, list.Items)

	resp, err = http.Get(ts.URL + "/api/v2/issues?closed=true")
	require.NoError(t, err)
	decodeBody(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)
}

func TestAttachmentOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v2/assets", map[string]any{
		"asset_tag":   "EV3-RC-12",
		"site_id":     "b9b7f92c-6f68-4b0e-9fb3-0f9c2d1e4a55",
		"category_id": "0a648a60-21a7-4b8e-9b5c-0f4b5d1c9e21",
		"status_id":   "5b7e2f35-4f4f-4ec4-863e-2f3e5b6a7c89",
		"variant_id":  "2f1d3c4b-5a69-4e7d-8b9c-1d2e3f4a5b6c",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var asset assets.Asset
	decodeBody(t, resp, &asset)

	resp = postJSON(t, ts.URL+"/api/v2/issues", map[string]any{
		"asset_id":    asset.ID,
		"title":       "Cracked shell",
		"description": "casing split open",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created issues.CreateResult
	decodeBody(t, resp, &created)

	uploadURL := ts.URL + "/api/v2/issues/" + created.ID + "/attachment"
	resp, err := http.Post(uploadURL, "image/png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// A second upload conflicts.
	resp, err = http.Post(uploadURL, "image/png", strings.NewReader("other bytes"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(uploadURL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestValidationErrorsMapToBadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v2/issues", map[string]any{
		"asset_id": "not-a-uuid",
		"title":    "t",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v2/assets?site_id=not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
