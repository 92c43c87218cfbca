package attachments

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

// issueStub is the minimal issues table for the existence check; the real
// table is owned by the issues package.
type issueStub struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Title     string    `gorm:"column:title"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (issueStub) TableName() string { return "issues" }

func newAttachmentStore(t *testing.T) (*Store, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	catalogStore := catalog.NewStore(db)
	require.NoError(t, catalogStore.AutoMigrate())
	require.NoError(t, catalog.SeedDefaults(db))
	require.NoError(t, db.AutoMigrate(&issueStub{}))

	root := t.TempDir()
	blobs, err := NewBlobStore(root)
	require.NoError(t, err)

	store := NewStore(db, blobs, catalogStore)
	require.NoError(t, store.AutoMigrate())

	issueID := uuid.New().String()
	require.NoError(t, db.Create(&issueStub{ID: issueID, Title: "t", CreatedAt: time.Now().UTC()}).Error)
	return store, issueID
}

func TestAddAttachment(t *testing.T) {
	store, issueID := newAttachmentStore(t)

	row, err := store.Add(issueID, "image/png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	assert.Equal(t, issueID, row.IssueID)
	assert.Equal(t, "image/png", row.ContentType)
	assert.Equal(t, "issues/"+issueID+"/attachment.png", row.Filepath)

	rc, contentType, err := store.Open(issueID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/png", contentType)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestAddAttachment_RejectedContentType(t *testing.T) {
	store, issueID := newAttachmentStore(t)

	_, err := store.Add(issueID, "application/x-msdownload", strings.NewReader("mz"))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	_, err = store.Add(issueID, "", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestAddAttachment_IssueNotFound(t *testing.T) {
	store, _ := newAttachmentStore(t)

	_, err := store.Add(uuid.New().String(), "image/png", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestAddAttachment_SecondUploadConflictsAndKeepsFirstFile(t *testing.T) {
	store, issueID := newAttachmentStore(t)

	_, err := store.Add(issueID, "image/png", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = store.Add(issueID, "image/png", strings.NewReader("second"))
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	rc, _, err := store.Open(issueID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestAddAttachment_EmptyBody(t *testing.T) {
	store, issueID := newAttachmentStore(t)

	_, err := store.Add(issueID, "image/png", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// The failed upload leaves no metadata behind.
	_, err = store.Get(issueID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

// A second metadata insert for the same issue must surface as
// gorm.ErrDuplicatedKey so Add can report a conflict without touching the
// winner's file. This is the path a concurrent upload takes past the
// pre-insert check.
func TestAddAttachment_UniqueIndexViolationIsTranslated(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Attachment{}))

	issueID := uuid.New().String()
	rel := "issues/" + issueID + "/attachment.png"
	first := Attachment{ID: uuid.New().String(), IssueID: issueID, Filepath: rel, ContentType: "image/png"}
	require.NoError(t, db.Create(&first).Error)

	second := Attachment{ID: uuid.New().String(), IssueID: issueID, Filepath: rel, ContentType: "image/png"}
	err = db.Create(&second).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGetAttachment_NotFound(t *testing.T) {
	store, issueID := newAttachmentStore(t)
	_, err := store.Get(issueID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	_, _, err = store.Open(issueID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestBlobStore_PathEscapes(t *testing.T) {
	blobs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	for _, rel := range []string{
		"",
		"/etc/passwd",
		"../outside",
		"issues/../../outside",
		"issues/..",
	} {
		_, err := blobs.Put(rel, strings.NewReader("data"))
		assert.Truef(t, apperr.IsValidation(err), "path %q must be rejected", rel)
	}
}

func TestBlobStore_PutOpenRemove(t *testing.T) {
	blobs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	n, err := blobs.Put("issues/x/attachment.bin", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	exists, err := blobs.Exists("issues/x/attachment.bin")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := blobs.Open("issues/x/attachment.bin")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, blobs.Remove("issues/x/attachment.bin"))
	exists, err = blobs.Exists("issues/x/attachment.bin")
	require.NoError(t, err)
	assert.False(t, exists)

	// Removing again is not an error.
	require.NoError(t, blobs.Remove("issues/x/attachment.bin"))

	_, err = blobs.Open("issues/x/attachment.bin")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
