package attachments

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

// Attachment binds one stored file to an issue. The unique index on issue_id
// makes the one-attachment-per-issue invariant hold at the storage layer,
// not just in the pre-insert check.
type Attachment struct {
	ID          string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	IssueID     string `gorm:"column:issue_id;uniqueIndex;not null" json:"issue_id"`
	Filepath    string `gorm:"column:filepath;not null" json:"filepath"`
	ContentType string `gorm:"column:content_type;not null" json:"content_type"`
}

// TableName returns the GORM table name.
func (Attachment) TableName() string { return "issue_attachments" }

// extensionByContentType fixes the on-disk extension per content type so the
// extension never comes from client input. Allowlisted types without an
// entry fall back to "bin".
var extensionByContentType = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"application/pdf": "pdf",
}

// Store manages attachment metadata and delegates file bytes to the blob
// store. The content-type allowlist is read from the catalog on every upload
// because it is mutable at runtime.
type Store struct {
	db      *gorm.DB
	blobs   *BlobStore
	catalog *catalog.Store
}

// NewStore creates a Store.
func NewStore(db *gorm.DB, blobs *BlobStore, catalogStore *catalog.Store) *Store {
	return &Store{db: db, blobs: blobs, catalog: catalogStore}
}

// AutoMigrate creates or updates the attachment metadata table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Attachment{}); err != nil {
		return fmt.Errorf("auto-migrate attachments: %w", err)
	}
	return nil
}

// Add stores the attachment for an issue: validates the content type against
// the allowlist, writes the file to the deterministic per-issue path, then
// inserts the metadata row. A second attachment for the same issue is a
// conflict and never overwrites the first file.
func (s *Store) Add(issueID, contentType string, r io.Reader) (*Attachment, error) {
	if contentType == "" {
		return nil, apperr.Validationf("content type is required")
	}
	ok, err := s.catalog.IsAcceptedContentType(contentType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validationf("content type %q is not accepted", contentType)
	}

	var issueCount int64
	if err := s.db.Table("issues").Where("id = ?", issueID).Count(&issueCount).Error; err != nil {
		return nil, fmt.Errorf("check issue: %w", err)
	}
	if issueCount == 0 {
		return nil, apperr.NotFoundf("issue %q not found", issueID)
	}

	var existing int64
	if err := s.db.Model(&Attachment{}).Where("issue_id = ?", issueID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check existing attachment: %w", err)
	}
	if existing > 0 {
		return nil, apperr.Conflictf("issue %q already has an attachment", issueID)
	}

	ext, ok := extensionByContentType[contentType]
	if !ok {
		ext = "bin"
	}
	rel := fmt.Sprintf("issues/%s/attachment.%s", issueID, ext)

	if _, err := s.blobs.Put(rel, r); err != nil {
		return nil, err
	}

	row := &Attachment{
		ID:          uuid.New().String(),
		IssueID:     issueID,
		Filepath:    rel,
		ContentType: contentType,
	}
	if err := s.db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent second upload lost the race on the unique index.
			// The canonical path now holds the winner's metadata target, so
			// leave the file alone.
			return nil, apperr.Conflictf("issue %q already has an attachment", issueID)
		}
		_ = s.blobs.Remove(rel)
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return row, nil
}

// Get returns the attachment metadata for an issue.
func (s *Store) Get(issueID string) (*Attachment, error) {
	var row Attachment
	if err := s.db.Where("issue_id = ?", issueID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("issue %q has no attachment", issueID)
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return &row, nil
}

// Open returns a reader over the attachment bytes plus the stored content
// type. The stored path is re-validated against root escape before serving.
func (s *Store) Open(issueID string) (io.ReadCloser, string, error) {
	row, err := s.Get(issueID)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.blobs.Open(row.Filepath)
	if err != nil {
		return nil, "", err
	}
	return rc, row.ContentType, nil
}
