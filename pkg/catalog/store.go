package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
)

// Store provides read access to the lookup tables plus the few admin
// mutations (new statuses, action types, content types). All list operations
// return rows ordered by display_order then a natural key so UI ordering is
// deterministic.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates all lookup tables.
func (s *Store) AutoMigrate() error {
	models := []any{
		&Site{}, &Category{}, &Make{}, &Model{}, &Variant{},
		&AssetStatus{}, &IssueStatus{}, &ActionType{}, &AcceptedContentType{},
	}
	for _, m := range models {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto-migrate lookup tables: %w", err)
		}
	}
	return nil
}

// DB exposes the underlying handle for stores that join against lookup tables.
func (s *Store) DB() *gorm.DB { return s.db }

// ListSites returns all sites ordered by shorthand.
func (s *Store) ListSites() ([]Site, error) {
	var rows []Site
	if err := s.db.Order("shorthand ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return rows, nil
}

// ListCategories returns all categories ordered by label.
func (s *Store) ListCategories() ([]Category, error) {
	var rows []Category
	if err := s.db.Order("label ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return rows, nil
}

// ListMakes returns makes, optionally restricted to one category. An unknown
// category id yields an empty slice, not an error.
func (s *Store) ListMakes(categoryID string) ([]Make, error) {
	q := s.db.Order("label ASC")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	var rows []Make
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list makes: %w", err)
	}
	return rows, nil
}

// ListModels returns models, optionally restricted to one make.
func (s *Store) ListModels(makeID string) ([]Model, error) {
	q := s.db.Order("label ASC")
	if makeID != "" {
		q = q.Where("make_id = ?", makeID)
	}
	var rows []Model
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return rows, nil
}

// ListVariants returns variants, optionally restricted to one model.
func (s *Store) ListVariants(modelID string) ([]Variant, error) {
	q := s.db.Order("label ASC")
	if modelID != "" {
		q = q.Where("model_id = ?", modelID)
	}
	var rows []Variant
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	return rows, nil
}

// ListAssetStatuses returns asset statuses in display order, ties broken by code.
func (s *Store) ListAssetStatuses() ([]AssetStatus, error) {
	var rows []AssetStatus
	if err := s.db.Order("display_order ASC, code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list asset statuses: %w", err)
	}
	return rows, nil
}

// ListIssueStatuses returns issue statuses in display order, ties broken by code.
func (s *Store) ListIssueStatuses() ([]IssueStatus, error) {
	var rows []IssueStatus
	if err := s.db.Order("display_order ASC, code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list issue statuses: %w", err)
	}
	return rows, nil
}

// ListActionTypes returns action types in display order, ties broken by code.
func (s *Store) ListActionTypes() ([]ActionType, error) {
	var rows []ActionType
	if err := s.db.Order("display_order ASC, code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list action types: %w", err)
	}
	return rows, nil
}

// ListAcceptedContentTypes returns the attachment content-type allowlist.
func (s *Store) ListAcceptedContentTypes() ([]AcceptedContentType, error) {
	var rows []AcceptedContentType
	if err := s.db.Order("content_type ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list accepted content types: %w", err)
	}
	return rows, nil
}

// IsAcceptedContentType reports whether ct is on the allowlist. The allowlist
// is mutable at runtime, so this reads the table rather than a cached snapshot.
func (s *Store) IsAcceptedContentType(ct string) (bool, error) {
	var count int64
	if err := s.db.Model(&AcceptedContentType{}).Where("content_type = ?", ct).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check accepted content type: %w", err)
	}
	return count > 0, nil
}

// CreateParams is the payload for creating an issue status or action type.
type CreateParams struct {
	Code         string `json:"code" validate:"required"`
	Label        string `json:"label" validate:"required"`
	DisplayOrder int    `json:"display_order"`
}

// CreateIssueStatus inserts a new issue status. The code is upper-cased;
// a duplicate code is a conflict.
func (s *Store) CreateIssueStatus(p CreateParams) (*IssueStatus, error) {
	code, err := normalizeCode(p)
	if err != nil {
		return nil, err
	}
	row := &IssueStatus{
		ID:           uuid.New().String(),
		Code:         code,
		Label:        p.Label,
		DisplayOrder: p.DisplayOrder,
	}
	var count int64
	if err := s.db.Model(&IssueStatus{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check issue status code: %w", err)
	}
	if count > 0 {
		return nil, apperr.Conflictf("issue status code %q already exists", code)
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("create issue status: %w", err)
	}
	return row, nil
}

// CreateActionType inserts a new action type. The code is upper-cased;
// a duplicate code is a conflict.
func (s *Store) CreateActionType(p CreateParams) (*ActionType, error) {
	code, err := normalizeCode(p)
	if err != nil {
		return nil, err
	}
	row := &ActionType{
		ID:           uuid.New().String(),
		Code:         code,
		Label:        p.Label,
		DisplayOrder: p.DisplayOrder,
	}
	var count int64
	if err := s.db.Model(&ActionType{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check action type code: %w", err)
	}
	if count > 0 {
		return nil, apperr.Conflictf("action type code %q already exists", code)
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("create action type: %w", err)
	}
	return row, nil
}

// CreateAcceptedContentType adds a content type to the attachment allowlist.
func (s *Store) CreateAcceptedContentType(contentType string) (*AcceptedContentType, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		return nil, apperr.Validationf("content_type is required")
	}
	ok, err := s.IsAcceptedContentType(ct)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, apperr.Conflictf("content type %q already accepted", ct)
	}
	row := &AcceptedContentType{ID: uuid.New().String(), ContentType: ct}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("create accepted content type: %w", err)
	}
	return row, nil
}

func normalizeCode(p CreateParams) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(p.Code))
	if code == "" || strings.TrimSpace(p.Label) == "" {
		return "", apperr.Validationf("code and label are required")
	}
	return code, nil
}

// GetSite fetches one site by id. Returns a not-found error when absent.
func (s *Store) GetSite(id string) (*Site, error) {
	var row Site
	if err := s.db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("site %q not found", id)
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	return &row, nil
}
