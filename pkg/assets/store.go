package assets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
	"github.com/fleetdesk/fleetdesk/pkg/httputil"
)

var validate = validator.New()

// RetiredMode selects which assets a listing sees relative to retirement.
type RetiredMode string

const (
	RetiredModeActive  RetiredMode = "active"
	RetiredModeRetired RetiredMode = "retired"
	RetiredModeAll     RetiredMode = "all"
)

// ParseRetiredMode normalizes a query value, defaulting to active.
func ParseRetiredMode(v string) RetiredMode {
	switch RetiredMode(strings.ToLower(strings.TrimSpace(v))) {
	case RetiredModeRetired:
		return RetiredModeRetired
	case RetiredModeAll:
		return RetiredModeAll
	default:
		return RetiredModeActive
	}
}

// ListFilters is the exact-match conjunction applied to an asset listing.
// Empty fields are not applied. MakeID and ModelID filter through the
// variant -> model -> make joins.
type ListFilters struct {
	SiteID     string
	CategoryID string
	StatusID   string
	MakeID     string
	ModelID    string
	VariantID  string
	AssetTag   string
}

// ListParams bundles filters, sorting, and pagination for List.
type ListParams struct {
	Filters     ListFilters
	Sort        []httputil.SortField
	Page        int
	PageSize    int
	RetiredMode RetiredMode
}

// ListResult is one page of assets plus the total count under the same filter.
type ListResult struct {
	Items    []Asset `json:"items"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Total    int64   `json:"total"`
}

// sortableColumns is the allowlist for caller-supplied sort fields. Unknown
// fields are dropped, not rejected.
var sortableColumns = map[string]string{
	"id":          "assets.id",
	"asset_tag":   "assets.asset_tag",
	"serial_num":  "assets.serial_num",
	"acquired_at": "assets.acquired_at",
	"retired_at":  "assets.retired_at",
	"created_at":  "assets.created_at",
	"updated_at":  "assets.updated_at",
	"site_id":     "assets.site_id",
	"category_id": "assets.category_id",
	"status_id":   "assets.status_id",
	"variant_id":  "assets.variant_id",
}

// CreateParams is the payload for creating an asset.
type CreateParams struct {
	AssetTag   string     `json:"asset_tag" validate:"required"`
	SiteID     string     `json:"site_id" validate:"required,uuid"`
	CategoryID string     `json:"category_id" validate:"required,uuid"`
	StatusID   string     `json:"status_id" validate:"required,uuid"`
	VariantID  string     `json:"variant_id" validate:"required,uuid"`
	SerialNum  *string    `json:"serial_num"`
	AcquiredAt *time.Time `json:"acquired_at"`
}

// Patch enumerates the mutable asset columns. Only non-nil fields are
// applied; the column set is fixed here rather than trusting caller-supplied
// column names.
type Patch struct {
	VariantID  *string    `json:"variant_id" validate:"omitempty,uuid"`
	CategoryID *string    `json:"category_id" validate:"omitempty,uuid"`
	SiteID     *string    `json:"site_id" validate:"omitempty,uuid"`
	StatusID   *string    `json:"status_id" validate:"omitempty,uuid"`
	SerialNum  *string    `json:"serial_num"`
	AssetTag   *string    `json:"asset_tag"`
	AcquiredAt *time.Time `json:"acquired_at"`
}

// Store provides CRUD and listing over assets.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the assets table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Asset{}); err != nil {
		return fmt.Errorf("auto-migrate assets: %w", err)
	}
	return nil
}

// Get fetches one asset by id.
func (s *Store) Get(id string) (*Asset, error) {
	var row Asset
	if err := s.db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("asset %q not found", id)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return &row, nil
}

// List returns a filtered, sorted page of assets and the total count under
// the same predicate. Page and page size are clamped to a minimum of 1.
func (s *Store) List(p ListParams) (*ListResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 1
	}

	base := s.filteredQuery(p.Filters, p.RetiredMode)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}

	q := base.Session(&gorm.Session{})
	order := buildOrder(p.Sort)
	q = q.Order(order).Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)

	var rows []Asset
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return &ListResult{Items: rows, Page: p.Page, PageSize: p.PageSize, Total: total}, nil
}

func (s *Store) filteredQuery(f ListFilters, mode RetiredMode) *gorm.DB {
	q := s.db.Model(&Asset{})

	switch mode {
	case RetiredModeRetired:
		q = q.Where("assets.retired_at IS NOT NULL")
	case RetiredModeAll:
		// no predicate
	default:
		q = q.Where("assets.retired_at IS NULL")
	}

	if f.SiteID != "" {
		q = q.Where("assets.site_id = ?", f.SiteID)
	}
	if f.CategoryID != "" {
		q = q.Where("assets.category_id = ?", f.CategoryID)
	}
	if f.StatusID != "" {
		q = q.Where("assets.status_id = ?", f.StatusID)
	}
	if f.VariantID != "" {
		q = q.Where("assets.variant_id = ?", f.VariantID)
	}
	if f.AssetTag != "" {
		q = q.Where("assets.asset_tag = ?", f.AssetTag)
	}
	if f.ModelID != "" || f.MakeID != "" {
		q = q.Joins("JOIN asset_variants ON asset_variants.id = assets.variant_id")
		if f.ModelID != "" {
			q = q.Where("asset_variants.model_id = ?", f.ModelID)
		}
		if f.MakeID != "" {
			q = q.Joins("JOIN asset_models ON asset_models.id = asset_variants.model_id").
				Where("asset_models.make_id = ?", f.MakeID)
		}
	}
	return q
}

func buildOrder(sort []httputil.SortField) string {
	var parts []string
	for _, f := range sort {
		col, ok := sortableColumns[f.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return "assets.id ASC"
	}
	return strings.Join(parts, ", ")
}

// Create inserts a new asset. Id and timestamps are system-generated.
func (s *Store) Create(p CreateParams) (*Asset, error) {
	if err := validate.Struct(p); err != nil {
		return nil, apperr.Validationf("invalid asset payload: %v", err)
	}
	now := time.Now().UTC()
	row := &Asset{
		ID:         uuid.New().String(),
		VariantID:  p.VariantID,
		CategoryID: p.CategoryID,
		SiteID:     p.SiteID,
		StatusID:   p.StatusID,
		SerialNum:  p.SerialNum,
		AssetTag:   p.AssetTag,
		AcquiredAt: p.AcquiredAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return row, nil
}

// ApplyPatch applies a partial update. An empty patch is a no-op returning
// the current row with updated_at untouched.
func (s *Store) ApplyPatch(id string, patch Patch) (*Asset, error) {
	if err := validate.Struct(patch); err != nil {
		return nil, apperr.Validationf("invalid asset patch: %v", err)
	}

	updates := map[string]any{}
	if patch.VariantID != nil {
		updates["variant_id"] = *patch.VariantID
	}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}
	if patch.SiteID != nil {
		updates["site_id"] = *patch.SiteID
	}
	if patch.StatusID != nil {
		updates["status_id"] = *patch.StatusID
	}
	if patch.SerialNum != nil {
		updates["serial_num"] = *patch.SerialNum
	}
	if patch.AssetTag != nil {
		updates["asset_tag"] = *patch.AssetTag
	}
	if patch.AcquiredAt != nil {
		updates["acquired_at"] = *patch.AcquiredAt
	}

	if len(updates) == 0 {
		return s.Get(id)
	}
	updates["updated_at"] = time.Now().UTC()

	res := s.db.Model(&Asset{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("patch asset: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFoundf("asset %q not found", id)
	}
	return s.Get(id)
}

// Retire soft-deletes an asset: stamps retired_at and the reason. Retiring an
// already-retired asset re-stamps both.
func (s *Store) Retire(id, reason string) (*Asset, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validationf("retire_reason is required")
	}
	now := time.Now().UTC()
	res := s.db.Model(&Asset{}).Where("id = ?", id).Updates(map[string]any{
		"retired_at":    now,
		"retire_reason": reason,
		"updated_at":    now,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("retire asset: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFoundf("asset %q not found", id)
	}
	return s.Get(id)
}
