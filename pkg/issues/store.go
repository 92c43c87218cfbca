package issues

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

var validate = validator.New()

// Store provides the issue lifecycle: creation, the action/status transition
// path, partial updates, and the denormalized read projections. Status codes
// and action types resolve through the catalog registry, never by re-querying
// the lookup tables.
type Store struct {
	db       *gorm.DB
	registry *catalog.Registry
}

// NewStore creates a Store on the given database handle and catalog registry.
func NewStore(db *gorm.DB, registry *catalog.Registry) *Store {
	return &Store{db: db, registry: registry}
}

// AutoMigrate creates or updates the issue tables.
func (s *Store) AutoMigrate() error {
	for _, m := range []any{&Issue{}, &Action{}, &StatusHistory{}} {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto-migrate issue tables: %w", err)
		}
	}
	return nil
}

// CreateParams is the payload for filing an issue.
type CreateParams struct {
	AssetID           string      `json:"asset_id" validate:"required,uuid"`
	Title             string      `json:"title" validate:"required"`
	Description       string      `json:"description" validate:"required"`
	ReportedBy        *string     `json:"reported_by"`
	CreatedBy         string      `json:"created_by"`
	StatusID          string      `json:"status_id" validate:"omitempty,uuid"`
	InitialActionBody string      `json:"initial_action_body"`
	Dedup             DedupPolicy `json:"-"`
}

// CreateResult reports the issue an initial report landed on. Deduplicated
// is true when the report was folded into an existing issue as a note.
type CreateResult struct {
	ID           string `json:"id"`
	Deduplicated bool   `json:"deduplicated"`
}

// Create files an issue. With DedupWindow, a matching open issue on the same
// asset within the trailing window absorbs the report as a NOTE action
// instead. Otherwise the issue row, the initial status-history entry
// (from=null), and the CREATED action are inserted in one transaction.
func (s *Store) Create(p CreateParams) (*CreateResult, error) {
	if err := validate.Struct(p); err != nil {
		return nil, apperr.Validationf("invalid issue payload: %v", err)
	}
	// The models carry no FK constraints, so a well-formed but nonexistent
	// asset id must be rejected here; the read projections inner-join assets
	// and would otherwise hide the issue forever.
	if err := s.assetExists(p.AssetID); err != nil {
		return nil, err
	}
	createdBy := p.CreatedBy
	if createdBy == "" {
		createdBy = defaultActor
	}
	now := time.Now().UTC()

	if p.Dedup == DedupWindow {
		existing, err := s.findDuplicate(p.AssetID, p.Description, now)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			noteType, ok := s.registry.ActionTypeByCode(catalog.ActionTypeNote)
			if !ok {
				return nil, apperr.Internalf("no action type with code %q in catalog", catalog.ActionTypeNote)
			}
			action := &Action{
				ID:           uuid.New().String(),
				IssueID:      existing.ID,
				ActionTypeID: noteType.ID,
				Body:         p.Description,
				CreatedAt:    now,
				CreatedBy:    createdBy,
			}
			err = s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(action).Error; err != nil {
					return fmt.Errorf("append duplicate report: %w", err)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			return &CreateResult{ID: existing.ID, Deduplicated: true}, nil
		}
	}

	statusID := p.StatusID
	if statusID == "" {
		open, err := s.registry.IssueStatusByCode(catalog.IssueStatusOpen)
		if err != nil {
			return nil, err
		}
		statusID = open.ID
	} else if _, ok := s.registry.IssueStatusByID(statusID); !ok {
		return nil, apperr.Validationf("unknown status_id: %s", statusID)
	}
	createdType, ok := s.registry.ActionTypeByCode(catalog.ActionTypeCreated)
	if !ok {
		return nil, apperr.Internalf("no action type with code %q in catalog", catalog.ActionTypeCreated)
	}
	initialBody := p.InitialActionBody
	if initialBody == "" {
		initialBody = "Issue created"
	}

	issue := &Issue{
		ID:          uuid.New().String(),
		AssetID:     p.AssetID,
		StatusID:    statusID,
		Title:       p.Title,
		Description: p.Description,
		ReportedBy:  p.ReportedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(issue).Error; err != nil {
			return fmt.Errorf("create issue: %w", err)
		}
		hist := &StatusHistory{
			ID:         uuid.New().String(),
			IssueID:    issue.ID,
			ToStatusID: statusID,
			ChangedAt:  now,
			ChangedBy:  createdBy,
		}
		if err := tx.Create(hist).Error; err != nil {
			return fmt.Errorf("create initial status history: %w", err)
		}
		action := &Action{
			ID:           uuid.New().String(),
			IssueID:      issue.ID,
			ActionTypeID: createdType.ID,
			Body:         initialBody,
			CreatedAt:    now,
			CreatedBy:    createdBy,
		}
		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("create initial action: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{ID: issue.ID}, nil
}

// assetExists verifies a referenced asset row is present.
func (s *Store) assetExists(id string) error {
	var count int64
	if err := s.db.Table("assets").Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check asset: %w", err)
	}
	if count == 0 {
		return apperr.NotFoundf("asset %q not found", id)
	}
	return nil
}

// findDuplicate scans non-closed issues on the asset created within the
// trailing window for a normalized-substring description match.
func (s *Store) findDuplicate(assetID, description string, now time.Time) (*Issue, error) {
	var candidates []Issue
	err := s.db.
		Where("asset_id = ? AND closed_at IS NULL AND created_at >= ?", assetID, now.Add(-dedupWindow)).
		Order("created_at DESC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("find duplicate issue: %w", err)
	}
	for i := range candidates {
		if isDuplicateDescription(candidates[i].Description, description) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// ActionParams is the payload for appending an action to an issue.
type ActionParams struct {
	ActionTypeCode string `json:"action_type_code" validate:"required"`
	Body           string `json:"body" validate:"required"`
	CreatedBy      string `json:"created_by"`
	NewStatusID    string `json:"new_status_id" validate:"omitempty,uuid"`
}

// AddAction appends an action and, when NewStatusID differs from the current
// status, performs the status transition: history row, status_id update, and
// the closed_at stamp (set iff the new status code is CLOSED, cleared
// otherwise). Action and transition commit in one transaction. This is the
// only write path for status_id.
func (s *Store) AddAction(issueID string, p ActionParams) error {
	if err := validate.Struct(p); err != nil {
		return apperr.Validationf("invalid action payload: %v", err)
	}
	createdBy := p.CreatedBy
	if createdBy == "" {
		createdBy = defaultActor
	}

	actionType, ok := s.registry.ActionTypeByCode(p.ActionTypeCode)
	if !ok {
		return apperr.Validationf("unknown action_type_code: %s", p.ActionTypeCode)
	}

	// Reading the current status doubles as the existence check.
	var issue Issue
	if err := s.db.Select("id", "status_id").Where("id = ?", issueID).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("issue %q not found", issueID)
		}
		return fmt.Errorf("get issue status: %w", err)
	}

	var newStatus catalog.IssueStatus
	transition := p.NewStatusID != "" && p.NewStatusID != issue.StatusID
	if transition {
		st, ok := s.registry.IssueStatusByID(p.NewStatusID)
		if !ok {
			return apperr.Validationf("unknown new_status_id: %s", p.NewStatusID)
		}
		newStatus = st
	}

	now := time.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		action := &Action{
			ID:           uuid.New().String(),
			IssueID:      issueID,
			ActionTypeID: actionType.ID,
			Body:         p.Body,
			CreatedAt:    now,
			CreatedBy:    createdBy,
		}
		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("create action: %w", err)
		}
		if !transition {
			return nil
		}
		hist := &StatusHistory{
			ID:           uuid.New().String(),
			IssueID:      issueID,
			FromStatusID: &issue.StatusID,
			ToStatusID:   newStatus.ID,
			ChangedAt:    now,
			ChangedBy:    createdBy,
		}
		if err := tx.Create(hist).Error; err != nil {
			return fmt.Errorf("create status history: %w", err)
		}
		var closedAt *time.Time
		if newStatus.Code == catalog.IssueStatusClosed {
			closedAt = &now
		}
		err := tx.Model(&Issue{}).Where("id = ?", issueID).Updates(map[string]any{
			"status_id":  newStatus.ID,
			"closed_at":  closedAt,
			"updated_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("update issue status: %w", err)
		}
		return nil
	})
}

// Patch enumerates the mutable issue columns. Status is deliberately absent;
// it only changes through AddAction.
type Patch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ReportedBy  *string `json:"reported_by"`
	AssetID     *string `json:"asset_id" validate:"omitempty,uuid"`
}

// ApplyPatch applies a partial update and returns the full issue view. An
// empty patch returns the current view with updated_at untouched.
func (s *Store) ApplyPatch(issueID string, patch Patch) (*Detail, error) {
	if err := validate.Struct(patch); err != nil {
		return nil, apperr.Validationf("invalid issue patch: %v", err)
	}

	if patch.AssetID != nil {
		if err := s.assetExists(*patch.AssetID); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ReportedBy != nil {
		updates["reported_by"] = *patch.ReportedBy
	}
	if patch.AssetID != nil {
		updates["asset_id"] = *patch.AssetID
	}

	if len(updates) == 0 {
		return s.Get(issueID)
	}
	updates["updated_at"] = time.Now().UTC()

	res := s.db.Model(&Issue{}).Where("id = ?", issueID).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("patch issue: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFoundf("issue %q not found", issueID)
	}
	return s.Get(issueID)
}
