package issues

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
)

// issueSelect is the denormalized projection shared by Get and List: the
// issue row joined with its status, its asset, and the single most recent
// action (the "last activity" columns are null when no action exists).
const issueSelect = `issues.id, issues.title, issues.description, issues.reported_by,
issues.created_at, issues.updated_at, issues.closed_at,
issues.status_id, issue_statuses.code AS status_code, issue_statuses.label AS status_label,
issues.asset_id, assets.asset_tag, assets.site_id,
last_action.created_at AS last_action_at,
last_action_type.code AS last_action_type_code,
last_action_type.label AS last_action_type_label`

const lastActionJoin = `LEFT JOIN issue_actions last_action ON last_action.id = (
SELECT ia.id FROM issue_actions ia
WHERE ia.issue_id = issues.id
ORDER BY ia.created_at DESC, ia.id DESC
LIMIT 1)`

func (s *Store) projectedQuery() *gorm.DB {
	return s.db.Table("issues").
		Select(issueSelect).
		Joins("JOIN issue_statuses ON issue_statuses.id = issues.status_id").
		Joins("JOIN assets ON assets.id = issues.asset_id").
		Joins(lastActionJoin).
		Joins("LEFT JOIN action_types last_action_type ON last_action_type.id = last_action.action_type_id")
}

// Get returns the full denormalized issue: projection plus the complete
// action timeline and status history, both newest-first.
func (s *Store) Get(issueID string) (*Detail, error) {
	var rows []issueRow
	if err := s.projectedQuery().Where("issues.id = ?", issueID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFoundf("issue %q not found", issueID)
	}
	r := rows[0]

	actions, err := s.listActions(issueID)
	if err != nil {
		return nil, err
	}
	history, err := s.listStatusHistory(issueID)
	if err != nil {
		return nil, err
	}

	item := r.toListItem()
	return &Detail{
		ID:                  item.ID,
		Title:               item.Title,
		Description:         r.Description,
		Status:              item.Status,
		Asset:               item.Asset,
		ReportedBy:          item.ReportedBy,
		CreatedAt:           item.CreatedAt,
		UpdatedAt:           item.UpdatedAt,
		ClosedAt:            item.ClosedAt,
		LastActionAt:        item.LastActionAt,
		LastActionType:      item.LastActionType,
		LastActionTypeLabel: r.LastActionTypeLabel,
		Actions:             actions,
		StatusHistory:       history,
	}, nil
}

type actionRow struct {
	ID              string
	ActionTypeID    string
	ActionTypeCode  string
	ActionTypeLabel string
	Body            string
	CreatedAt       time.Time
	CreatedBy       string
}

func (s *Store) listActions(issueID string) ([]ActionView, error) {
	var rows []actionRow
	err := s.db.Table("issue_actions").
		Select(`issue_actions.id, issue_actions.body, issue_actions.created_at, issue_actions.created_by,
issue_actions.action_type_id, action_types.code AS action_type_code, action_types.label AS action_type_label`).
		Joins("JOIN action_types ON action_types.id = issue_actions.action_type_id").
		Where("issue_actions.issue_id = ?", issueID).
		Order("issue_actions.created_at DESC, issue_actions.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list issue actions: %w", err)
	}
	views := make([]ActionView, len(rows))
	for i, a := range rows {
		views[i] = ActionView{
			ID: a.ID,
			Type: TypeRef{
				ID:    a.ActionTypeID,
				Code:  a.ActionTypeCode,
				Label: a.ActionTypeLabel,
			},
			Body:      a.Body,
			CreatedAt: a.CreatedAt,
			CreatedBy: a.CreatedBy,
		}
	}
	return views, nil
}

type historyRow struct {
	ID           string
	FromStatusID *string
	FromCode     *string
	FromLabel    *string
	ToStatusID   string
	ToCode       string
	ToLabel      string
	ChangedAt    time.Time
	ChangedBy    string
}

func (s *Store) listStatusHistory(issueID string) ([]HistoryView, error) {
	var rows []historyRow
	err := s.db.Table("issue_status_history").
		Select(`issue_status_history.id, issue_status_history.from_status_id, issue_status_history.to_status_id,
issue_status_history.changed_at, issue_status_history.changed_by,
from_status.code AS from_code, from_status.label AS from_label,
to_status.code AS to_code, to_status.label AS to_label`).
		Joins("LEFT JOIN issue_statuses from_status ON from_status.id = issue_status_history.from_status_id").
		Joins("JOIN issue_statuses to_status ON to_status.id = issue_status_history.to_status_id").
		Where("issue_status_history.issue_id = ?", issueID).
		Order("issue_status_history.changed_at DESC, issue_status_history.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list issue status history: %w", err)
	}
	views := make([]HistoryView, len(rows))
	for i, h := range rows {
		v := HistoryView{
			ID: h.ID,
			ToStatus: StatusRef{
				ID:    h.ToStatusID,
				Code:  h.ToCode,
				Label: h.ToLabel,
			},
			ChangedAt: h.ChangedAt,
			ChangedBy: h.ChangedBy,
		}
		if h.FromStatusID != nil {
			v.FromStatus = &StatusRef{ID: *h.FromStatusID}
			if h.FromCode != nil {
				v.FromStatus.Code = *h.FromCode
			}
			if h.FromLabel != nil {
				v.FromStatus.Label = *h.FromLabel
			}
		}
		views[i] = v
	}
	return views, nil
}

// ClosedMode selects which issues a listing sees relative to closed_at.
type ClosedMode string

const (
	ClosedModeOpen   ClosedMode = "open"
	ClosedModeClosed ClosedMode = "closed"
	ClosedModeAll    ClosedMode = "all"
)

// ParseClosedMode maps the `closed` query value onto a mode: "true" means
// closed, "false" open, "all" everything. Anything else defaults to open.
func ParseClosedMode(v string) ClosedMode {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", string(ClosedModeClosed):
		return ClosedModeClosed
	case "all":
		return ClosedModeAll
	default:
		return ClosedModeOpen
	}
}

// ListFilters is the conjunction applied to an issue listing. Empty fields
// are not applied. Classification filters go through the asset joins; Search
// is a case-insensitive substring match over title, description, and the
// asset tag.
type ListFilters struct {
	AssetID     string
	SiteID      string
	StatusID    string
	ReportedBy  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	ClosedMode  ClosedMode
	Search      string
	CategoryID  string
	MakeID      string
	ModelID     string
	VariantID   string
}

// List returns a page of denormalized issues ordered created_at DESC plus
// the total count under the same predicate.
func (s *Store) List(page, pageSize int, f ListFilters) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	var total int64
	if err := s.applyFilters(s.countQuery(), f).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count issues: %w", err)
	}

	q := s.applyFilters(s.projectedQuery(), f).
		Order("issues.created_at DESC, issues.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize)

	var rows []issueRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	items := make([]ListItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toListItem()
	}
	return &ListResult{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *Store) countQuery() *gorm.DB {
	return s.db.Table("issues").
		Joins("JOIN issue_statuses ON issue_statuses.id = issues.status_id").
		Joins("JOIN assets ON assets.id = issues.asset_id")
}

// applyFilters adds the shared WHERE clauses; the page and count queries use
// the exact same predicate so total stays consistent with the page.
func (s *Store) applyFilters(q *gorm.DB, f ListFilters) *gorm.DB {
	switch f.ClosedMode {
	case ClosedModeClosed:
		q = q.Where("issues.closed_at IS NOT NULL")
	case ClosedModeAll:
		// no predicate
	default:
		q = q.Where("issues.closed_at IS NULL")
	}

	if f.AssetID != "" {
		q = q.Where("issues.asset_id = ?", f.AssetID)
	}
	if f.SiteID != "" {
		q = q.Where("assets.site_id = ?", f.SiteID)
	}
	if f.StatusID != "" {
		q = q.Where("issues.status_id = ?", f.StatusID)
	}
	if f.ReportedBy != "" {
		q = q.Where("issues.reported_by = ?", f.ReportedBy)
	}
	if f.CreatedFrom != nil {
		q = q.Where("issues.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("issues.created_at <= ?", *f.CreatedTo)
	}
	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"LOWER(issues.title) LIKE ? OR LOWER(issues.description) LIKE ? OR LOWER(assets.asset_tag) LIKE ?",
			term, term, term,
		)
	}
	if f.CategoryID != "" {
		q = q.Where("assets.category_id = ?", f.CategoryID)
	}
	if f.VariantID != "" {
		q = q.Where("assets.variant_id = ?", f.VariantID)
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

// Summary is the dashboard projection: issue counts by status-code group and
// the oldest open issue with a human-readable age.
type Summary struct {
	NumOpenIssues    int64        `json:"num_open_issues"`
	NumBlockedIssues int64        `json:"num_blocked_issues"`
	OldestIssue      *OldestIssue `json:"oldest_issue"`
}

// OldestIssue identifies the longest-open issue.
type OldestIssue struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Age       string    `json:"age"`
}

// GetSummary computes the dashboard summary. openCodes are treated as
// "open-like" for both the count and the oldest-issue lookup.
func (s *Store) GetSummary(openCodes, blockedCodes []string) (*Summary, error) {
	numOpen, err := s.countByStatusCodes(openCodes)
	if err != nil {
		return nil, err
	}
	numBlocked, err := s.countByStatusCodes(blockedCodes)
	if err != nil {
		return nil, err
	}

	summary := &Summary{NumOpenIssues: numOpen, NumBlockedIssues: numBlocked}

	if len(openCodes) > 0 {
		var rows []struct {
			ID        string
			CreatedAt time.Time
		}
		err := s.db.Table("issues").
			Select("issues.id, issues.created_at").
			Joins("JOIN issue_statuses ON issue_statuses.id = issues.status_id").
			Where("issue_statuses.code IN ?", openCodes).
			Order("issues.created_at ASC").
			Limit(1).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("get oldest issue: %w", err)
		}
		if len(rows) > 0 {
			summary.OldestIssue = &OldestIssue{
				ID:        rows[0].ID,
				CreatedAt: rows[0].CreatedAt,
				Age:       humanDelta(rows[0].CreatedAt, time.Now().UTC()),
			}
		}
	}
	return summary, nil
}

func (s *Store) countByStatusCodes(codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	var total int64
	err := s.db.Table("issues").
		Joins("JOIN issue_statuses ON issue_statuses.id = issues.status_id").
		Where("issue_statuses.code IN ?", codes).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count issues by status codes: %w", err)
	}
	return total, nil
}
