package issues

import (
	"time"
)

// StatusRef is the denormalized status projection embedded in issue views.
type StatusRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// TypeRef is the denormalized action-type projection.
type TypeRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// AssetRef is the denormalized asset projection embedded in issue views.
type AssetRef struct {
	ID       string `json:"id"`
	AssetTag string `json:"asset_tag"`
	SiteID   string `json:"site_id"`
}

// ListItem is one row of an issue listing, denormalized with status, asset,
// and the most recent action ("last activity") projection.
type ListItem struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Status         StatusRef  `json:"status"`
	Asset          AssetRef   `json:"asset"`
	ReportedBy     *string    `json:"reported_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	LastActionAt   *time.Time `json:"last_action_at"`
	LastActionType *string    `json:"last_action_type"`
}

// ListResult is one page of issues plus the total under the same filter.
type ListResult struct {
	Items    []ListItem `json:"items"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Total    int64      `json:"total"`
}

// ActionView is one timeline entry in the issue detail.
type ActionView struct {
	ID        string    `json:"id"`
	Type      TypeRef   `json:"type"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// HistoryView is one status-transition entry in the issue detail.
// FromStatus is nil only for the creation entry.
type HistoryView struct {
	ID         string     `json:"id"`
	FromStatus *StatusRef `json:"from_status"`
	ToStatus   StatusRef  `json:"to_status"`
	ChangedAt  time.Time  `json:"changed_at"`
	ChangedBy  string     `json:"changed_by"`
}

// Detail is the full denormalized issue view: the listing projection plus
// description, the complete action timeline, and the status history, both
// newest-first.
type Detail struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Status              StatusRef       `json:"status"`
	Asset               AssetRef        `json:"asset"`
	ReportedBy          *string         `json:"reported_by"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	ClosedAt            *time.Time      `json:"closed_at"`
	LastActionAt        *time.Time      `json:"last_action_at"`
	LastActionType      *string         `json:"last_action_type"`
	LastActionTypeLabel *string         `json:"last_action_type_label"`
	Actions             []ActionView    `json:"actions"`
	StatusHistory       []HistoryView   `json:"status_history"`
}

// issueRow is the flat scan target for the denormalized issue queries.
type issueRow struct {
	ID                  string
	Title               string
	Description         string
	ReportedBy          *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ClosedAt            *time.Time
	StatusID            string
	StatusCode          string
	StatusLabel         string
	AssetID             string
	AssetTag            string
	SiteID              string
	LastActionAt        *time.Time
	LastActionTypeCode  *string
	LastActionTypeLabel *string
}

func (r *issueRow) toListItem() ListItem {
	return ListItem{
		ID:    r.ID,
		Title: r.Title,
		Status: StatusRef{
			ID:    r.StatusID,
			Code:  r.StatusCode,
			Label: r.StatusLabel,
		},
		Asset: AssetRef{
			ID:       r.AssetID,
			AssetTag: r.AssetTag,
			SiteID:   r.SiteID,
		},
		ReportedBy:     r.ReportedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		ClosedAt:       r.ClosedAt,
		LastActionAt:   r.LastActionAt,
		LastActionType: r.LastActionTypeCode,
	}
}
