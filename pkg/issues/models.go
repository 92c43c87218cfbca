package issues

import (
	"time"
)

// Issue is the GORM model for a maintenance ticket raised against an asset.
// status_id is only ever written through the AddAction transition path so
// the status history stays consistent with the current value.
type Issue struct {
	ID          string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	AssetID     string     `gorm:"column:asset_id;index;not null" json:"asset_id"`
	StatusID    string     `gorm:"column:status_id;index;not null" json:"status_id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;not null" json:"description"`
	ReportedBy  *string    `gorm:"column:reported_by" json:"reported_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;index;not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
	ClosedAt    *time.Time `gorm:"column:closed_at" json:"closed_at"`
}

// TableName returns the GORM table name.
func (Issue) TableName() string { return "issues" }

// Action is one append-only log entry on an issue. Ordering key is
// created_at with ties broken by insertion order.
type Action struct {
	ID           string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	IssueID      string    `gorm:"column:issue_id;index;not null" json:"issue_id"`
	ActionTypeID string    `gorm:"column:action_type_id;not null" json:"action_type_id"`
	Body         string    `gorm:"column:body;not null" json:"body"`
	CreatedAt    time.Time `gorm:"column:created_at;index;not null" json:"created_at"`
	CreatedBy    string    `gorm:"column:created_by;not null" json:"created_by"`
}

// TableName returns the GORM table name.
func (Action) TableName() string { return "issue_actions" }

// StatusHistory is the append-only audit trail of status transitions.
// from_status_id is null only for the creation entry.
type StatusHistory struct {
	ID           string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	IssueID      string    `gorm:"column:issue_id;index;not null" json:"issue_id"`
	FromStatusID *string   `gorm:"column:from_status_id" json:"from_status_id"`
	ToStatusID   string    `gorm:"column:to_status_id;not null" json:"to_status_id"`
	ChangedAt    time.Time `gorm:"column:changed_at;not null" json:"changed_at"`
	ChangedBy    string    `gorm:"column:changed_by;not null" json:"changed_by"`
}

// TableName returns the GORM table name.
func (StatusHistory) TableName() string { return "issue_status_history" }

// defaultActor stands in for an absent reporter or operator name.
const defaultActor = "-"
