package catalog

// Site is a physical location assets belong to. Immutable reference data.
type Site struct {
	ID        string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Shorthand string `gorm:"column:shorthand;not null;uniqueIndex" json:"shorthand"`
	Fullname  string `gorm:"column:fullname;not null" json:"fullname"`
}

func (Site) TableName() string { return "sites" }

// Category is the top level of the asset classification hierarchy.
type Category struct {
	ID    string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Name  string `gorm:"column:name;not null" json:"name"`
	Label string `gorm:"column:label;not null" json:"label"`
}

func (Category) TableName() string { return "asset_categories" }

// Make is a manufacturer within a category.
type Make struct {
	ID         string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	CategoryID string `gorm:"column:category_id;index;not null" json:"category_id"`
	Name       string `gorm:"column:name;not null" json:"name"`
	Label      string `gorm:"column:label;not null" json:"label"`
}

func (Make) TableName() string { return "asset_makes" }

// Model is a product line within a make.
type Model struct {
	ID     string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	MakeID string `gorm:"column:make_id;index;not null" json:"make_id"`
	Name   string `gorm:"column:name;not null" json:"name"`
	Label  string `gorm:"column:label;not null" json:"label"`
}

func (Model) TableName() string { return "asset_models" }

// Variant is a concrete configuration of a model; assets reference variants.
type Variant struct {
	ID      string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	ModelID string `gorm:"column:model_id;index;not null" json:"model_id"`
	Name    string `gorm:"column:name;not null" json:"name"`
	Label   string `gorm:"column:label;not null" json:"label"`
}

func (Variant) TableName() string { return "asset_variants" }

// AssetStatus is an enumerated asset state (lookup row, not a compile-time enum).
type AssetStatus struct {
	ID           string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Code         string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Label        string `gorm:"column:label;not null" json:"label"`
	DisplayOrder int    `gorm:"column:display_order;not null;default:0" json:"display_order"`
}

func (AssetStatus) TableName() string { return "asset_statuses" }

// IssueStatus is an enumerated issue state. Codes are the stable identity;
// ids are surrogate keys.
type IssueStatus struct {
	ID           string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Code         string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Label        string `gorm:"column:label;not null" json:"label"`
	DisplayOrder int    `gorm:"column:display_order;not null;default:0" json:"display_order"`
}

func (IssueStatus) TableName() string { return "issue_statuses" }

// ActionType is an enumerated kind of issue action (note, repair, ...).
type ActionType struct {
	ID           string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Code         string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Label        string `gorm:"column:label;not null" json:"label"`
	DisplayOrder int    `gorm:"column:display_order;not null;default:0" json:"display_order"`
}

func (ActionType) TableName() string { return "action_types" }

// AcceptedContentType is one row of the mutable attachment allowlist.
type AcceptedContentType struct {
	ID          string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	ContentType string `gorm:"column:content_type;not null;uniqueIndex" json:"content_type"`
}

func (AcceptedContentType) TableName() string { return "accepted_attachment_content_types" }

// Canonical lookup codes seeded by SeedDefaults. New codes may be added at
// runtime through the admin endpoints; nothing outside the issue transition
// path depends on codes beyond these.
const (
	IssueStatusOpen       = "OPEN"
	IssueStatusInProgress = "IN_PROGRESS"
	IssueStatusBlocked    = "BLOCKED"
	IssueStatusClosed     = "CLOSED"

	ActionTypeCreated = "CREATED"
	ActionTypeNote    = "NOTE"
	ActionTypeInspect = "INSPECT"
	ActionTypeRepair  = "REPAIR"
	ActionTypeClosed  = "CLOSED"
)
