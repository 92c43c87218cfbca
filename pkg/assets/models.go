package assets

import (
	"time"
)

// Asset is the GORM model for a tracked physical asset. An asset is never
// physically deleted; retirement stamps retired_at and retire_reason.
type Asset struct {
	ID           string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	VariantID    string     `gorm:"column:variant_id;index;not null" json:"variant_id"`
	CategoryID   string     `gorm:"column:category_id;index;not null" json:"category_id"`
	SiteID       string     `gorm:"column:site_id;index;not null" json:"site_id"`
	StatusID     string     `gorm:"column:status_id;index;not null" json:"status_id"`
	SerialNum    *string    `gorm:"column:serial_num" json:"serial_num"`
	AssetTag     string     `gorm:"column:asset_tag;index;not null" json:"asset_tag"`
	AcquiredAt   *time.Time `gorm:"column:acquired_at" json:"acquired_at"`
	RetiredAt    *time.Time `gorm:"column:retired_at;index" json:"retired_at"`
	RetireReason *string    `gorm:"column:retire_reason" json:"retire_reason"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName returns the GORM table name.
func (Asset) TableName() string { return "assets" }
