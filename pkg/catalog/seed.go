package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedDefaults inserts the canonical lookup rows the issue lifecycle depends
// on: issue statuses, action types, and the default attachment content-type
// allowlist. Existing codes are left untouched, so reseeding is safe.
func SeedDefaults(db *gorm.DB) error {
	statuses := []IssueStatus{
		{Code: IssueStatusOpen, Label: "Open", DisplayOrder: 10},
		{Code: IssueStatusInProgress, Label: "In progress", DisplayOrder: 20},
		{Code: IssueStatusBlocked, Label: "Blocked", DisplayOrder: 30},
		{Code: IssueStatusClosed, Label: "Closed", DisplayOrder: 40},
	}
	for _, st := range statuses {
		var count int64
		if err := db.Model(&IssueStatus{}).Where("code = ?", st.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("seed issue statuses: %w", err)
		}
		if count > 0 {
			continue
		}
		st.ID = uuid.New().String()
		if err := db.Create(&st).Error; err != nil {
			return fmt.Errorf("seed issue status %s: %w", st.Code, err)
		}
	}

	types := []ActionType{
		{Code: ActionTypeCreated, Label: "Created", DisplayOrder: 10},
		{Code: ActionTypeNote, Label: "Note", DisplayOrder: 20},
		{Code: ActionTypeInspect, Label: "Inspection", DisplayOrder: 30},
		{Code: ActionTypeRepair, Label: "Repair", DisplayOrder: 40},
		{Code: ActionTypeClosed, Label: "Closed", DisplayOrder: 50},
	}
	for _, at := range types {
		var count int64
		if err := db.Model(&ActionType{}).Where("code = ?", at.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("seed action types: %w", err)
		}
		if count > 0 {
			continue
		}
		at.ID = uuid.New().String()
		if err := db.Create(&at).Error; err != nil {
			return fmt.Errorf("seed action type %s: %w", at.Code, err)
		}
	}

	contentTypes := []string{"image/jpeg", "image/png", "image/webp"}
	for _, ct := range contentTypes {
		var count int64
		if err := db.Model(&AcceptedContentType{}).Where("content_type = ?", ct).Count(&count).Error; err != nil {
			return fmt.Errorf("seed accepted content types: %w", err)
		}
		if count > 0 {
			continue
		}
		row := AcceptedContentType{ID: uuid.New().String(), ContentType: ct}
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("seed accepted content type %s: %w", ct, err)
		}
	}

	return nil
}
