package domain

import "time"

// Resource references one stored object belonging to a case.
// Several resources of the same kind are concatenated into one logical table.
type Resource struct {
	ID          string       `gorm:"type:text;primaryKey" json:"id"`
	CaseID      string       `gorm:"type:text;not null;index:idx_resources_case_kind;index:idx_resources_location" json:"case_id"`
	Bucket      string       `gorm:"type:text;not null;index:idx_resources_location" json:"bucket"`
	File        string       `gorm:"type:text;not null;index:idx_resources_location" json:"file"`
	Kind        ResourceKind `gorm:"column:type;type:text;not null;index:idx_resources_case_kind" json:"type"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CreationBy  string       `gorm:"type:text" json:"creation_by,omitempty"`
	CreationAt  *time.Time   `gorm:"column:creation_date" json:"creation_date,omitempty"`
	UpdatedBy   string       `gorm:"type:text" json:"updated_by,omitempty"`
	UpdatedAt   *time.Time   `gorm:"column:updated_date;autoUpdateTime:false" json:"updated_date,omitempty"`
}

// TableName returns the database table name for Resource.
func (Resource) TableName() string {
	return "resources"
}
