package domain

import "time"

// Case is a unit of analysis owning a data matrix, its annotations and projections.
type Case struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	ProjectID   string     `gorm:"type:text;not null;index" json:"project_id"`
	Name        string     `gorm:"type:text;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Type        CaseType   `gorm:"type:text;not null" json:"type"`
	ImageID     string     `gorm:"type:text" json:"image_id"`
	CreationBy  string     `gorm:"type:text" json:"creation_by,omitempty"`
	CreationAt  *time.Time `gorm:"column:creation_date" json:"creation_date,omitempty"`
	UpdatedBy   string     `gorm:"type:text" json:"updated_by,omitempty"`
	UpdatedAt   *time.Time `gorm:"column:updated_date;autoUpdateTime:false" json:"updated_date,omitempty"`
}

// TableName returns the database table name for Case.
func (Case) TableName() string {
	return "cases"
}
