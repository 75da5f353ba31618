package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Annotation is a declared metadata field or projection request attached to a case.
// Annotations are authored elsewhere; the projection job only reads them.
type Annotation struct {
	ID                         string          `gorm:"type:text;primaryKey" json:"id"`
	CaseID                     string          `gorm:"type:text;not null;index:idx_annotations_case" json:"case_id"`
	Group                      Group           `gorm:"column:annotation_group;type:text;not null;index:idx_annotations_case" json:"group"`
	Space                      Space           `gorm:"type:text" json:"space,omitempty"`
	Precalculated              bool            `gorm:"not null;default:false" json:"precalculated"`
	ProjectedByAnnotation      string          `gorm:"type:text" json:"projected_by_annotation,omitempty"`
	ProjectedByAnnotationValue string          `gorm:"type:text" json:"projected_by_annotation_value,omitempty"`
	Encoding                   Encoding        `gorm:"type:text" json:"encoding,omitempty"`
	EncodingName               string          `gorm:"type:text" json:"encoding_name,omitempty"`
	Type                       AnnotationType  `gorm:"type:text;not null" json:"type"`
	Name                       string          `gorm:"type:text;not null" json:"name"`
	Label                      datatypes.JSON  `gorm:"type:text" json:"label"`
	Description                string          `gorm:"type:text" json:"description,omitempty"`
	Values                     datatypes.JSON  `gorm:"column:values;type:text" json:"values,omitempty"`
	Projection                 ProjectionShape `gorm:"type:text" json:"projection,omitempty"`
	Colorized                  bool            `gorm:"not null;default:false" json:"colorized"`
	Required                   bool            `gorm:"not null;default:false;index:idx_annotations_case" json:"required"`
	CreationBy                 string          `gorm:"type:text" json:"creation_by,omitempty"`
	CreationAt                 *time.Time      `gorm:"column:creation_date" json:"creation_date,omitempty"`
	UpdatedBy                  string          `gorm:"type:text" json:"updated_by,omitempty"`
	UpdatedAt                  *time.Time      `gorm:"column:updated_date;autoUpdateTime:false" json:"updated_date,omitempty"`
}

// TableName returns the database table name for Annotation.
func (Annotation) TableName() string {
	return "annotations"
}

// IsProjection reports whether the annotation declares a projection.
func (a *Annotation) IsProjection() bool {
	return a.Group == GroupProjection
}

// HasFilter reports whether the projection is restricted to a subset of features.
func (a *Annotation) HasFilter() bool {
	return a.ProjectedByAnnotation != ""
}

// XColumn returns the name of the first embedding column of this projection.
func (a *Annotation) XColumn() string {
	return "x_" + a.Name
}

// YColumn returns the name of the second embedding column of this projection.
func (a *Annotation) YColumn() string {
	return "y_" + a.Name
}

// Labels decodes the label dictionary (locale or key to display text).
// Returns:
//   - map[string]string: decoded labels, empty if none are stored.
//   - error: non-nil if the stored JSON is not a string dictionary.
func (a *Annotation) Labels() (map[string]string, error) {
	labels := map[string]string{}
	if len(a.Label) == 0 {
		return labels, nil
	}
	if err := json.Unmarshal(a.Label, &labels); err != nil {
		return nil, fmt.Errorf("annotation %q: invalid label: %w", a.Name, err)
	}
	return labels, nil
}

// ValueDomain decodes the values dictionary and checks every entry against the declared Type.
// Returns:
//   - map[string]Value: decoded tagged values.
//   - error: non-nil if an entry does not match the annotation type.
func (a *Annotation) ValueDomain() (map[string]Value, error) {
	out := map[string]Value{}
	if len(a.Values) == 0 {
		return out, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(a.Values, &raw); err != nil {
		return nil, fmt.Errorf("annotation %q: invalid values: %w", a.Name, err)
	}

	kind := KindForType(a.Type)
	for key, msg := range raw {
		v, err := DecodeValue(kind, msg)
		if err != nil {
			return nil, fmt.Errorf("annotation %q: value %q: %w", a.Name, key, err)
		}
		out[key] = v
	}
	return out, nil
}
