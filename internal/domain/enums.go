package domain

import "fmt"

// Space selects which axis of the data matrix is embedded.
// SpacePrimal embeds samples (rows); SpaceDual embeds attributes (columns).
type Space string

const (
	SpacePrimal Space = "primal"
	SpaceDual   Space = "dual"
)

// ParseSpace converts a raw string into a Space.
// Parameters:
//   - s: raw space name.
// Returns:
//   - Space: parsed space.
//   - error: non-nil if s is not a known space.
func ParseSpace(s string) (Space, error) {
	switch Space(s) {
	case SpacePrimal, SpaceDual:
		return Space(s), nil
	default:
		return "", fmt.Errorf("unknown space %q", s)
	}
}

// SubjectGroup returns the annotation group describing the entities embedded in this space.
func (s Space) SubjectGroup() Group {
	if s == SpaceDual {
		return GroupAttribute
	}
	return GroupSample
}

// OppositeGroup returns the annotation group of the feature axis for this space.
func (s Space) OppositeGroup() Group {
	if s == SpaceDual {
		return GroupSample
	}
	return GroupAttribute
}

// OutputKind returns the resource kind used to publish projections for this space.
func (s Space) OutputKind() ResourceKind {
	if s == SpaceDual {
		return ResourceDualProjection
	}
	return ResourcePrimalProjection
}

// PrecalculatedKind returns the resource kind holding precomputed embeddings for this space.
func (s Space) PrecalculatedKind() ResourceKind {
	if s == SpaceDual {
		return ResourceAttributePrecalculated
	}
	return ResourceSamplePrecalculated
}

// Label returns the human readable suffix used in resource descriptions.
func (s Space) Label() string {
	if s == SpaceDual {
		return "Dual Projection"
	}
	return "Primal Projection"
}

// Group classifies an annotation.
type Group string

const (
	GroupSample     Group = "sample"
	GroupAttribute  Group = "attribute"
	GroupProjection Group = "projection"
	GroupEncoding   Group = "encoding"
)

// ParseGroup converts a raw string into a Group.
func ParseGroup(s string) (Group, error) {
	switch Group(s) {
	case GroupSample, GroupAttribute, GroupProjection, GroupEncoding:
		return Group(s), nil
	default:
		return "", fmt.Errorf("unknown annotation group %q", s)
	}
}

// Encoding tells whether an encoding annotation was learned with labels.
type Encoding string

const (
	EncodingSupervised   Encoding = "supervised"
	EncodingUnsupervised Encoding = "unsupervised"
)

// AnnotationType is the declared value type of an annotation.
type AnnotationType string

const (
	AnnotationTypeString      AnnotationType = "string"
	AnnotationTypeLink        AnnotationType = "link"
	AnnotationTypeNumeric     AnnotationType = "numeric"
	AnnotationTypeBoolean     AnnotationType = "boolean"
	AnnotationTypeDatetime    AnnotationType = "datetime"
	AnnotationTypeEnumeration AnnotationType = "enumeration"
)

// ProjectionShape is the layout hint a viewer uses to draw a projection.
type ProjectionShape string

const (
	ProjectionCircle     ProjectionShape = "circle"
	ProjectionHorizontal ProjectionShape = "horizontal"
	ProjectionVertical   ProjectionShape = "vertical"
)

// CaseType is the visibility of a case.
type CaseType string

const (
	CaseTypePublic  CaseType = "public"
	CaseTypePrivate CaseType = "private"
)

// ResourceKind classifies a stored object attached to a case.
type ResourceKind string

const (
	ResourceDataMatrix             ResourceKind = "datamatrix"
	ResourceSampleAnnotation       ResourceKind = "sample_annotation"
	ResourceAttributeAnnotation    ResourceKind = "attribute_annotation"
	ResourceSamplePrecalculated    ResourceKind = "sample_precalculated_annotation"
	ResourceAttributePrecalculated ResourceKind = "attribute_precalculated_annotation"
	ResourcePrimalProjection       ResourceKind = "primal_projection"
	ResourceDualProjection         ResourceKind = "dual_projection"
)

// Axis names shared by every table loaded for a case.
const (
	AxisSample     = "sample_id"
	AxisAttribute  = "attribute_id"
	AxisAnnotation = "annotation_id"
)

// Axes returns the (row, column) axis names for tables of this kind.
// Output kinds have no fixed axes and return empty names.
func (k ResourceKind) Axes() (row, column string) {
	switch k {
	case ResourceDataMatrix:
		return AxisSample, AxisAttribute
	case ResourceSampleAnnotation, ResourceSamplePrecalculated:
		return AxisSample, AxisAnnotation
	case ResourceAttributeAnnotation, ResourceAttributePrecalculated:
		return AxisAttribute, AxisAnnotation
	default:
		return "", ""
	}
}
