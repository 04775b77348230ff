package model

// Dimension is one fixed quality axis scored 1-5
type Dimension string

const (
	DimensionVisual       Dimension = "visual"       // clarity of the presented result
	DimensionProfessional Dimension = "professional" // professional accuracy of the content
	DimensionData         Dimension = "data"         // sufficiency of the underlying data
	DimensionGuidance     Dimension = "guidance"     // practical guidance value
)

// Dimensions returns the canonical ordered dimension set.
// Completion checks rely on its length.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionVisual,
		DimensionProfessional,
		DimensionData,
		DimensionGuidance,
	}
}

// DimensionCount is the size of the fixed dimension set
const DimensionCount = 4

// IsValid reports whether d is one of the canonical dimensions
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionVisual, DimensionProfessional, DimensionData, DimensionGuidance:
		return true
	}
	return false
}

// Score value bounds; 0 means "not yet rated"
const (
	MinScoreValue = 1
	MaxScoreValue = 5
)

// Score is one dimension's rating for one answer
type Score struct {
	Dimension Dimension `json:"dimension" bson:"dimension"`
	Value     int       `json:"value" bson:"value"` // 1-5
}
