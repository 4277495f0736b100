package models

// Classifier labels.
const (
	LabelWithMask    = "with_mask"
	LabelWithoutMask = "without_mask"
)

// Category is one classifier output with its probability.
type Category struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
