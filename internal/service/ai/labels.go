package ai

import (
	"fmt"
	"math"
	"sort"

	"maskwatch/internal/models"
)

// DefaultLabels is the output order of the face mask model.
var DefaultLabels = []string{models.LabelWithMask, models.LabelWithoutMask}

// RankCategories pairs raw model outputs with labels and sorts them by score,
// highest first. Outputs that do not already form a probability distribution
// are passed through softmax.
func RankCategories(scores []float64, labels []string) ([]models.Category, error) {
	if len(scores) != len(labels) {
		return nil, fmt.Errorf("model produced %d scores for %d labels", len(scores), len(labels))
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("model produced no scores")
	}

	probs := scores
	if !isDistribution(scores) {
		probs = softmax(scores)
	}

	categories := make([]models.Category, len(labels))
	for i, label := range labels {
		categories[i] = models.Category{Label: label, Score: probs[i]}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Score > categories[j].Score
	})
	return categories, nil
}

func isDistribution(scores []float64) bool {
	sum := 0.0
	for _, s := range scores {
		if s < 0 || s > 1 {
			return false
		}
		sum += s
	}
	return math.Abs(sum-1) < 1e-3
}

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		maxLogit = math.Max(maxLogit, v)
	}

	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
