package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskwatch/internal/models"
)

func TestRankCategories_Probabilities(t *testing.T) {
	got, err := RankCategories([]float64{0.2, 0.8}, DefaultLabels)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, models.LabelWithoutMask, got[0].Label)
	assert.InDelta(t, 0.8, got[0].Score, 1e-9)
	assert.Equal(t, models.LabelWithMask, got[1].Label)
}

func TestRankCategories_LogitsUseSoftmax(t *testing.T) {
	got, err := RankCategories([]float64{3.0, -1.0}, DefaultLabels)
	require.NoError(t, err)

	assert.Equal(t, models.LabelWithMask, got[0].Label)
	assert.InDelta(t, 1.0, got[0].Score+got[1].Score, 1e-9)
	assert.InDelta(t, 0.982, got[0].Score, 1e-3)
}

func TestRankCategories_Mismatch(t *testing.T) {
	_, err := RankCategories([]float64{1}, DefaultLabels)
	assert.Error(t, err)

	_, err = RankCategories(nil, nil)
	assert.Error(t, err)
}

func TestClassifierService_MissingModel(t *testing.T) {
	s := &ClassifierService{modelPath: "does/not/exist.onnx"}
	assert.Error(t, s.initializeNet())
	assert.False(t, s.Ready())

	_, err := s.Classify(nil)
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestClassifierService_CloseWithoutModel(t *testing.T) {
	s := &ClassifierService{modelPath: "does/not/exist.onnx"}
	require.Error(t, s.initializeNet())

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.False(t, s.Ready())

	_, err := s.Classify(nil)
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}
