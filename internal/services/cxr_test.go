package services

import (
	"context"
	"testing"

	"github.com/lungsight/apiserver/internal/logger"
	"github.com/lungsight/apiserver/internal/record"
	"github.com/lungsight/apiserver/internal/vision"
	"github.com/lungsight/apiserver/types"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	loaded bool
	result types.ClassificationResult
}

func (m *stubModel) Load() error {
	m.loaded = true
	return nil
}

func (m *stubModel) Classify(imageRef string, threshold float64) (types.ClassificationResult, error) {
	if !m.loaded {
		return types.ClassificationResult{}, vision.ErrModelNotLoaded
	}
	return m.result, nil
}

type stubRecorder struct {
	rows []string
}

func (r *stubRecorder) Record(results map[string]types.ConditionScore, userUUID string) error {
	if userUUID == "" {
		return record.ErrNotAuthenticated
	}
	r.rows = append(r.rows, userUUID)
	return nil
}

func TestCXRServiceLoadAndClassify(t *testing.T) {
	model := &stubModel{
		result: types.ClassificationResult{
			AnalyzedFile: "img1.jpg",
			Results: map[string]types.ConditionScore{
				"Pneumonia": {Probability: 0.9, Label: "Y"},
			},
		},
	}
	svc := NewCXRService(model, &stubRecorder{}, nil, "", logger.NewNop())

	_, err := svc.Classify("image 1", 0)
	require.ErrorIs(t, err, vision.ErrModelNotLoaded)

	require.NoError(t, svc.Load())

	result, err := svc.Classify("image 1", 0)
	require.NoError(t, err)
	require.Equal(t, "img1.jpg", result.AnalyzedFile)
}

func TestCXRServiceRecord(t *testing.T) {
	recorder := &stubRecorder{}
	svc := NewCXRService(&stubModel{}, recorder, nil, "", logger.NewNop())
	ctx := context.Background()

	results := map[string]types.ConditionScore{
		"Pneumonia": {Probability: 0.9, Label: "Y"},
	}

	err := svc.Record(ctx, results, "")
	require.ErrorIs(t, err, record.ErrNotAuthenticated)
	require.Empty(t, recorder.rows)

	require.NoError(t, svc.Record(ctx, results, "uuid-alice"))
	require.Equal(t, []string{"uuid-alice"}, recorder.rows)
}
