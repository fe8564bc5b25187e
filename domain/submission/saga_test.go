package submission

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/predict-client/domain/inference"
)

func TestDualSaga_Success(t *testing.T) {
	b := &fakeBackend{pred: json.RawMessage(`0.7`), heatmap: []byte{1, 2}}
	s := NewDualSaga(b, fileA, discardLogger)
	var steps []SagaStep
	s.OnStep(func(prev, next SagaStep) { steps = append(steps, next) })

	rec, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StepDone, s.Step())
	assert.Equal(t, []SagaStep{StepHeatmapPending, StepDone}, steps)
	assert.Equal(t, "fileA.txt", rec.Filename)
	assert.JSONEq(t, `0.7`, string(rec.Prediction))
	assert.Equal(t, []byte{1, 2}, rec.Heatmap)
}

func TestDualSaga_PredictFailureSkipsHeatmap(t *testing.T) {
	want := &inference.RequestError{Status: 500, Detail: "model unavailable"}
	b := &fakeBackend{err: want}
	s := NewDualSaga(b, fileA, nil)

	_, err := s.Run(context.Background())

	assert.Same(t, want, err)
	assert.Equal(t, StepAborted, s.Step())
	assert.Equal(t, []string{"predict:fileA.txt"}, b.Calls())
}

func TestDualSaga_HeatmapFailureAborts(t *testing.T) {
	want := &inference.TransportError{Op: "POST /generate-heatmap", Err: errors.New("connection reset")}
	b := &fakeBackend{pred: json.RawMessage(`1`), heatErr: want}
	s := NewDualSaga(b, fileA, nil)
	var steps []SagaStep
	s.OnStep(func(prev, next SagaStep) { steps = append(steps, next) })

	rec, err := s.Run(context.Background())

	assert.Same(t, want, err)
	assert.Empty(t, rec.Filename)
	assert.Equal(t, []SagaStep{StepHeatmapPending, StepAborted}, steps)
	assert.Equal(t, []string{"predict:fileA.txt", "heatmap:fileA.txt"}, b.Calls())
}

func TestSagaStep_String(t *testing.T) {
	assert.Equal(t, "predict-pending", StepPredictPending.String())
	assert.Equal(t, "aborted", StepAborted.String())
	assert.Equal(t, "unknown", SagaStep(42).String())
}
