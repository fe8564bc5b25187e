package submission

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/soocke/predict-client/domain/inference"
)

// SagaStep enumerates the prediction-then-heatmap workflow.
type SagaStep int

const (
	StepPredictPending SagaStep = iota
	StepHeatmapPending
	StepDone
	StepAborted
)

func (s SagaStep) String() string {
	switch s {
	case StepPredictPending:
		return "predict-pending"
	case StepHeatmapPending:
		return "heatmap-pending"
	case StepDone:
		return "done"
	case StepAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// DualSaga runs /predict and then /generate-heatmap against the same file.
// The heatmap call is attempted only after the prediction succeeds; the first
// failure aborts the sequence and is returned unchanged.
type DualSaga struct {
	backend    Backend
	upload     inference.Upload
	logger     *slog.Logger
	step       SagaStep
	prediction json.RawMessage
	heatmap    []byte
	onStep     func(prev, next SagaStep)
}

// NewDualSaga prepares a saga for up.
func NewDualSaga(backend Backend, up inference.Upload, logger *slog.Logger) *DualSaga {
	return &DualSaga{backend: backend, upload: up, logger: logger, step: StepPredictPending}
}

// OnStep registers a callback for step transitions.
func (s *DualSaga) OnStep(fn func(prev, next SagaStep)) { s.onStep = fn }

// Step returns the current step.
func (s *DualSaga) Step() SagaStep { return s.step }

// Run drives the saga to StepDone or StepAborted.
func (s *DualSaga) Run(ctx context.Context) (inference.ResultRecord, error) {
	pred, err := s.backend.Predict(ctx, s.upload)
	if err != nil {
		s.transition(StepAborted)
		return inference.ResultRecord{}, err
	}
	s.prediction = pred
	s.transition(StepHeatmapPending)

	img, err := s.backend.GenerateHeatmap(ctx, s.upload)
	if err != nil {
		s.transition(StepAborted)
		return inference.ResultRecord{}, err
	}
	s.heatmap = img
	s.transition(StepDone)
	return inference.ResultRecord{Filename: s.upload.Name, Prediction: s.prediction, Heatmap: s.heatmap}, nil
}

func (s *DualSaga) transition(next SagaStep) {
	prev := s.step
	if prev == next {
		return
	}
	s.step = next
	if s.logger != nil {
		s.logger.Debug("dual saga transition", "file", s.upload.Name, "from", prev.String(), "to", next.String())
	}
	if s.onStep != nil {
		s.onStep(prev, next)
	}
}
