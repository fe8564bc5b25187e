package submission

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/soocke/predict-client/domain/inference"
)

// Phase enumerates the submission lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInFlight
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in-flight"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the tagged submission state. Only the payload matching Phase is set:
// Snapshot for InFlight, Results for Succeeded, Message for Failed.
type State struct {
	Phase      Phase
	ID         string
	Generation uint64
	Snapshot   []inference.Upload
	Results    []inference.ResultRecord
	Message    string
}

// clone deep-copies the payload so listeners never alias orchestrator storage.
func (s State) clone() State {
	out := s
	if s.Snapshot != nil {
		out.Snapshot = append([]inference.Upload(nil), s.Snapshot...)
	}
	out.Results = inference.CloneResults(s.Results)
	return out
}

// Request is what the UI hands over on submit.
type Request struct {
	Mode    inference.Mode
	Files   []inference.Upload
	Feature *float64 // feature mode only
}

// Backend is the subset of the inference client the orchestrator drives.
type Backend interface {
	Predict(ctx context.Context, up inference.Upload) (json.RawMessage, error)
	ProcessMultiple(ctx context.Context, ups []inference.Upload) ([]inference.ResultRecord, error)
	GenerateHeatmap(ctx context.Context, up inference.Upload) ([]byte, error)
	PredictFeature(ctx context.Context, feature float64) (json.RawMessage, error)
}

// StateListener is called on the UI thread after each state change.
type StateListener func(prev, next State)

// LoadingListener is called on the UI thread when the loading flag flips.
type LoadingListener func(loading bool)

// ErrBusy is returned when a submission is already outstanding.
var ErrBusy = errors.New("a submission is already in flight")

// Validation messages.
const (
	MsgNoFile    = "please select a .txt file"
	MsgNoFeature = "please enter a numeric feature value"
)
