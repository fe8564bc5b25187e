package submission

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/soocke/predict-client/domain/inference"
	"github.com/soocke/predict-client/metrics"
)

// Options tunes an Orchestrator. Zero values select defaults.
type Options struct {
	Timeout time.Duration // 0 means no client-side limit
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
	NewID   func() string
}

// Orchestrator owns the submission lifecycle. Every method except the request
// goroutine runs on the UI thread; results come back through Drain.
type Orchestrator struct {
	backend Backend
	logger  *slog.Logger
	clock   clockwork.Clock
	metrics *metrics.Metrics
	timeout time.Duration
	newID   func() string

	state      State
	generation uint64
	pending    *pending // non-nil while a request is outstanding
	settled    chan settlement

	listeners        []StateListener
	loadingListeners []LoadingListener
}

type pending struct {
	id         string
	generation uint64
	mode       inference.Mode
	started    time.Time
}

type settlement struct {
	id         string
	generation uint64
	results    []inference.ResultRecord
	err        error
}

// New constructs an idle orchestrator.
func New(backend Backend, logger *slog.Logger, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Orchestrator{
		backend: backend,
		logger:  logger,
		clock:   opts.Clock,
		metrics: opts.Metrics,
		timeout: opts.Timeout,
		newID:   opts.NewID,
		settled: make(chan settlement, 1),
	}
}

// SetTimeout changes the per-submission limit for later submissions.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	o.timeout = d
}

// Current returns a copy of the active state.
func (o *Orchestrator) Current() State { return o.state.clone() }

// Loading reports whether a request is outstanding.
func (o *Orchestrator) Loading() bool { return o.pending != nil }

// Generation returns the current submission generation.
func (o *Orchestrator) Generation() uint64 { return o.generation }

// AddListener registers a state listener.
func (o *Orchestrator) AddListener(l StateListener) { o.listeners = append(o.listeners, l) }

// AddLoadingListener registers a loading-flag listener.
func (o *Orchestrator) AddLoadingListener(l LoadingListener) {
	o.loadingListeners = append(o.loadingListeners, l)
}

// Submit validates req, snapshots its files and starts exactly one request.
// It returns ErrBusy while another submission is outstanding and a
// *inference.ValidationError when there is nothing to send.
func (o *Orchestrator) Submit(ctx context.Context, req Request) error {
	if req.Mode == "" {
		req.Mode = inference.ModeMulti
	}
	if o.pending != nil {
		o.metrics.Outcome(req.Mode.String(), metrics.OutcomeRejectedBusy)
		if o.logger != nil {
			o.logger.Info("submit ignored, request outstanding", "id", o.pending.id)
		}
		return ErrBusy
	}
	if err := validate(req); err != nil {
		o.metrics.Outcome(req.Mode.String(), metrics.OutcomeRejectedEmpty)
		o.transition(State{Phase: PhaseFailed, Generation: o.generation, Message: inference.Message(err)})
		return err
	}

	snapshot := append([]inference.Upload(nil), req.Files...)
	if req.Mode != inference.ModeMulti && len(snapshot) > 1 {
		snapshot = snapshot[:1]
	}
	req.Files = snapshot
	if req.Feature != nil {
		v := *req.Feature
		req.Feature = &v
	}

	o.generation++
	p := &pending{id: o.newID(), generation: o.generation, mode: req.Mode, started: o.clock.Now()}
	o.pending = p
	o.setLoading(true)
	o.transition(State{Phase: PhaseInFlight, ID: p.id, Generation: p.generation, Snapshot: snapshot})
	if o.logger != nil {
		o.logger.Info("submission started", "id", p.id, "generation", p.generation, "mode", p.mode.String(), "files", len(snapshot))
	}

	go o.run(ctx, p, req, o.timeout)
	return nil
}

// Drain applies a finished request, if any. Call it from the UI tick.
func (o *Orchestrator) Drain() bool {
	select {
	case s := <-o.settled:
		o.apply(s)
		return true
	default:
		return false
	}
}

// Reset hides a settled result after the upload set was cleared. An outstanding
// request keeps running, but moving to a new generation discards its result.
func (o *Orchestrator) Reset() {
	switch o.state.Phase {
	case PhaseIdle:
		return
	case PhaseInFlight:
		o.generation++
		if o.logger != nil {
			o.logger.Info("submission superseded", "id", o.state.ID, "generation", o.generation)
		}
	}
	o.transition(State{Phase: PhaseIdle, Generation: o.generation})
}

func (o *Orchestrator) run(ctx context.Context, p *pending, req Request, timeout time.Duration) {
	s := settlement{id: p.id, generation: p.generation}
	defer func() {
		if r := recover(); r != nil {
			if o.logger != nil {
				o.logger.Error("submission panic", "id", p.id, "error", r, "stack", string(debug.Stack()))
			}
			s.results = nil
			s.err = &inference.TransportError{Op: "submit", Err: fmt.Errorf("internal error: %v", r)}
		}
		o.settled <- s
	}()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	s.results, s.err = o.execute(ctx, req)
}

func (o *Orchestrator) execute(ctx context.Context, req Request) ([]inference.ResultRecord, error) {
	switch req.Mode {
	case inference.ModeMulti:
		return o.backend.ProcessMultiple(ctx, req.Files)
	case inference.ModeSingle:
		up := req.Files[0]
		pred, err := o.backend.Predict(ctx, up)
		if err != nil {
			return nil, err
		}
		return []inference.ResultRecord{{Filename: up.Name, Prediction: pred}}, nil
	case inference.ModeDual:
		rec, err := NewDualSaga(o.backend, req.Files[0], o.logger).Run(ctx)
		if err != nil {
			return nil, err
		}
		return []inference.ResultRecord{rec}, nil
	case inference.ModeFeature:
		pred, err := o.backend.PredictFeature(ctx, *req.Feature)
		if err != nil {
			return nil, err
		}
		return []inference.ResultRecord{{Filename: fmt.Sprintf("feature=%g", *req.Feature), Prediction: pred}}, nil
	default:
		return nil, &inference.ValidationError{Reason: "unknown mode " + req.Mode.String()}
	}
}

func (o *Orchestrator) apply(s settlement) {
	p := o.pending
	defer func() {
		o.pending = nil
		o.setLoading(false)
	}()
	if p == nil || p.id != s.id {
		if o.logger != nil {
			o.logger.Error("settlement without matching request", "id", s.id)
		}
		return
	}
	elapsed := o.clock.Since(p.started)
	mode := p.mode.String()
	o.metrics.Settled(mode, elapsed, len(s.results))

	if s.generation != o.generation {
		o.metrics.Outcome(mode, metrics.OutcomeStale)
		if o.logger != nil {
			o.logger.Info("discarding late result", "id", s.id, "generation", s.generation, "current", o.generation, "elapsed", elapsed)
		}
		return
	}
	if s.err != nil {
		msg := inference.Message(s.err)
		if msg == "" {
			msg = inference.GenericRequestMessage
		}
		o.metrics.Outcome(mode, metrics.OutcomeFailed)
		if o.logger != nil {
			o.logger.Warn("submission failed", "id", s.id, "kind", inference.Classify(s.err).String(), "error", s.err, "elapsed", elapsed)
		}
		o.transition(State{Phase: PhaseFailed, ID: s.id, Generation: s.generation, Message: msg})
		return
	}
	o.metrics.Outcome(mode, metrics.OutcomeSucceeded)
	if o.logger != nil {
		o.logger.Info("submission settled", "id", s.id, "results", len(s.results), "elapsed", elapsed)
	}
	o.transition(State{Phase: PhaseSucceeded, ID: s.id, Generation: s.generation, Results: s.results})
}

func (o *Orchestrator) transition(next State) {
	prev := o.state
	o.state = next
	if o.logger != nil {
		o.logger.Debug("submission state transition", "from", prev.Phase.String(), "to", next.Phase.String(), "generation", next.Generation)
	}
	for _, l := range o.listeners {
		l(prev.clone(), next.clone())
	}
}

func (o *Orchestrator) setLoading(b bool) {
	o.metrics.SetInFlight(b)
	for _, l := range o.loadingListeners {
		l(b)
	}
}

func validate(req Request) error {
	if _, ok := inference.ParseMode(req.Mode.String()); !ok {
		return &inference.ValidationError{Reason: "unknown mode " + req.Mode.String()}
	}
	if !req.Mode.NeedsFiles() {
		if req.Feature == nil || math.IsNaN(*req.Feature) || math.IsInf(*req.Feature, 0) {
			return &inference.ValidationError{Reason: MsgNoFeature}
		}
		return nil
	}
	if len(req.Files) == 0 {
		return &inference.ValidationError{Reason: MsgNoFile}
	}
	return nil
}
