// Package boundary isolates the trained classifier behind a message
// inbox. A single goroutine owns the model and scaler; callers reach it
// only through request/response messages matched by correlation ID, so
// training and prediction can never interleave on the same model.
package boundary

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/steerlab/voxsteer/internal/model"
)

// Action names a boundary operation.
type Action string

const (
	ActionInit    Action = "init"
	ActionTrain   Action = "train"
	ActionPredict Action = "predict"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionReset   Action = "reset"
)

// TrainPayload carries training data. Labels may be given as class
// indices (Labels) or one-hot rows (OneHot); indices win if both are set.
type TrainPayload struct {
	Features [][]float64   `json:"features"`
	Labels   []int         `json:"labels,omitempty"`
	OneHot   [][]float64   `json:"oneHot,omitempty"`
	Options  model.Options `json:"modelOptions"`
}

// PredictPayload carries one feature vector.
type PredictPayload struct {
	X []float64 `json:"x"`
}

// ImportPayload carries serialized model state and an optional scaler.
type ImportPayload struct {
	ModelState []byte        `json:"modelState"`
	Scaler     *model.Scaler `json:"scaler,omitempty"`
}

// Request is one boundary message. ID is caller-chosen and echoed in
// the response; Call fills in a fresh UUID when it is empty.
type Request struct {
	ID      string
	Action  Action
	Train   *TrainPayload
	Predict *PredictPayload
	Import  *ImportPayload
}

// Result is the action-specific success payload.
type Result struct {
	Ready      bool          `json:"ready,omitempty"`
	Trained    bool          `json:"trained,omitempty"`
	Scores     []float64     `json:"scores,omitempty"`
	ModelState []byte        `json:"modelState,omitempty"`
	Scaler     *model.Scaler `json:"scaler,omitempty"`
	Imported   bool          `json:"imported,omitempty"`
	Reset      bool          `json:"reset,omitempty"`
}

// Response echoes the request ID together with a success flag and
// either a result or an error message.
type Response struct {
	ID     string  `json:"id"`
	OK     bool    `json:"ok"`
	Result *Result `json:"result,omitempty"`
	Err    string  `json:"error,omitempty"`
}

type envelope struct {
	req   Request
	reply chan Response
}

// Boundary is the classifier actor. Create with New, stop with Close.
type Boundary struct {
	inbox chan envelope
	done  chan struct{}

	closeOnce sync.Once

	// Owned exclusively by the run goroutine.
	mdl    *model.Classifier
	scaler *model.Scaler
}

// New starts the boundary goroutine.
func New() *Boundary {
	b := &Boundary{
		inbox: make(chan envelope, 16),
		done:  make(chan struct{}),
	}
	go b.run()
	return b
}

// Close stops the boundary. Pending requests are answered with a
// transport error by Call's done-channel select.
func (b *Boundary) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Call sends one request and waits for its response. The returned
// response always echoes the request ID. Context cancellation and a
// closed boundary surface as failed responses, never as hangs.
func (b *Boundary) Call(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	env := envelope{req: req, reply: make(chan Response, 1)}

	select {
	case b.inbox <- env:
	case <-b.done:
		return Response{ID: req.ID, Err: "boundary closed"}
	case <-ctx.Done():
		return Response{ID: req.ID, Err: "send: " + ctx.Err().Error()}
	}

	select {
	case resp := <-env.reply:
		return resp
	case <-b.done:
		return Response{ID: req.ID, Err: "boundary closed"}
	case <-ctx.Done():
		return Response{ID: req.ID, Err: "await: " + ctx.Err().Error()}
	}
}

// run processes the inbox strictly in arrival order. Handler errors are
// turned into failure responses; the loop itself never stops on them.
func (b *Boundary) run() {
	for {
		select {
		case <-b.done:
			return
		case env := <-b.inbox:
			result, err := b.handle(env.req)
			resp := Response{ID: env.req.ID}
			if err != nil {
				resp.Err = err.Error()
			} else {
				resp.OK = true
				resp.Result = result
			}
			env.reply <- resp
		}
	}
}

func (b *Boundary) handle(req Request) (*Result, error) {
	switch req.Action {
	case ActionInit:
		return &Result{Ready: true}, nil
	case ActionTrain:
		return b.handleTrain(req.Train)
	case ActionPredict:
		return b.handlePredict(req.Predict)
	case ActionExport:
		return b.handleExport()
	case ActionImport:
		return b.handleImport(req.Import)
	case ActionReset:
		b.mdl = nil
		b.scaler = nil
		return &Result{Reset: true}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", req.Action)
	}
}

// handleTrain stages a new scaler and model and replaces the current
// pair only after both fits succeed, so a failed train leaves the
// previous state intact.
func (b *Boundary) handleTrain(p *TrainPayload) (*Result, error) {
	if p == nil || len(p.Features) == 0 {
		return nil, fmt.Errorf("train: missing features")
	}
	if len(p.Labels) == 0 && len(p.OneHot) == 0 {
		return nil, fmt.Errorf("train: missing labels")
	}

	targets := p.OneHot
	if len(p.Labels) > 0 {
		classes := 0
		for _, l := range p.Labels {
			if l+1 > classes {
				classes = l + 1
			}
		}
		if classes < 2 {
			classes = 2
		}
		var err error
		targets, err = model.OneHot(p.Labels, classes)
		if err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}
	}

	scaler, err := model.FitScaler(p.Features)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	mdl, err := model.Train(scaler.TransformAll(p.Features), targets, p.Options)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	b.scaler = scaler
	b.mdl = mdl
	return &Result{Trained: true}, nil
}

func (b *Boundary) handlePredict(p *PredictPayload) (*Result, error) {
	if b.mdl == nil {
		return nil, fmt.Errorf("predict: no trained model")
	}
	if p == nil || len(p.X) == 0 {
		return nil, fmt.Errorf("predict: missing input vector")
	}
	x := p.X
	if b.scaler != nil {
		// No scaler is only possible after an import without one; the
		// input then passes through unscaled.
		x = b.scaler.Transform(x)
	}
	scores, err := b.mdl.Scores(x)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return &Result{Scores: scores}, nil
}

func (b *Boundary) handleExport() (*Result, error) {
	if b.mdl == nil {
		return nil, fmt.Errorf("export: no trained model")
	}
	blob, err := b.mdl.MarshalState()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return &Result{ModelState: blob, Scaler: b.scaler}, nil
}

func (b *Boundary) handleImport(p *ImportPayload) (*Result, error) {
	if p == nil || len(p.ModelState) == 0 {
		return nil, fmt.Errorf("import: missing model state")
	}
	mdl, err := model.FromState(p.ModelState)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	b.mdl = mdl
	b.scaler = p.Scaler
	return &Result{Imported: true}, nil
}
