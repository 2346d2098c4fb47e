package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edp1096/audio-spice/pkg/response"
	"github.com/edp1096/audio-spice/pkg/topology"
)

type Analysis interface {
	Setup(topo *topology.Topology) error
	Execute(ctx context.Context) error
	Data() Data
}

type BaseAnalysis struct {
	Topology *topology.Topology
	Model    *response.Model
	Workers  int
	nets     []topology.Net // non-ground nets in name order
}

func NewBaseAnalysis(opts Options) *BaseAnalysis {
	model := opts.Model
	if model == nil {
		model = response.NewModel()
	}
	return &BaseAnalysis{Model: model, Workers: opts.Workers}
}

func (a *BaseAnalysis) Setup(topo *topology.Topology) error {
	if topo.Empty() {
		return ErrNoTopology
	}
	a.Topology = topo
	a.nets = topo.AnalysedNets()
	return nil
}

func (a *BaseAnalysis) checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}

// Options are shared by every strategy.
type Options struct {
	Model   *response.Model
	Workers int
}

// New returns the strategy for req.
func New(req Request, opts Options) (Analysis, error) {
	switch r := normalize(req).(type) {
	case DCRequest:
		return NewDC(r, opts), nil
	case ACRequest:
		return NewAC(r, opts), nil
	case TransientRequest:
		return NewTransient(r, opts), nil
	case NoiseRequest:
		return NewNoise(r, opts), nil
	case FourierRequest:
		return NewFourier(r, opts), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownKind, req)
}

// Run executes req against topo. It always returns a result: either
// successful with data, or failed with a message and nil data. Panics are
// turned into failures.
func Run(ctx context.Context, req Request, topo *topology.Topology, opts Options) (res *Result) {
	start := time.Now()
	topo = topo.Ingested()

	res = &Result{
		Metadata: Metadata{
			RunID:   uuid.NewString(),
			Circuit: topo.Stats(),
		},
	}
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Data = nil
			res.ErrorMessage = (&AnalysisError{Kind: res.Kind, Err: fmt.Errorf("panic: %v", r)}).Error()
		}
		res.Metadata.ExecutionTime = time.Since(start)
	}()

	if req == nil {
		res.ErrorMessage = fmt.Errorf("%w: nil request", ErrUnknownKind).Error()
		return res
	}
	res.Kind = req.Kind()
	res.Metadata.Parameters = Parameters(req)

	fail := func(err error) *Result {
		res.ErrorMessage = (&AnalysisError{Kind: res.Kind, Err: err}).Error()
		return res
	}

	fp, err := FingerprintOf(req)
	if err != nil {
		return fail(err)
	}
	res.Metadata.Fingerprint = fp.String()

	if err := req.Validate(); err != nil {
		return fail(err)
	}
	a, err := New(req, opts)
	if err != nil {
		return fail(err)
	}
	if err := a.Setup(topo); err != nil {
		return fail(err)
	}
	if err := a.Execute(ctx); err != nil {
		return fail(err)
	}

	res.Success = true
	res.Data = a.Data()
	return res
}

// Failed builds the failure result for a request that never reached a
// strategy, e.g. an unknown kind or an unavailable topology.
func Failed(kind Kind, params map[string]any, err error) *Result {
	return &Result{
		Kind:         kind,
		ErrorMessage: (&AnalysisError{Kind: kind, Err: err}).Error(),
		Metadata: Metadata{
			Parameters: params,
			RunID:      uuid.NewString(),
		},
	}
}
