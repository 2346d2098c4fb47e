package engine

import (
	"context"
	"fmt"

	"github.com/edp1096/audio-spice/internal/logging"
	"github.com/edp1096/audio-spice/pkg/analysis"
)

// Observer is notified after every computed analysis, successful or not.
// Cache hits do not notify. Returned errors are logged and dropped.
type Observer func(ctx context.Context, res *analysis.Result) error

type subscription struct {
	id uint64
	fn Observer
}

// Subscribe registers obs and returns a function that removes it.
func (e *Engine) Subscribe(obs Observer) func() {
	if obs == nil {
		return func() {}
	}

	e.obsMu.Lock()
	e.nextObsID++
	id := e.nextObsID
	e.observers = append(e.observers, subscription{id: id, fn: obs})
	e.obsMu.Unlock()

	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		for i, s := range e.observers {
			if s.id == id {
				e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notify(ctx context.Context, res *analysis.Result) {
	e.obsMu.RLock()
	subs := make([]subscription, len(e.observers))
	copy(subs, e.observers)
	e.obsMu.RUnlock()

	for _, s := range subs {
		if err := callObserver(ctx, s.fn, res); err != nil {
			e.collector.ObserverFailed()
			e.log.Error(ctx, "observer failed",
				logging.Int("observer", int(s.id)),
				logging.String("kind", string(res.Kind)),
				logging.Err(err),
			)
		}
	}
}

func callObserver(ctx context.Context, fn Observer, res *analysis.Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return fn(ctx, res)
}
