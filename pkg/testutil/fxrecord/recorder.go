// Package fxrecord captures fx lifecycle events so tests can assert which
// constructors a service graph actually runs.
package fxrecord

import (
	"strings"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Recorder is an fxevent.Logger keeping every successful provider run.
type Recorder struct {
	mu   sync.Mutex
	runs []string
	errs []error
}

func (r *Recorder) LogEvent(event fxevent.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch e := event.(type) {
	case *fxevent.Run:
		if e.Err != nil {
			r.errs = append(r.errs, e.Err)
			return
		}
		r.runs = append(r.runs, e.Name)
	case *fxevent.Invoked:
		if e.Err != nil {
			r.errs = append(r.errs, e.Err)
		}
	}
}

// Option installs r as the application's event logger. It must come after
// any other fx.WithLogger in the option list.
func (r *Recorder) Option() fx.Option {
	return fx.WithLogger(func() fxevent.Logger { return r })
}

// Ran counts the provider runs whose function name contains fn, such as
// "consumer.provideSupervisor".
func (r *Recorder) Ran(fn string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, name := range r.runs {
		if strings.Contains(name, fn) {
			n++
		}
	}
	return n
}

// Errors returns the constructor and invoke failures seen so far.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}
