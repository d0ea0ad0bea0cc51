// Package preflight evaluates the conditions the service needs before it
// starts accepting requests.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Check returns an error when its precondition does not hold.
type Check func(ctx context.Context) error

type entry struct {
	name     string
	check    Check
	required bool
}

// Registry maintains an ordered set of named checks.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// Status holds the evaluation result for a check.
type Status struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Healthy  bool   `json:"healthy"`
	Error    string `json:"error,omitempty"`
	Latency  string `json:"latency"`

	err error
}

// Result holds every check's status in registration order.
type Result struct {
	Checks []Status `json:"checks"`
}

// NewRegistry initializes an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Require adds a check whose failure blocks startup.
func (r *Registry) Require(name string, check Check) {
	r.register(name, check, true)
}

// Advise adds a check whose failure is only reported.
func (r *Registry) Advise(name string, check Check) {
	r.register(name, check, false)
}

func (r *Registry) register(name string, check Check, required bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].name == name {
			r.entries[i] = entry{name: name, check: check, required: required}
			return
		}
	}
	r.entries = append(r.entries, entry{name: name, check: check, required: required})
}

// Evaluate executes every check in registration order.
func (r *Registry) Evaluate(ctx context.Context) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checks := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		start := time.Now()
		err := e.check(ctx)
		status := Status{
			Name:     e.name,
			Required: e.required,
			Healthy:  err == nil,
			Latency:  time.Since(start).String(),
			err:      err,
		}
		if err != nil {
			status.Error = err.Error()
		}
		checks = append(checks, status)
	}
	return Result{Checks: checks}
}

// Err joins the failures of required checks, or returns nil.
func (r Result) Err() error {
	var errs []error
	for _, s := range r.Checks {
		if s.Required && !s.Healthy {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, s.err))
		}
	}
	return errors.Join(errs...)
}

// Warnings returns the failed advisory checks.
func (r Result) Warnings() []Status {
	var out []Status
	for _, s := range r.Checks {
		if !s.Required && !s.Healthy {
			out = append(out, s)
		}
	}
	return out
}
