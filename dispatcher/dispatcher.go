package dispatcher

import (
	"context"
	"fmt"
	"time"

	"textops/transformations"
)

// Policy decides what happens when an identifier is not in the catalog.
type Policy int

const (
	// PassThrough returns the input unchanged for unknown identifiers.
	PassThrough Policy = iota
	// Strict fails with *UnknownTransformationError.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "pass-through"
}

// Observer is notified about every call. Implementations must be safe for concurrent use.
type Observer interface {
	OnApplied(id string, elapsed time.Duration)
	OnFailed(id string, elapsed time.Duration, err error)
	OnUnknown(id string)
}

// Dispatcher applies catalog transformations. It is immutable once built and safe for
// concurrent use.
type Dispatcher struct {
	policy    Policy
	observers []Observer
	lookup    func(id string) (transformations.Transformation, bool)
}

type Option func(*Dispatcher)

func WithPolicy(p Policy) Option {
	return func(d *Dispatcher) { d.policy = p }
}

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

// New creates a dispatcher over the built-in catalog.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		policy: PassThrough,
		lookup: transformations.Lookup,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Policy returns the unknown-identifier policy.
func (d *Dispatcher) Policy() Policy {
	return d.policy
}

// Known reports whether id has a catalog entry.
func (d *Dispatcher) Known(id string) bool {
	_, ok := d.lookup(id)
	return ok
}

// Apply runs the transformation registered under id against text.
// On failure the returned string is empty and the caller keeps its original text.
func (d *Dispatcher) Apply(ctx context.Context, id, text string) (string, error) {
	t, ok := d.lookup(id)
	if !ok {
		return d.unknown(id, text)
	}
	return d.invoke(ctx, id, t, text)
}

// ApplyChain applies ids in order. It fails as a whole: if any step fails, nothing
// from earlier steps is returned.
func (d *Dispatcher) ApplyChain(ctx context.Context, ids []string, text string) (string, error) {
	out := text
	for i, id := range ids {
		next, err := d.Apply(ctx, id, out)
		if err != nil {
			return "", fmt.Errorf("step %d of %d: %w", i+1, len(ids), err)
		}
		out = next
	}
	return out, nil
}

// ApplyTransformations applies configured steps to a key/value pair. Steps targeting
// the key rewrite key, all others rewrite value. Prefix and suffix steps take their
// argument from the step; every other type is a catalog identifier.
func (d *Dispatcher) ApplyTransformations(ctx context.Context, key, value string, configs []transformations.Config) (string, string, error) {
	for i, cfg := range configs {
		input := value
		if cfg.TargetOf() == transformations.TargetKey {
			input = key
		}

		var (
			out string
			err error
		)
		if t, ok := transformations.Parametric(cfg); ok {
			out, err = d.invoke(ctx, cfg.Type, t, input)
		} else {
			out, err = d.Apply(ctx, cfg.Type, input)
		}
		if err != nil {
			return "", "", fmt.Errorf("transformation %d (%s): %w", i+1, cfg.Type, err)
		}

		if cfg.TargetOf() == transformations.TargetKey {
			key = out
		} else {
			value = out
		}
	}
	return key, value, nil
}

func (d *Dispatcher) unknown(id, text string) (string, error) {
	for _, o := range d.observers {
		o.OnUnknown(id)
	}
	if d.policy == Strict {
		return "", &UnknownTransformationError{ID: id}
	}
	return text, nil
}

func (d *Dispatcher) invoke(ctx context.Context, id string, t transformations.Transformation, text string) (out string, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: %s: %v", ErrPanic, id, r)
		}
		elapsed := time.Since(start)
		for _, o := range d.observers {
			if err != nil {
				o.OnFailed(id, elapsed, err)
			} else {
				o.OnApplied(id, elapsed)
			}
		}
	}()
	out, err = t.Transform(ctx, text)
	if err != nil {
		return "", err
	}
	return out, nil
}
