package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kates/vector/core"
	"github.com/kates/vector/decl"
	"golang.org/x/sync/errgroup"
)

// ErrorField is where PolicyTag stores the failure message on an event.
var ErrorField = core.Path{core.FieldSegment("metadata"), core.FieldSegment("remap_error")}

// Transform applies a Program to a stream of events.
type Transform struct {
	Program *Program
	Policy  ErrorPolicy

	// Seed, when set, is the starting variable bindings for every event.
	Seed map[string]core.Value
}

// Stats counts what happened to a batch.
type Stats struct {
	Processed int64
	Dropped   int64
	Tagged    int64
}

// Process runs the program against a copy of ev. On success the modified
// copy is returned with PolicyPass. On failure the policy decides: PolicyTag
// returns the original event tagged with the error, PolicyDrop returns nil,
// and PolicyAbort returns the error.
func (t *Transform) Process(ctx context.Context, ev *Event) (*Event, PolicyAction, error) {
	return t.process(ctx, ev, GetLogger())
}

func (t *Transform) process(ctx context.Context, ev *Event, log Logger) (*Event, PolicyAction, error) {
	if t.Program == nil {
		return nil, PolicyAbort, ErrNilProgram
	}
	if ev == nil {
		return nil, PolicyAbort, ErrNilEvent
	}
	out := ev.Clone()
	var opts []RunOption
	if t.Seed != nil {
		opts = append(opts, WithSeed(t.Seed))
	}
	_, err := t.Program.Run(ctx, out, opts...)
	if err == nil {
		return out, PolicyPass, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, PolicyAbort, ctxErr
	}

	action := t.Policy.For(err)
	kind := decl.ErrKindUnknown
	var exprErr *decl.Error
	if errors.As(err, &exprErr) {
		kind = exprErr.Kind
	}
	switch action {
	case PolicyDrop:
		log.Warn("remap error, event dropped: kind=%s error=%q", kind, err)
		return nil, action, err
	case PolicyTag:
		log.Warn("remap error, event tagged: kind=%s error=%q", kind, err)
		tagged := ev.Clone()
		if tagErr := tagged.Insert(ErrorField, core.NewString(err.Error())); tagErr != nil {
			log.Error("unable to tag event: %v", tagErr)
			return nil, PolicyAbort, fmt.Errorf("%w (tagging failed: %v)", err, tagErr)
		}
		return tagged, action, err
	}
	return nil, PolicyAbort, err
}

// ProcessAll runs the program over events with at most workers goroutines
// (unbounded when workers <= 0). Output keeps input order with dropped
// events removed. The first aborting failure cancels the batch; its error is
// returned together with the stats gathered so far.
func (t *Transform) ProcessAll(ctx context.Context, events []*Event, workers int) ([]*Event, Stats, error) {
	results := make([]*Event, len(events))
	var processed, dropped, tagged atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, ev := range events {
		i, ev := i, ev
		g.Go(func() error {
			out, action, err := t.process(gctx, ev, With("event", i))
			if err != nil {
				switch action {
				case PolicyDrop:
					dropped.Add(1)
				case PolicyTag:
					tagged.Add(1)
				default:
					return fmt.Errorf("event %d: %w", i, err)
				}
			}
			processed.Add(1)
			results[i] = out
			return nil
		})
	}
	err := g.Wait()
	stats := Stats{Processed: processed.Load(), Dropped: dropped.Load(), Tagged: tagged.Load()}
	if err != nil {
		return nil, stats, err
	}

	out := make([]*Event, 0, len(results))
	for _, ev := range results {
		if ev != nil {
			out = append(out, ev)
		}
	}
	Debug("processed %d events: %d dropped, %d tagged", stats.Processed, stats.Dropped, stats.Tagged)
	return out, stats, nil
}
