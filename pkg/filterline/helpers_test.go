package filterline_test

import (
	"context"
	"sync"
	"testing"

	"github.com/filterline/go-filterline/pkg/filterline"
)

// trace records the observed phase sequence of a single test execution.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (tr *trace) add(event string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, event)
}

func (tr *trace) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	out := make([]string, len(tr.events))
	copy(out, tr.events)

	return out
}

type authFilter struct {
	name   string
	tr     *trace
	result any
	err    error
}

func (f *authFilter) FilterName() string { return f.name }

func (f *authFilter) Authorize(c *filterline.Context) error {
	f.tr.add(f.name + ":authorize")
	if f.result != nil {
		c.Result = f.result
	}

	return f.err
}

type resourceFilter struct {
	name      string
	tr        *trace
	result    any
	errBefore error
	onAfter   func(c *filterline.Context)
}

func (f *resourceFilter) FilterName() string { return f.name }

func (f *resourceFilter) BeforeResource(c *filterline.Context) error {
	f.tr.add(f.name + ":pre")
	if f.result != nil {
		c.Result = f.result
	}

	return f.errBefore
}

func (f *resourceFilter) AfterResource(c *filterline.Context) error {
	f.tr.add(f.name + ":post")
	if f.onAfter != nil {
		f.onAfter(c)
	}

	return nil
}

type actionFilter struct {
	name     string
	tr       *trace
	result   any
	onBefore func(c *filterline.Context)
	onAfter  func(c *filterline.Context)
}

func (f *actionFilter) FilterName() string { return f.name }

func (f *actionFilter) BeforeAction(c *filterline.Context) error {
	f.tr.add(f.name + ":pre")
	if f.onBefore != nil {
		f.onBefore(c)
	}
	if f.result != nil {
		c.Result = f.result
	}

	return nil
}

func (f *actionFilter) AfterAction(c *filterline.Context) error {
	f.tr.add(f.name + ":post")
	if f.onAfter != nil {
		f.onAfter(c)
	}

	return nil
}

type exceptionFilter struct {
	name   string
	tr     *trace
	handle func(c *filterline.Context)
}

func (f *exceptionFilter) FilterName() string { return f.name }

func (f *exceptionFilter) HandleException(c *filterline.Context) error {
	f.tr.add(f.name + ":exception")
	if f.handle != nil {
		f.handle(c)
	}

	return nil
}

type resultFilter struct {
	name    string
	tr      *trace
	cancel  bool
	onAfter func(c *filterline.Context)
}

func (f *resultFilter) FilterName() string { return f.name }

func (f *resultFilter) BeforeResult(c *filterline.Context) error {
	f.tr.add(f.name + ":pre")
	if f.cancel {
		c.Canceled = true
	}

	return nil
}

func (f *resultFilter) AfterResult(c *filterline.Context) error {
	f.tr.add(f.name + ":post")
	if f.onAfter != nil {
		f.onAfter(c)
	}

	return nil
}

// alwaysResultFilter is a result filter that runs even after short-circuits
// and unrecovered faults.
type alwaysResultFilter struct {
	resultFilter
}

func (f *alwaysResultFilter) AlwaysRunResult() {}

type aroundActionFilter struct {
	name   string
	tr     *trace
	around func(c *filterline.Context, next filterline.Next) error
}

func (f *aroundActionFilter) FilterName() string { return f.name }

func (f *aroundActionFilter) AroundAction(c *filterline.Context, next filterline.Next) error {
	f.tr.add(f.name + ":around")

	return f.around(c, next)
}

// recordingRenderer marks what was rendered.
type recordingRenderer struct {
	mu       sync.Mutex
	rendered []any
}

func (r *recordingRenderer) Render(c *filterline.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, c.Result)

	return nil
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rendered)
}

func newTarget(t *testing.T, tr *trace, result any) *filterline.Target {
	t.Helper()

	return &filterline.Target{
		Name: "test target",
		Invoke: func(ctx context.Context, args []any) (any, error) {
			tr.add("target")

			return result, nil
		},
	}
}
