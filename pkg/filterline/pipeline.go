package filterline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/filterline/go-filterline/internal/cache"
	"github.com/filterline/go-filterline/pkg/filterline/model"
)

// Pipeline holds the process-wide filter declarations and the options
// observing executions. Registration happens at configuration time; once a
// pipeline starts serving requests its declarations are treated as
// immutable and are safe for concurrent reads.
type Pipeline struct {
	mu        sync.Mutex
	globals   []*Declaration
	opts      []model.Option
	instances *cache.Cache[*Declaration, Filter]
	prepared  map[string]struct{}
	startTime time.Time
}

// New creates a new pipeline.
func New(opts ...model.Option) (*Pipeline, error) {
	pipe := &Pipeline{
		opts:      opts,
		instances: cache.New[*Declaration, Filter](),
		prepared:  make(map[string]struct{}),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// RegisterGlobal registers a process-wide filter declaration. Global filters
// nest outermost by default.
func (p *Pipeline) RegisterGlobal(decl *Declaration) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}
	if decl == nil {
		return ErrNilDeclaration
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.globals = append(p.globals, decl)

	return nil
}

// InvokeOption configures a single pipeline execution.
type InvokeOption func(ex *execution)

// WithRenderer sets the response-writing collaborator invoked at the
// innermost point of the result stage. Without one, rendering is a no-op and
// c.Flushed stays false.
func WithRenderer(r Renderer) InvokeOption {
	return func(ex *execution) {
		ex.renderer = r
	}
}

// Invoke runs the pipeline around the target: it gathers the applicable
// declarations, orders them, materializes instances through the provider,
// and executes the stages nested around the target invocation. It returns
// the final Result value or the unrecovered fault. Instantiation failures
// abort before any stage runs.
func (p *Pipeline) Invoke(ctx context.Context, target *Target, provider Provider, opts ...InvokeOption) (any, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if target == nil {
		return nil, ErrTargetMustBeSet
	}
	if target.Invoke == nil {
		return nil, &ConfigError{Filter: target.Name, Err: ErrTargetNotCallable}
	}
	if provider == nil {
		return nil, ErrProviderMustBeSet
	}

	regs := p.resolve(target)
	sortRegistrations(regs)

	pl, err := p.materialize(regs, provider, target.Name)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(target.Args))
	copy(args, target.Args)

	ex := &execution{
		p:      p,
		plan:   pl,
		c:      &Context{Args: args, ctx: ctx, target: target},
		target: target,
	}
	for _, opt := range opts {
		opt(ex)
	}

	return ex.run()
}

// Finish runs the Finish hook of every pipeline option. Call it once the
// pipeline stops serving, e.g. to flush the drawer output.
func (p *Pipeline) Finish() error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	total := time.Since(p.startTime)
	for _, opt := range p.opts {
		err := opt.Finish(total)
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// prepareFilter tells the options about a materialized filter the first time
// it shows up for a target.
func (p *Pipeline) prepareFilter(target string, info *model.FilterInfo) error {
	if len(p.opts) == 0 {
		return nil
	}

	key := target + "/" + info.Name
	p.mu.Lock()
	if _, ok := p.prepared[key]; ok {
		p.mu.Unlock()

		return nil
	}
	p.prepared[key] = struct{}{}
	p.mu.Unlock()

	for _, opt := range p.opts {
		err := opt.PrepareFilter(target, info)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare filter option")
		}
	}

	return nil
}

func (p *Pipeline) notifyPhase(info *model.FilterInfo, stage model.StageType, ph model.Phase, elapsed time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnPhase(info, stage, ph, elapsed)
		if err != nil {
			return errors.Wrap(err, "unable to run phase option")
		}
	}

	return nil
}
