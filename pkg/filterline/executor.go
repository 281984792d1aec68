package filterline

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/filterline/go-filterline/pkg/filterline/model"
)

// execution drives one pipeline run. Stages run strictly sequentially within
// the request's task; faults travel on c.Err and stay visible through
// unwinding post phases until cleared. The error values returned by the run*
// methods are infrastructure failures only (next-delegate misuse), never
// stage faults.
type execution struct {
	p         *Pipeline
	plan      *plan
	c         *Context
	target    *Target
	renderer  Renderer
	resultRan bool
}

func (ex *execution) run() (any, error) {
	c := ex.c

	if err := c.ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "request canceled")
	}

	// Authorization stage: pre phases only, no unwinding.
	for _, b := range ex.plan.auth {
		err := ex.phase(b, model.StageAuthorization, model.PhasePre, func() error {
			return b.auth.Authorize(c)
		})
		if err != nil {
			// Returning an error here is a contract misuse: unauthorized is
			// signaled by setting a Result. The fault aborts the pipeline;
			// always-run result filters still observe it.
			c.Err = errors.Wrapf(err, "authorization filter %s", b.name)
			if rerr := ex.runResultStage(true); rerr != nil {
				return nil, rerr
			}

			return nil, c.Err
		}
		if c.Result != nil {
			// Terminates the entire pipeline. Only always-run result filters
			// still run.
			if rerr := ex.runResultStage(true); rerr != nil {
				return nil, rerr
			}
			if c.Err != nil {
				return nil, c.Err
			}

			return c.Result, nil
		}
	}

	if err := ex.runResource(0); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}

	return c.Result, nil
}

// runResource nests resource filter i around everything from the action
// stage through the result stage.
func (ex *execution) runResource(i int) error {
	c := ex.c
	if i == len(ex.plan.resource) {
		return ex.runCore()
	}

	b := ex.plan.resource[i]

	if b.aroundRes != nil {
		next, guard := ex.nextFor(func() error {
			return ex.runResource(i + 1)
		})
		err := ex.phase(b, model.StageResource, model.PhaseAround, func() error {
			return b.aroundRes.AroundResource(c, next)
		})
		if ierr := guard.failure(); ierr != nil {
			return ierr
		}
		if err != nil {
			c.Err = errors.Wrapf(err, "resource filter %s", b.name)

			return ex.runResultStage(true)
		}
		if !guard.called() {
			// Short-circuit: the inner stages never ran. Always-run result
			// filters are still owed an execution.
			return ex.runResultStage(true)
		}

		return nil
	}

	err := ex.phase(b, model.StageResource, model.PhasePre, func() error {
		return b.resource.BeforeResource(c)
	})
	switch {
	case err != nil:
		// Resource faults are not recoverable at the exception stage; they
		// propagate by unwinding the already-entered post phases.
		c.Err = errors.Wrapf(err, "resource filter %s", b.name)

		return ex.runResultStage(true)
	case c.Result != nil:
		// Short-circuit: skip the action and result stages, except for
		// always-run result filters, then unwind.
		if rerr := ex.runResultStage(true); rerr != nil {
			return rerr
		}
	default:
		if rerr := ex.runResource(i + 1); rerr != nil {
			return rerr
		}
	}

	perr := ex.phase(b, model.StageResource, model.PhasePost, func() error {
		return b.resource.AfterResource(c)
	})
	if perr != nil {
		c.Err = errors.Wrapf(perr, "resource filter %s", b.name)
	}

	return nil
}

// runCore runs the action stage around the target invocation, the exception
// stage when a fault escaped it, then the result stage.
func (ex *execution) runCore() error {
	c := ex.c

	if err := ex.runAction(0); err != nil {
		return err
	}

	if c.Err != nil {
		for _, b := range ex.plan.exception {
			err := ex.phase(b, model.StageException, model.PhasePre, func() error {
				return b.exception.HandleException(c)
			})
			if err != nil {
				c.Err = errors.Wrapf(err, "exception filter %s", b.name)
			}
		}
	}

	if c.Err != nil {
		// Unhandled: the fault is rethrown to the caller. Ordinary result
		// filters are skipped, always-run ones observe a synthesized
		// fault-status result.
		return ex.runResultStage(true)
	}

	// Ordinary result filters need a Result value to work on; a target that
	// produced none leaves only the always-run subset.
	return ex.runResultStage(c.Result == nil)
}

// runAction nests action filter i around the target invocation.
func (ex *execution) runAction(i int) error {
	c := ex.c
	if i == len(ex.plan.action) {
		if err := c.ctx.Err(); err != nil {
			c.Err = errors.Wrap(err, "request canceled")

			return nil
		}

		res, err := ex.target.Invoke(c.ctx, c.Args)
		if err != nil {
			c.Err = errors.Wrapf(err, "target %s", ex.target.Name)

			return nil
		}
		c.Result = res

		return nil
	}

	b := ex.plan.action[i]

	if b.aroundAct != nil {
		next, guard := ex.nextFor(func() error {
			return ex.runAction(i + 1)
		})
		err := ex.phase(b, model.StageAction, model.PhaseAround, func() error {
			return b.aroundAct.AroundAction(c, next)
		})
		if ierr := guard.failure(); ierr != nil {
			return ierr
		}
		if err != nil {
			c.Err = errors.Wrapf(err, "action filter %s", b.name)
		}

		return nil
	}

	err := ex.phase(b, model.StageAction, model.PhasePre, func() error {
		return b.action.BeforeAction(c)
	})
	if err != nil {
		// A faulting pre phase skips its own post phase; the outer entered
		// post phases observe the fault while unwinding.
		c.Err = errors.Wrapf(err, "action filter %s", b.name)

		return nil
	}

	if c.Result == nil {
		if rerr := ex.runAction(i + 1); rerr != nil {
			return rerr
		}
	}

	perr := ex.phase(b, model.StageAction, model.PhasePost, func() error {
		return b.action.AfterAction(c)
	})
	if perr != nil {
		c.Err = errors.Wrapf(perr, "action filter %s", b.name)
	}

	return nil
}

// runResultStage runs the result stage exactly once per execution. With
// alwaysOnly, only filters marked always-run participate and a fault-status
// result is synthesized when no Result was set.
func (ex *execution) runResultStage(alwaysOnly bool) error {
	if ex.resultRan {
		return nil
	}
	ex.resultRan = true

	c := ex.c
	filters := ex.plan.result
	if alwaysOnly {
		always := make([]*boundFilter, 0, len(filters))
		for _, b := range filters {
			if b.alwaysRun {
				always = append(always, b)
			}
		}
		filters = always

		if c.Result == nil && c.Err != nil {
			c.Result = &FaultResult{Err: c.Err}
		}
	}

	return ex.runResult(filters, 0)
}

// runResult nests result filter i around the rendering step.
func (ex *execution) runResult(filters []*boundFilter, i int) error {
	c := ex.c
	if i == len(filters) {
		// Result rendering. Skipped when canceled or on a fault path; the
		// flush flag is what result post phases observe on the way out.
		if c.Canceled || c.Err != nil || c.Result == nil || ex.renderer == nil {
			return nil
		}
		if err := ex.renderer.Render(c); err != nil {
			c.Err = errors.Wrap(err, "unable to render result")

			return nil
		}
		c.flushed = true

		return nil
	}

	b := filters[i]

	if b.aroundResult != nil {
		next, guard := ex.nextFor(func() error {
			return ex.runResult(filters, i+1)
		})
		err := ex.phase(b, model.StageResult, model.PhaseAround, func() error {
			return b.aroundResult.AroundResult(c, next)
		})
		if ierr := guard.failure(); ierr != nil {
			return ierr
		}
		if err != nil {
			c.Err = errors.Wrapf(err, "result filter %s", b.name)
		}

		return nil
	}

	err := ex.phase(b, model.StageResult, model.PhasePre, func() error {
		return b.result.BeforeResult(c)
	})
	if err != nil {
		c.Err = errors.Wrapf(err, "result filter %s", b.name)

		return nil
	}

	if !c.Canceled {
		if rerr := ex.runResult(filters, i+1); rerr != nil {
			return rerr
		}
	}

	perr := ex.phase(b, model.StageResult, model.PhasePost, func() error {
		return b.result.AfterResult(c)
	})
	if perr != nil {
		c.Err = errors.Wrapf(perr, "result filter %s", b.name)
	}

	return nil
}

// phase runs one filter phase, measuring it and notifying the options. An
// option failure is surfaced as a stage fault on the same channel as a
// filter failure.
func (ex *execution) phase(b *boundFilter, stage model.StageType, ph model.Phase, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	herr := ex.p.notifyPhase(b.info, stage, ph, elapsed)
	if herr != nil && err == nil {
		err = herr
	}

	return err
}

// nextGuard tracks how often a continuation was invoked. Invoking it more
// than once, including from concurrent paths, is a configuration-class
// misuse that aborts the pipeline even when the filter swallows the error.
type nextGuard struct {
	calls int32
	infra error
}

func (g *nextGuard) called() bool {
	return atomic.LoadInt32(&g.calls) > 0
}

func (g *nextGuard) failure() error {
	if atomic.LoadInt32(&g.calls) > 1 {
		return &ConfigError{Err: ErrNextCalledTwice}
	}

	return g.infra
}

// nextFor wraps "run everything inward" into a Next continuation with
// at-most-once enforcement.
func (ex *execution) nextFor(inner func() error) (Next, *nextGuard) {
	guard := &nextGuard{}
	next := Next(func() error {
		if atomic.AddInt32(&guard.calls, 1) > 1 {
			// failure() reports this off the counter alone.
			return &ConfigError{Err: ErrNextCalledTwice}
		}

		err := inner()
		guard.infra = err

		return err
	})

	return next, guard
}
