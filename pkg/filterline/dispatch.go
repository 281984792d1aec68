package filterline

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Request pairs a target with the dependency scope used to materialize its
// filters. The provider is typically request-scoped.
type Request struct {
	Target   *Target
	Provider Provider
	Opts     []InvokeOption
}

// InvokeAll executes the pipeline once per request, at most concurrent at a
// time, and stops on the first error. Each execution owns its Context
// exclusively; reusable filter instances shared between the executions must
// be request-stateless.
func (p *Pipeline) InvokeAll(ctx context.Context, reqs []Request, concurrent int) ([]any, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if concurrent <= 0 {
		concurrent = 1
	}

	results := make([]any, len(reqs))

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(concurrent)
	for idx := range reqs {
		localIdx := idx
		req := reqs[idx]
		errGrp.Go(func() error {
			res, err := p.Invoke(dCtx, req.Target, req.Provider, req.Opts...)
			if err != nil {
				return errors.Wrapf(err, "request %d", localIdx)
			}
			results[localIdx] = res

			return nil
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return nil, err
	}

	return results, nil
}
