package filterline_test

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filterline/go-filterline/pkg/filterline"
	"github.com/filterline/go-filterline/pkg/filterline/deps"
)

// countingFilter is request-stateless: safe to share across concurrent
// executions.
type countingFilter struct {
	calls int32
}

func (f *countingFilter) FilterName() string { return "counting" }

func (f *countingFilter) BeforeAction(c *filterline.Context) error {
	atomic.AddInt32(&f.calls, 1)

	return nil
}

func (f *countingFilter) AfterAction(c *filterline.Context) error {
	return nil
}

func TestInvokeAll(t *testing.T) {
	tcs := map[string]struct {
		concurrent int
	}{
		"sequential":    {concurrent: 1},
		"sequential v2": {concurrent: 0},
		"concurrent 2":  {concurrent: 2},
		"concurrent 16": {concurrent: 16},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			shared := &countingFilter{}

			pipe, err := filterline.New()
			require.NoError(t, err)
			err = pipe.RegisterGlobal(filterline.NewLiteralDeclaration(shared, filterline.Reusable()))
			require.NoError(t, err)

			const total = 20

			reqs := make([]filterline.Request, total)
			for i := 0; i < total; i++ {
				idx := i
				reqs[i] = filterline.Request{
					Target: &filterline.Target{
						Name: "target " + strconv.Itoa(idx),
						Invoke: func(ctx context.Context, args []any) (any, error) {
							return idx, nil
						},
					},
					Provider: deps.New(),
				}
			}

			results, err := pipe.InvokeAll(context.Background(), reqs, tc.concurrent)
			require.NoError(t, err)
			require.Len(t, results, total)
			for i := 0; i < total; i++ {
				assert.Equal(t, i, results[i])
			}
			assert.Equal(t, int32(total), atomic.LoadInt32(&shared.calls))
		})
	}
}

func TestInvokeAllStopsOnError(t *testing.T) {
	t.Parallel()

	pipe, err := filterline.New()
	require.NoError(t, err)

	reqs := []filterline.Request{
		{
			Target: &filterline.Target{
				Name: "good",
				Invoke: func(ctx context.Context, args []any) (any, error) {
					return "ok", nil
				},
			},
			Provider: deps.New(),
		},
		{
			Target: &filterline.Target{
				Name: "bad",
				Invoke: func(ctx context.Context, args []any) (any, error) {
					return nil, assert.AnError
				},
			},
			Provider: deps.New(),
		},
	}

	_, err = pipe.InvokeAll(context.Background(), reqs, 1)
	require.Error(t, err)
}
