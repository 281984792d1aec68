package filterline_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filterline/go-filterline/pkg/filterline"
	"github.com/filterline/go-filterline/pkg/filterline/deps"
)

// auditLog is a dependency injected into constructed filters.
type auditLog struct {
	entries []string
}

type auditFilter struct {
	log *auditLog
}

func newAuditFilter(log *auditLog) *auditFilter {
	return &auditFilter{log: log}
}

func (f *auditFilter) BeforeAction(c *filterline.Context) error {
	f.log.entries = append(f.log.entries, "before")

	return nil
}

func (f *auditFilter) AfterAction(c *filterline.Context) error {
	f.log.entries = append(f.log.entries, "after")

	return nil
}

func TestConstructorDeclaration(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	log := &auditLog{}

	container := deps.New()
	require.NoError(t, container.Register(log))

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, tr, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewDeclaration(newAuditFilter),
	}

	res, err := pipe.Invoke(context.Background(), target, container)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, []string{"before", "after"}, log.entries)
}

func TestConstructorDependencyMissing(t *testing.T) {
	t.Parallel()

	tr := &trace{}

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, tr, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewDeclaration(newAuditFilter),
	}

	_, err = pipe.Invoke(context.Background(), target, deps.New())
	require.Error(t, err)

	var depErr *filterline.DependencyError
	assert.True(t, errors.As(err, &depErr))
	// the failure aborts setup: no stage ran, no target invocation happened
	assert.Empty(t, tr.list())
}

func TestConstructorNotAFunc(t *testing.T) {
	t.Parallel()

	tr := &trace{}

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, tr, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewDeclaration("not a func"),
	}

	_, err = pipe.Invoke(context.Background(), target, deps.New())
	require.Error(t, err)

	var cfgErr *filterline.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestFactoryDeclaration(t *testing.T) {
	t.Parallel()

	tr := &trace{}

	factory := func(p filterline.Provider, args ...any) (filterline.Filter, error) {
		return &actionFilter{name: args[0].(string), tr: tr}, nil
	}

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, tr, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewFactoryDeclaration(factory, []any{"made"}),
	}

	_, err = pipe.Invoke(context.Background(), target, deps.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"made:pre", "target", "made:post"}, tr.list())
}

func TestFactoryFailure(t *testing.T) {
	t.Parallel()

	tr := &trace{}

	factory := func(p filterline.Provider, args ...any) (filterline.Filter, error) {
		return nil, assert.AnError
	}

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, tr, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewFactoryDeclaration(factory, nil),
	}

	_, err = pipe.Invoke(context.Background(), target, deps.New())
	require.Error(t, err)

	var depErr *filterline.DependencyError
	assert.True(t, errors.As(err, &depErr))
	assert.Empty(t, tr.list())
}

func TestLiteralNilInstance(t *testing.T) {
	t.Parallel()

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, &trace{}, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewLiteralDeclaration(nil),
	}

	_, err = pipe.Invoke(context.Background(), target, deps.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, filterline.ErrNilInstance))
}

func TestNoCapabilities(t *testing.T) {
	t.Parallel()

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, &trace{}, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewLiteralDeclaration(struct{ X int }{}),
	}

	_, err = pipe.Invoke(context.Background(), target, deps.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, filterline.ErrNoCapabilities))
}

func TestReusableBuiltOnce(t *testing.T) {
	t.Parallel()

	tr := &trace{}

	var built int32

	ctor := func() filterline.Filter {
		atomic.AddInt32(&built, 1)

		return &actionFilter{name: "cached", tr: tr}
	}

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, tr, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewDeclaration(ctor, filterline.Reusable()),
	}

	for i := 0; i < 3; i++ {
		_, err = pipe.Invoke(context.Background(), target, deps.New())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&built))
}

func TestNonReusableBuiltPerRequest(t *testing.T) {
	t.Parallel()

	tr := &trace{}

	var built int32

	ctor := func() filterline.Filter {
		atomic.AddInt32(&built, 1)

		return &actionFilter{name: "fresh", tr: tr}
	}

	pipe, err := filterline.New()
	require.NoError(t, err)

	target := newTarget(t, tr, "ok")
	target.MethodFilters = []*filterline.Declaration{
		filterline.NewDeclaration(ctor),
	}

	for i := 0; i < 3; i++ {
		_, err = pipe.Invoke(context.Background(), target, deps.New())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&built))
}
