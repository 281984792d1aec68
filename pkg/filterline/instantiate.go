package filterline

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/filterline/go-filterline/pkg/filterline/model"
)

// boundFilter is one materialized filter instance with its capability set
// resolved. Stage membership is inspected exactly once here; the executor
// never asks again.
type boundFilter struct {
	name string
	reg  registration
	info *model.FilterInfo

	auth         AuthorizationFilter
	resource     ResourceFilter
	aroundRes    AroundResourceFilter
	action       ActionFilter
	aroundAct    AroundActionFilter
	exception    ExceptionFilter
	result       ResultFilter
	aroundResult AroundResultFilter
	alwaysRun    bool
}

// plan holds the per-stage execution node lists for one request, in
// execution order.
type plan struct {
	filters   []*boundFilter
	auth      []*boundFilter
	resource  []*boundFilter
	action    []*boundFilter
	exception []*boundFilter
	result    []*boundFilter
}

// instantiate materializes a single declaration. Reusable declarations are
// cached process-wide and built at most once; everything else is built per
// request.
func (p *Pipeline) instantiate(reg registration, provider Provider) (Filter, error) {
	decl := reg.decl
	if decl.reusable {
		return p.instances.GetOrCreate(decl, func() (Filter, error) {
			return buildInstance(decl, provider)
		})
	}

	return buildInstance(decl, provider)
}

func buildInstance(decl *Declaration, provider Provider) (Filter, error) {
	switch decl.kind {
	case literalDecl:
		if decl.instance == nil {
			return nil, &ConfigError{Err: ErrNilInstance}
		}

		return decl.instance, nil
	case factoryDecl:
		if decl.factory == nil {
			return nil, &ConfigError{Err: errors.New("factory declaration holds no factory func")}
		}
		inst, err := decl.factory(provider, decl.args...)
		if err != nil {
			return nil, &DependencyError{Filter: "factory", Err: err}
		}
		if inst == nil {
			return nil, &ConfigError{Err: ErrNilInstance}
		}

		return inst, nil
	case constructorDecl:
		return construct(decl.ctor, provider)
	}

	return nil, &ConfigError{Err: errors.Errorf("unknown declaration kind %d", decl.kind)}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// construct builds a filter by calling ctor with parameters resolved from
// the provider, one by one. The constructor must return the filter,
// optionally followed by an error.
func construct(ctor any, provider Provider) (Filter, error) {
	v := reflect.ValueOf(ctor)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, &ConfigError{Err: errors.New("constructor declaration is not a func")}
	}

	t := v.Type()
	name := t.String()
	if t.NumOut() > 0 {
		name = t.Out(0).String()
	}

	if t.IsVariadic() {
		return nil, &ConfigError{Filter: name, Err: errors.New("variadic constructors are not supported")}
	}
	if t.NumOut() == 0 || t.NumOut() > 2 {
		return nil, &ConfigError{Filter: name, Err: errors.New("constructor must return a filter, optionally with an error")}
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		return nil, &ConfigError{Filter: name, Err: errors.New("constructor second return value must be an error")}
	}

	args := make([]reflect.Value, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		dep, err := provider.Resolve(t.In(i))
		if err != nil {
			return nil, &DependencyError{Filter: name, Type: t.In(i), Err: err}
		}
		if dep == nil {
			args[i] = reflect.Zero(t.In(i))
			continue
		}
		args[i] = reflect.ValueOf(dep)
	}

	out := v.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, &DependencyError{Filter: name, Err: out[1].Interface().(error)}
	}
	if out[0].Kind() == reflect.Pointer && out[0].IsNil() {
		return nil, &ConfigError{Filter: name, Err: ErrNilInstance}
	}

	return out[0].Interface(), nil
}

// bind resolves the capability set of an instance into a boundFilter.
func bind(reg registration, inst Filter) (*boundFilter, error) {
	b := &boundFilter{name: filterName(inst), reg: reg}

	var stages []model.StageType

	if f, ok := inst.(AuthorizationFilter); ok {
		b.auth = f
		stages = append(stages, model.StageAuthorization)
	}
	if f, ok := inst.(AroundResourceFilter); ok {
		b.aroundRes = f
		stages = append(stages, model.StageResource)
	} else if f, ok := inst.(ResourceFilter); ok {
		b.resource = f
		stages = append(stages, model.StageResource)
	}
	if f, ok := inst.(AroundActionFilter); ok {
		b.aroundAct = f
		stages = append(stages, model.StageAction)
	} else if f, ok := inst.(ActionFilter); ok {
		b.action = f
		stages = append(stages, model.StageAction)
	}
	if f, ok := inst.(ExceptionFilter); ok {
		b.exception = f
		stages = append(stages, model.StageException)
	}
	if f, ok := inst.(AroundResultFilter); ok {
		b.aroundResult = f
		stages = append(stages, model.StageResult)
	} else if f, ok := inst.(ResultFilter); ok {
		b.result = f
		stages = append(stages, model.StageResult)
	}
	if _, ok := inst.(AlwaysRunResult); ok {
		if b.result == nil && b.aroundResult == nil {
			return nil, &ConfigError{Filter: b.name, Err: errors.New("always-run marker on a filter without a result stage")}
		}
		b.alwaysRun = true
	}

	if len(stages) == 0 {
		return nil, &ConfigError{Filter: b.name, Err: ErrNoCapabilities}
	}
	b.info = reg.info(b.name, stages)

	return b, nil
}

// materialize instantiates and binds every registration, already sorted,
// into the per-stage node lists. Any failure here aborts the pipeline before
// a single stage runs.
func (p *Pipeline) materialize(regs []registration, provider Provider, targetName string) (*plan, error) {
	pl := &plan{filters: make([]*boundFilter, 0, len(regs))}

	for _, reg := range regs {
		inst, err := p.instantiate(reg, provider)
		if err != nil {
			return nil, errors.Wrap(err, "unable to instantiate filter")
		}

		b, err := bind(reg, inst)
		if err != nil {
			return nil, errors.Wrap(err, "unable to bind filter")
		}
		pl.filters = append(pl.filters, b)

		if b.auth != nil {
			pl.auth = append(pl.auth, b)
		}
		if b.resource != nil || b.aroundRes != nil {
			pl.resource = append(pl.resource, b)
		}
		if b.action != nil || b.aroundAct != nil {
			pl.action = append(pl.action, b)
		}
		if b.exception != nil {
			pl.exception = append(pl.exception, b)
		}
		if b.result != nil || b.aroundResult != nil {
			pl.result = append(pl.result, b)
		}

		err = p.prepareFilter(targetName, b.info)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare filter")
		}
	}

	return pl, nil
}
