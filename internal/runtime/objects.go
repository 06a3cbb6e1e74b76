package runtime

import (
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/maxkimambo/windmill/internal/catalog"
)

// attributes holds the keyword arguments an object was built with, both as
// Starlark values for attribute access and as Go values for inspection.
// Private parameters are stored under their underscore alias.
type attributes struct {
	values *orderedmap.OrderedMap[string, starlark.Value]
	native *orderedmap.OrderedMap[string, any]
}

func newAttributes() attributes {
	return attributes{
		values: orderedmap.New[string, starlark.Value](),
		native: orderedmap.New[string, any](),
	}
}

func (a attributes) set(key string, v starlark.Value, native any) {
	a.values.Set(key, v)
	a.native.Set(key, native)
}

func (a attributes) keys() []string {
	out := make([]string, 0, a.native.Len())
	for pair := a.native.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Workflow is the object built by the workflow constructor.
type Workflow struct {
	desc   *catalog.Descriptor
	attrs  attributes
	tasks  []*Task
	byID   map[string]*Task
	frozen bool
}

var (
	_ starlark.Value    = (*Workflow)(nil)
	_ starlark.HasAttrs = (*Workflow)(nil)
)

// ID returns the workflow identifier.
func (w *Workflow) ID() string {
	s, _ := w.attr(w.desc.Identifier).(string)
	return s
}

func (w *Workflow) attr(id string) any {
	key := id
	if w.desc.IsPrivate(id) {
		key = "_" + id
	}
	v, _ := w.attrs.native.Get(key)
	return v
}

// TypeName returns the constructor name.
func (w *Workflow) TypeName() string { return w.desc.Type }

// Module returns the module the constructor was loaded from.
func (w *Workflow) Module() string { return w.desc.Module }

// Param returns an attribute by its stored name. Private parameters are only
// found under their underscore alias.
func (w *Workflow) Param(name string) (any, bool) {
	return w.attrs.native.Get(name)
}

// ParamNames returns stored attribute names in argument order.
func (w *Workflow) ParamNames() []string { return w.attrs.keys() }

// Tasks returns the tasks in declaration order.
func (w *Workflow) Tasks() []*Task {
	return append([]*Task(nil), w.tasks...)
}

func (w *Workflow) String() string        { return fmt.Sprintf("<%s: %s>", w.desc.Type, w.ID()) }
func (w *Workflow) Type() string          { return w.desc.Type }
func (w *Workflow) Freeze()               { w.frozen = true }
func (w *Workflow) Truth() starlark.Bool  { return true }
func (w *Workflow) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: %s", w.desc.Type) }

func (w *Workflow) Attr(name string) (starlark.Value, error) {
	if name == "tasks" {
		elems := make([]starlark.Value, len(w.tasks))
		for i, t := range w.tasks {
			elems[i] = t
		}
		return starlark.NewList(elems), nil
	}
	if v, ok := w.attrs.values.Get(name); ok {
		return v, nil
	}
	if _, declared := w.desc.Param(name); declared && !w.desc.IsPrivate(name) {
		return starlark.None, nil
	}
	return nil, nil
}

func (w *Workflow) AttrNames() []string {
	names := append(w.attrs.keys(), "tasks")
	sort.Strings(names)
	return names
}

func (w *Workflow) addTask(t *Task) error {
	if w.frozen {
		return fmt.Errorf("cannot add task %s to frozen workflow %s", t.ID(), w.ID())
	}
	if _, dup := w.byID[t.ID()]; dup {
		return fmt.Errorf("task id '%s' has already been added to the workflow '%s'", t.ID(), w.ID())
	}
	w.byID[t.ID()] = t
	w.tasks = append(w.tasks, t)
	return nil
}

// Task is the object built by a task type constructor.
type Task struct {
	desc       *catalog.Descriptor
	attrs      attributes
	workflow   *Workflow
	downstream []*Task
	upstream   []*Task
}

var (
	_ starlark.Value     = (*Task)(nil)
	_ starlark.HasAttrs  = (*Task)(nil)
	_ starlark.HasBinary = (*Task)(nil)
)

// ID returns the task identifier.
func (t *Task) ID() string {
	v, _ := t.attrs.native.Get(t.desc.Identifier)
	s, _ := v.(string)
	return s
}

func (t *Task) TypeName() string { return t.desc.Type }

func (t *Task) Module() string { return t.desc.Module }

// Param returns an attribute by its stored name.
func (t *Task) Param(name string) (any, bool) {
	return t.attrs.native.Get(name)
}

// ParamNames returns stored attribute names in argument order.
func (t *Task) ParamNames() []string { return t.attrs.keys() }

func (t *Task) Workflow() *Workflow { return t.workflow }

// Downstream returns the tasks that run after this one, in the order the
// dependencies were declared.
func (t *Task) Downstream() []*Task { return append([]*Task(nil), t.downstream...) }

func (t *Task) Upstream() []*Task { return append([]*Task(nil), t.upstream...) }

func (t *Task) String() string        { return fmt.Sprintf("<Task(%s): %s>", t.desc.Type, t.ID()) }
func (t *Task) Type() string          { return t.desc.Type }
func (t *Task) Freeze()               {}
func (t *Task) Truth() starlark.Bool  { return true }
func (t *Task) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: %s", t.desc.Type) }

func (t *Task) Attr(name string) (starlark.Value, error) {
	switch name {
	case "dag":
		return t.workflow, nil
	case "downstream_task_ids", "upstream_task_ids":
		related := t.downstream
		if name == "upstream_task_ids" {
			related = t.upstream
		}
		elems := make([]starlark.Value, len(related))
		for i, r := range related {
			elems[i] = starlark.String(r.ID())
		}
		return starlark.NewList(elems), nil
	}
	if v, ok := t.attrs.values.Get(name); ok {
		return v, nil
	}
	if _, declared := t.desc.Param(name); declared {
		return starlark.None, nil
	}
	return nil, nil
}

func (t *Task) AttrNames() []string {
	names := append(t.attrs.keys(), "dag", "downstream_task_ids", "upstream_task_ids")
	sort.Strings(names)
	return names
}

// Binary implements a >> b (b runs after a) and a << b (a runs after b). Either
// side may be a list of tasks; the result is the right operand so chains read
// left to right.
func (t *Task) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if op != syntax.GTGT && op != syntax.LTLT {
		return nil, nil
	}
	var left, right starlark.Value = t, y
	if side == starlark.Right {
		left, right = y, t
	}
	lhs, err := tasksOf(left)
	if err != nil {
		return nil, err
	}
	rhs, err := tasksOf(right)
	if err != nil {
		return nil, err
	}

	for _, l := range lhs {
		for _, r := range rhs {
			up, down := l, r
			if op == syntax.LTLT {
				up, down = r, l
			}
			if err := up.setDownstream(down); err != nil {
				return nil, err
			}
		}
	}
	return right, nil
}

func (t *Task) setDownstream(other *Task) error {
	if other == t {
		return fmt.Errorf("task '%s' cannot depend on itself", t.ID())
	}
	if other.workflow != t.workflow {
		return fmt.Errorf("tasks '%s' and '%s' belong to different workflows", t.ID(), other.ID())
	}
	if t.workflow.frozen {
		return fmt.Errorf("cannot change dependencies of frozen workflow %s", t.workflow.ID())
	}
	for _, d := range t.downstream {
		if d == other {
			return nil
		}
	}
	t.downstream = append(t.downstream, other)
	other.upstream = append(other.upstream, t)
	return nil
}

func tasksOf(v starlark.Value) ([]*Task, error) {
	switch x := v.(type) {
	case *Task:
		return []*Task{x}, nil
	case *starlark.List, starlark.Tuple:
		seq := x.(starlark.Indexable)
		out := make([]*Task, 0, seq.Len())
		for i := 0; i < seq.Len(); i++ {
			t, ok := seq.Index(i).(*Task)
			if !ok {
				return nil, fmt.Errorf("dependencies can only be set between tasks, got %s", seq.Index(i).Type())
			}
			out = append(out, t)
		}
		return out, nil
	}
	return nil, fmt.Errorf("dependencies can only be set between tasks, got %s", v.Type())
}
