// Package runtime executes generated workflow programs. Programs are Starlark
// files that load their constructors from catalog modules:
//
//	load("airflow.models.dag", "DAG")
//	load("airflow.operators.bash_operator", "BashOperator")
//
//	flow = DAG(dag_id="flow", start_date=datetime(2020, 5, 20))
//	extract = BashOperator(task_id="extract", bash_command="echo 1", dag=flow)
//
// Constructors check their keyword arguments against the catalog, so a
// program that loads cleanly only uses declared parameters with values of
// the declared types.
package runtime

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/maxkimambo/windmill/internal/catalog"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/graph"
	"github.com/maxkimambo/windmill/internal/logger"
	"github.com/maxkimambo/windmill/internal/params"
)

const sourceKey = "windmill.source"

// Program is a loaded workflow program.
type Program struct {
	Filename string
	Globals  starlark.StringDict
}

// Load executes a program. Any parse, resolve or evaluation error is
// returned as is.
func Load(filename string, src []byte, cat *catalog.Catalog) (*Program, error) {
	modules := modulesOf(cat)
	thread := &starlark.Thread{
		Name: filename,
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			members, ok := modules[module]
			if !ok {
				return nil, fmt.Errorf("unknown module %s", module)
			}
			return members, nil
		},
		Print: func(_ *starlark.Thread, msg string) {
			logger.Op.Debugf("%s: %s", filename, msg)
		},
	}
	thread.SetLocal(sourceKey, newSource(filename, src))

	predeclared := starlark.StringDict{
		"datetime":  starlark.NewBuiltin("datetime", datetimeBuiltin),
		"timedelta": starlark.NewBuiltin("timedelta", timedeltaBuiltin),
	}
	globals, err := starlark.ExecFile(thread, filename, src, predeclared)
	if err != nil {
		return nil, err
	}

	prog := &Program{Filename: filename, Globals: globals}
	for _, wf := range prog.workflows() {
		if err := checkAcyclic(wf); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// Workflow returns the single workflow the program exposes as a global.
func (p *Program) Workflow() (*Workflow, error) {
	wfs := p.workflows()
	switch len(wfs) {
	case 1:
		return wfs[0], nil
	case 0:
		return nil, werrors.NewWorkflowCountError(p.Filename, nil)
	}
	ids := make([]string, len(wfs))
	for i, wf := range wfs {
		ids[i] = wf.ID()
	}
	return nil, werrors.NewWorkflowCountError(p.Filename, ids)
}

// workflows returns the distinct workflows bound to globals, ordered by
// global name.
func (p *Program) workflows() []*Workflow {
	names := p.Globals.Keys()
	sort.Strings(names)
	var out []*Workflow
	seen := make(map[*Workflow]bool)
	for _, name := range names {
		if wf, ok := p.Globals[name].(*Workflow); ok && !seen[wf] {
			seen[wf] = true
			out = append(out, wf)
		}
	}
	return out
}

func checkAcyclic(wf *Workflow) error {
	g := graph.New()
	for _, t := range wf.tasks {
		g.AddNode(t.ID())
		for _, d := range t.downstream {
			g.AddEdge(t.ID(), d.ID())
		}
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("workflow %s: %w", wf.ID(), err)
	}
	return nil
}

// modulesOf groups the catalog constructors by the module that provides them.
func modulesOf(cat *catalog.Catalog) map[string]starlark.StringDict {
	modules := make(map[string]starlark.StringDict)
	add := func(module, name string, b *starlark.Builtin) {
		if modules[module] == nil {
			modules[module] = starlark.StringDict{}
		}
		modules[module][name] = b
	}

	wf := cat.Workflow()
	add(wf.Module, wf.Type, starlark.NewBuiltin(wf.Type, workflowConstructor(wf)))
	for _, desc := range cat.Descriptors() {
		add(desc.Module, desc.Type, starlark.NewBuiltin(desc.Type, taskConstructor(desc)))
	}
	return modules
}

func workflowConstructor(desc *catalog.Descriptor) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: unexpected positional arguments", b.Name())
		}
		attrs, err := bindArguments(thread, desc, kwargs, nil)
		if err != nil {
			return nil, err
		}
		return &Workflow{desc: desc, attrs: attrs, byID: make(map[string]*Task)}, nil
	}
}

func taskConstructor(desc *catalog.Descriptor) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: unexpected positional arguments", b.Name())
		}
		var wf *Workflow
		attrs, err := bindArguments(thread, desc, kwargs, func(v starlark.Value) error {
			w, ok := v.(*Workflow)
			if !ok {
				return fmt.Errorf("%s: dag must be a workflow, got %s", b.Name(), v.Type())
			}
			wf = w
			return nil
		})
		if err != nil {
			return nil, err
		}

		task := &Task{desc: desc, attrs: attrs, workflow: wf}
		if wf == nil {
			return nil, fmt.Errorf("%s: task '%s' is not attached to a workflow; pass dag=", b.Name(), task.ID())
		}
		for _, r := range desc.Requires {
			if _, ok := task.Param(r); ok {
				continue
			}
			if wf.attr(r) != nil {
				continue
			}
			return nil, fmt.Errorf("task '%s' is missing the %s parameter; set it on the task or its workflow", task.ID(), r)
		}
		if err := wf.addTask(task); err != nil {
			return nil, err
		}
		return task, nil
	}
}

// bindArguments checks keyword arguments against the descriptor. The dag
// keyword is handed to onWorkflow; it is rejected when onWorkflow is nil.
func bindArguments(thread *starlark.Thread, desc *catalog.Descriptor, kwargs []starlark.Tuple, onWorkflow func(starlark.Value) error) (attributes, error) {
	src, _ := thread.Local(sourceKey).(*source)
	attrs := newAttributes()
	for _, kv := range kwargs {
		name := string(kv[0].(starlark.String))
		value := kv[1]

		if name == "dag" && onWorkflow != nil {
			if err := onWorkflow(value); err != nil {
				return attrs, err
			}
			continue
		}
		spec, ok := desc.Param(name)
		if !ok {
			return attrs, fmt.Errorf("%s got an unexpected keyword argument '%s'", desc.Type, name)
		}
		if value == starlark.None {
			continue
		}

		t, err := params.ParseType(spec.Type)
		if err != nil {
			return attrs, err
		}
		native, err := toGo(t, value, src)
		if err != nil {
			return attrs, fmt.Errorf("%s: argument '%s': %w", desc.Type, name, err)
		}
		native, err = params.Normalize(t, native)
		if err != nil {
			return attrs, fmt.Errorf("%s: argument '%s': %w", desc.Type, name, err)
		}
		if native == nil {
			continue
		}

		key := name
		if desc.IsPrivate(name) {
			key = "_" + name
		}
		attrs.set(key, value, native)
	}

	for _, p := range desc.Parameters {
		if !p.Required {
			continue
		}
		key := p.ID
		if desc.IsPrivate(p.ID) {
			key = "_" + p.ID
		}
		if _, ok := attrs.native.Get(key); !ok {
			return attrs, fmt.Errorf("%s: missing required argument '%s'", desc.Type, p.ID)
		}
	}
	return attrs, nil
}
