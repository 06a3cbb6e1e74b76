// Package workflow is the model shared by the compiler and the decompiler: a
// workflow with its resolved parameters, its tasks with collision-free
// program identifiers, and the validated dependency graph between them.
package workflow

import (
	"fmt"

	"github.com/iancoleman/strcase"

	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/document"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/graph"
	"github.com/maxkimambo/windmill/internal/logger"
	"github.com/maxkimambo/windmill/internal/params"
)

// Task is one unit of work.
type Task struct {
	NodeID     string
	TypeName   string
	Module     string
	Identifier string // id of the parameter holding the human label
	Params     *params.Set
	Name       string // program identifier, set by ResolveCollisions
}

// RawID returns the human label of the task.
func (t *Task) RawID() string {
	if s, ok := t.Params.Value(t.Identifier).(string); ok {
		return s
	}
	return ""
}

// CallableName names the function generated for a callable parameter.
func (t *Task) CallableName(paramID string) string {
	return fmt.Sprintf("%s_%s_callable", t.Name, strcase.ToSnake(paramID))
}

// Callables returns the callable-typed parameters in declaration order.
func (t *Task) Callables() []*params.Parameter {
	var out []*params.Parameter
	for _, p := range t.Params.All() {
		if p.Type == params.TypeCallable {
			out = append(out, p)
		}
	}
	return out
}

// Links is the dependency graph over program identifiers together with its
// path decomposition.
type Links struct {
	Graph *graph.Graph
	paths [][]string
}

// NewLinks decomposes g once; g must not change afterwards.
func NewLinks(g *graph.Graph) *Links {
	paths := graph.Decompose(g)
	logger.Op.Debugf("Decomposed %d links into %d chains", g.EdgeCount(), len(paths))
	return &Links{Graph: g, paths: paths}
}

// Paths returns the full decomposition.
func (l *Links) Paths() [][]string {
	return l.paths
}

// Chains returns the paths that express at least one dependency.
func (l *Links) Chains() [][]string {
	var out [][]string
	for _, p := range l.paths {
		if len(p) > 1 {
			out = append(out, p)
		}
	}
	return out
}

// Workflow is the whole task graph.
type Workflow struct {
	Filename   string
	TypeName   string
	Module     string
	Identifier string
	Params     *params.Set
	Tasks      []*Task
	Links      *Links
}

// RawID returns the human label of the workflow.
func (w *Workflow) RawID() string {
	if s, ok := w.Params.Value(w.Identifier).(string); ok {
		return s
	}
	return ""
}

// Name is the program identifier of the workflow object.
func (w *Workflow) Name() string {
	return WorkflowIdentifier(w.RawID())
}

// Task returns the task with the given program identifier.
func (w *Workflow) Task(name string) (*Task, bool) {
	for _, t := range w.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// FromDocument validates a document against the catalog and builds the
// workflow. Parameters are resolved before identifiers, identifiers before
// links, so the first problem found is reported.
func FromDocument(doc *document.Document, cat *catalog.Catalog) (*Workflow, error) {
	desc := cat.Workflow()
	wfParams, err := resolveParams(doc.DAG.Parameters, desc, "workflow")
	if err != nil {
		return nil, err
	}
	wf := &Workflow{
		Filename:   doc.Filename,
		TypeName:   desc.Type,
		Module:     desc.Module,
		Identifier: desc.Identifier,
		Params:     wfParams,
	}

	for _, node := range doc.NodeList() {
		task, err := taskFromNode(node, cat)
		if err != nil {
			return nil, err
		}
		wf.Tasks = append(wf.Tasks, task)
	}

	if err := ResolveCollisions(wf.Name(), wf.Tasks); err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(wf.Tasks))
	for _, t := range wf.Tasks {
		mapping[t.NodeID] = t.Name
	}
	g, err := graph.BuildFromLinks(doc.LinkEnds(), mapping)
	if err != nil {
		return nil, err
	}
	for _, t := range wf.Tasks {
		g.AddNode(t.Name)
	}
	wf.Links = NewLinks(g)
	return wf, nil
}

func taskFromNode(node *document.Node, cat *catalog.Catalog) (*Task, error) {
	desc, err := cat.Lookup(node.Type)
	if err != nil {
		return nil, err
	}
	set, err := resolveParams(node.Properties.Parameters, desc, "node "+node.ID)
	if err != nil {
		return nil, err
	}
	module := node.Properties.Module
	if module == "" {
		module = desc.Module
	}
	return &Task{
		NodeID:     node.ID,
		TypeName:   desc.Type,
		Module:     module,
		Identifier: desc.Identifier,
		Params:     set,
	}, nil
}

// resolveParams applies the catalog's required flags to the document's
// parameters before resolving them, so a document cannot drop a requirement
// by omitting the flag.
func resolveParams(specs []params.Spec, desc *catalog.Descriptor, owner string) (*params.Set, error) {
	merged := make([]params.Spec, len(specs))
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if decl, ok := desc.Param(s.ID); ok && decl.Required {
			s.Required = true
		}
		merged[i] = s
		seen[s.ID] = true
	}
	for _, decl := range desc.Parameters {
		if decl.Required && !seen[decl.ID] {
			return nil, werrors.NewMissingParameterError(decl.ID, owner)
		}
	}

	set, err := params.Resolve(merged)
	if err != nil {
		if werrors.HasCode(err, werrors.CodeMissingParameter) {
			if ve, ok := werrors.AsValidation(err); ok {
				return nil, werrors.NewMissingParameterError(fmt.Sprint(ve.Context["parameter"]), owner)
			}
		}
		return nil, err
	}
	return set, nil
}
