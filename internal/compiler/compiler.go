// Package compiler turns a workflow document into program text and proves the
// text is valid by loading it.
package compiler

import (
	"path/filepath"
	"strings"

	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/document"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/logger"
	"github.com/maxkimambo/windmill/internal/params"
	"github.com/maxkimambo/windmill/internal/runtime"
	"github.com/maxkimambo/windmill/internal/workflow"
)

// DefaultLineWidth is the width past which calls are broken over lines.
const DefaultLineWidth = 88

// Options tune rendering.
type Options struct {
	LineWidth int
	// SkipLoad returns the rendered text without loading it.
	SkipLoad bool
}

// Compiler renders workflows. It holds no per-call state and is safe for
// concurrent use.
type Compiler struct {
	catalog *catalog.Catalog
	opts    Options
}

// New returns a compiler for the given catalog.
func New(cat *catalog.Catalog, opts Options) *Compiler {
	if opts.LineWidth <= 0 {
		opts.LineWidth = DefaultLineWidth
	}
	return &Compiler{catalog: cat, opts: opts}
}

// Compile validates a document, renders it and load-checks the result.
func (c *Compiler) Compile(doc *document.Document) (string, error) {
	wf, err := workflow.FromDocument(doc, c.catalog)
	if err != nil {
		return "", err
	}
	return c.CompileWorkflow(wf)
}

// CompileWorkflow renders an already validated workflow and load-checks the
// result.
func (c *Compiler) CompileWorkflow(wf *workflow.Workflow) (string, error) {
	src, err := c.render(wf)
	if err != nil {
		return "", err
	}
	if c.opts.SkipLoad {
		return src, nil
	}

	name := ProgramName(wf)
	if _, err := runtime.Load(name, []byte(src), c.catalog); err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"program": name,
			"error":   err.Error(),
		}).Debug("Rendered program failed to load")
		return "", werrors.NewLoadError(err)
	}
	logger.Op.Debugf("Compiled %s: %d tasks, %d chains", name, len(wf.Tasks), len(wf.Links.Chains()))
	return src, nil
}

// ProgramName returns the file name a compiled workflow is written to: the
// document name with a .star extension, or the workflow identifier.
func ProgramName(wf *workflow.Workflow) string {
	base := filepath.Base(wf.Filename)
	if wf.Filename == "" || base == "." {
		return wf.Name() + ".star"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".star"
}

func (c *Compiler) render(wf *workflow.Workflow) (string, error) {
	b := newCodeBuilder(c.opts.LineWidth)

	source := wf.Filename
	if source == "" {
		source = "an unnamed document"
	}
	b.comment("Workflow " + wf.RawID() + " generated by windmill from " + filepath.Base(source) + ".\n" +
		"Edit the document and compile again; changes made here are lost.")

	for _, l := range loadsOf(wf) {
		b.load(l.module, l.names)
	}
	b.blank()

	wfArgs, err := kwargsOf(wf.Params, nil)
	if err != nil {
		return "", werrors.NewRenderError("workflow", err)
	}
	b.assignCall(wf.Name(), wf.TypeName, wfArgs)
	b.blank()

	for _, t := range wf.Tasks {
		for _, p := range t.Callables() {
			fn, _ := p.Value.(params.Callable)
			b.def(t.CallableName(p.ID), fn.Body)
			b.blank()
		}
	}

	for _, t := range wf.Tasks {
		args, err := kwargsOf(t.Params, t)
		if err != nil {
			return "", werrors.NewRenderError(t.NodeID, err)
		}
		args = append(args, kwarg{name: "dag", value: wf.Name()})
		b.assignCall(t.Name, t.TypeName, args)
	}

	chains := wf.Links.Chains()
	if len(chains) > 0 {
		b.blank()
	}
	for _, chain := range chains {
		b.chain(chain)
	}
	return b.String(), nil
}

type moduleLoad struct {
	module string
	names  []string
}

// loadsOf groups the constructors a workflow uses by module, both in order of
// first use.
func loadsOf(wf *workflow.Workflow) []moduleLoad {
	var out []moduleLoad
	index := make(map[string]int)
	add := func(module, name string) {
		i, ok := index[module]
		if !ok {
			index[module] = len(out)
			out = append(out, moduleLoad{module: module, names: []string{name}})
			return
		}
		for _, n := range out[i].names {
			if n == name {
				return
			}
		}
		out[i].names = append(out[i].names, name)
	}

	add(wf.Module, wf.TypeName)
	for _, t := range wf.Tasks {
		add(t.Module, t.TypeName)
	}
	return out
}

// kwargsOf renders parameters as keyword arguments. Callables reference the
// function generated for the task.
func kwargsOf(set *params.Set, task *workflow.Task) ([]kwarg, error) {
	out := make([]kwarg, 0, set.Len()+1)
	for _, p := range set.All() {
		if p.Type == params.TypeCallable && task != nil {
			out = append(out, kwarg{name: p.ID, value: task.CallableName(p.ID)})
			continue
		}
		lit, err := params.Render(p)
		if err != nil {
			return nil, err
		}
		out = append(out, kwarg{name: p.ID, value: lit})
	}
	return out, nil
}
