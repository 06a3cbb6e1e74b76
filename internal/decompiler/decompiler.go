// Package decompiler rebuilds an editor document from a loaded workflow
// program. Layout is recomputed; node ids are task ids and link ids are
// fresh.
package decompiler

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/document"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/graph"
	"github.com/maxkimambo/windmill/internal/logger"
	"github.com/maxkimambo/windmill/internal/params"
	"github.com/maxkimambo/windmill/internal/runtime"
)

// Decompiler converts programs back to documents. It is safe for concurrent
// use.
type Decompiler struct {
	catalog *catalog.Catalog
	layout  graph.LayoutOptions
}

// New returns a decompiler placing nodes with the given layout options.
func New(cat *catalog.Catalog, layout graph.LayoutOptions) *Decompiler {
	return &Decompiler{catalog: cat, layout: layout}
}

// DecompileSource loads program text and decompiles it.
func (d *Decompiler) DecompileSource(filename string, src []byte) (*document.Document, error) {
	prog, err := runtime.Load(filename, src, d.catalog)
	if err != nil {
		if werrors.IsValidation(err) {
			return nil, err
		}
		return nil, werrors.NewInvalidProgramError(filename, err)
	}
	return d.Decompile(prog)
}

// Decompile converts the single workflow of a loaded program.
func (d *Decompiler) Decompile(prog *runtime.Program) (*document.Document, error) {
	wf, err := prog.Workflow()
	if err != nil {
		return nil, err
	}

	base := filepath.Base(prog.Filename)
	doc := document.New(strings.TrimSuffix(base, filepath.Ext(base)))
	doc.DAG.Name = wf.ID()

	desc := d.catalog.Workflow()
	doc.DAG.Parameters = specsOf(desc, wf.Param, "workflow "+wf.ID())

	g := graph.New()
	for _, t := range wf.Tasks() {
		g.AddNode(t.ID())
	}
	for _, t := range wf.Tasks() {
		for _, down := range t.Downstream() {
			g.AddEdge(t.ID(), down.ID())
		}
	}
	points := graph.Layout(g, d.layout)

	for _, t := range wf.Tasks() {
		td, err := d.catalog.Lookup(t.TypeName())
		if err != nil {
			return nil, err
		}
		node := document.NewNode(t.ID(), t.TypeName(), t.Module())
		node.Position = document.Position{X: points[t.ID()].X, Y: points[t.ID()].Y}
		node.Properties.Parameters = specsOf(td, t.Param, "task "+t.ID())
		doc.AddNode(node)
	}

	for _, t := range wf.Tasks() {
		for _, down := range t.Downstream() {
			doc.AddLink(uuid.NewString(), t.ID(), down.ID())
		}
	}

	logger.Op.Debugf("Decompiled %s: %d nodes, %d links", prog.Filename, doc.Nodes.Len(), doc.Links.Len())
	return doc, nil
}

// specsOf lists every parameter the descriptor declares. Values are set only
// where the object carries one that differs from the default. An attribute
// missing under its own id is looked up under its underscore alias.
func specsOf(desc *catalog.Descriptor, get func(string) (any, bool), owner string) []params.Spec {
	out := make([]params.Spec, 0, len(desc.Parameters))
	for _, spec := range desc.Parameters {
		spec.Value = nil
		v, ok := get(spec.ID)
		if !ok {
			v, ok = get("_" + spec.ID)
		}
		if !ok {
			logger.Op.Debugf("%s has no attribute %s, skipping", owner, spec.ID)
			out = append(out, spec)
			continue
		}

		p, err := params.FromSpec(spec)
		if err != nil {
			logger.Op.Debugf("%s: %v", owner, err)
			out = append(out, spec)
			continue
		}
		p.Value = v
		if !p.IsDefault() {
			spec.Value = params.FormatValue(p.Type, v)
		}
		out = append(out, spec)
	}
	return out
}
