// Package catalog is the static registry of task types a workflow may use:
// for each type its module, its identifier parameter and the typed
// parameters it accepts.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"

	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/params"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Descriptor describes the workflow object or one task type.
type Descriptor struct {
	Type        string        `yaml:"type" json:"type" validate:"required"`
	Module      string        `yaml:"module" json:"module" validate:"required"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Identifier  string        `yaml:"identifier,omitempty" json:"identifier"`
	Abstract    bool          `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Inherits    string        `yaml:"inherits,omitempty" json:"inherits,omitempty"`
	Requires    []string      `yaml:"requires,omitempty" json:"requires,omitempty"`
	Private     []string      `yaml:"private,omitempty" json:"private,omitempty"`
	Parameters  []params.Spec `yaml:"parameters" json:"parameters" validate:"dive"`
}

// Param returns the declared parameter with the given id.
func (d *Descriptor) Param(id string) (params.Spec, bool) {
	for _, p := range d.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return params.Spec{}, false
}

// IsPrivate reports whether a loaded object keeps the parameter under its
// underscore alias.
func (d *Descriptor) IsPrivate(id string) bool {
	return contains(d.Private, id)
}

// ParamIDs returns parameter ids in declaration order.
func (d *Descriptor) ParamIDs() []string {
	ids := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		ids[i] = p.ID
	}
	return ids
}

type catalogFile struct {
	Workflow *Descriptor   `yaml:"workflow" validate:"required"`
	Types    []*Descriptor `yaml:"types" validate:"dive"`
}

// Catalog is an immutable registry. Accessors hand out deep copies.
type Catalog struct {
	workflow *Descriptor
	types    map[string]*Descriptor
	order    []string
}

var (
	defaultCatalog *Catalog
	defaultErr     error
	defaultOnce    sync.Once
)

// Default returns the built-in catalog, building it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(defaultCatalogYAML))
	})
	return defaultCatalog, defaultErr
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := params.Validator().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if err := checkDescriptor(file.Workflow); err != nil {
		return nil, err
	}

	c := &Catalog{
		workflow: file.Workflow,
		types:    make(map[string]*Descriptor, len(file.Types)),
	}
	raw := make(map[string]*Descriptor, len(file.Types))
	for _, d := range file.Types {
		if _, dup := raw[d.Type]; dup {
			return nil, fmt.Errorf("invalid catalog: type %s declared twice", d.Type)
		}
		raw[d.Type] = d
	}
	for _, d := range file.Types {
		merged, err := flatten(d, raw, nil)
		if err != nil {
			return nil, err
		}
		if err := checkDescriptor(merged); err != nil {
			return nil, err
		}
		c.types[d.Type] = merged
		if !merged.Abstract {
			c.order = append(c.order, d.Type)
		}
	}
	return c, nil
}

// flatten appends the parameters of every ancestor, marking them with the
// type they came from. Parameters redeclared by a subtype win.
func flatten(d *Descriptor, raw map[string]*Descriptor, seen []string) (*Descriptor, error) {
	for _, s := range seen {
		if s == d.Type {
			return nil, fmt.Errorf("invalid catalog: inheritance cycle through %s", d.Type)
		}
	}
	out := deepcopy.Copy(d).(*Descriptor)
	if d.Inherits == "" {
		return out, nil
	}

	base, ok := raw[d.Inherits]
	if !ok {
		return nil, fmt.Errorf("invalid catalog: %s inherits unknown type %s", d.Type, d.Inherits)
	}
	parent, err := flatten(base, raw, append(seen, d.Type))
	if err != nil {
		return nil, err
	}
	if out.Identifier == "" {
		out.Identifier = parent.Identifier
	}
	for _, p := range parent.Parameters {
		if _, declared := out.Param(p.ID); declared {
			continue
		}
		if p.InheritedFrom == "" {
			p.InheritedFrom = parent.Type
		}
		out.Parameters = append(out.Parameters, p)
	}
	for _, r := range parent.Requires {
		if !contains(out.Requires, r) {
			out.Requires = append(out.Requires, r)
		}
	}
	for _, p := range parent.Private {
		if !contains(out.Private, p) {
			out.Private = append(out.Private, p)
		}
	}
	return out, nil
}

func checkDescriptor(d *Descriptor) error {
	seen := make(map[string]bool, len(d.Parameters))
	for _, spec := range d.Parameters {
		if seen[spec.ID] {
			return fmt.Errorf("invalid catalog: %s declares %s twice", d.Type, spec.ID)
		}
		seen[spec.ID] = true
		if _, err := params.FromSpec(spec); err != nil {
			return fmt.Errorf("invalid catalog: %s: %w", d.Type, err)
		}
	}
	if id, ok := d.Param(d.Identifier); !ok || !id.Required {
		return fmt.Errorf("invalid catalog: %s identifier %q must be a required parameter", d.Type, d.Identifier)
	}
	for _, r := range d.Requires {
		if !seen[r] {
			return fmt.Errorf("invalid catalog: %s requires undeclared parameter %s", d.Type, r)
		}
	}
	for _, p := range d.Private {
		if !seen[p] {
			return fmt.Errorf("invalid catalog: %s hides undeclared parameter %s", d.Type, p)
		}
	}
	return nil
}

// Workflow returns the workflow descriptor.
func (c *Catalog) Workflow() *Descriptor {
	return deepcopy.Copy(c.workflow).(*Descriptor)
}

// Lookup returns the descriptor of a concrete task type.
func (c *Catalog) Lookup(typeName string) (*Descriptor, error) {
	d, ok := c.types[typeName]
	if !ok || d.Abstract {
		return nil, werrors.NewUnknownTypeError(typeName)
	}
	return deepcopy.Copy(d).(*Descriptor), nil
}

// Types returns the concrete task type names in declaration order.
func (c *Catalog) Types() []string {
	return append([]string(nil), c.order...)
}

// Descriptors returns copies of every concrete task type.
func (c *Catalog) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, deepcopy.Copy(c.types[t]).(*Descriptor))
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
