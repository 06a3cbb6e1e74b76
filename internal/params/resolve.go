package params

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	werrors "github.com/maxkimambo/windmill/internal/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator with the "paramtype" rule
// registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("paramtype", func(fl validator.FieldLevel) bool {
			_, err := ParseType(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Set is an ordered id -> parameter mapping; iteration follows declaration order.
type Set struct {
	m *orderedmap.OrderedMap[string, *Parameter]
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{m: orderedmap.New[string, *Parameter]()}
}

// Put adds or replaces a parameter, keeping its original position on replace.
func (s *Set) Put(p *Parameter) {
	s.m.Set(p.ID, p)
}

// Get returns the parameter with the given id.
func (s *Set) Get(id string) (*Parameter, bool) {
	return s.m.Get(id)
}

// Value returns the value of a parameter, nil when absent.
func (s *Set) Value(id string) any {
	if p, ok := s.m.Get(id); ok {
		return p.Value
	}
	return nil
}

// Len returns the number of parameters.
func (s *Set) Len() int {
	return s.m.Len()
}

// IDs returns parameter ids in declaration order.
func (s *Set) IDs() []string {
	ids := make([]string, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// All returns the parameters in declaration order.
func (s *Set) All() []*Parameter {
	out := make([]*Parameter, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// FromSpec validates and normalises a single wire parameter.
func FromSpec(spec Spec) (*Parameter, error) {
	if err := Validator().Struct(spec); err != nil {
		return nil, werrors.NewValidationError(werrors.CodeInvalidParameter,
			fmt.Sprintf("invalid parameter '%s': %v", spec.ID, err),
			"Parameter resolution").WithOriginalError(err)
	}

	t, _ := ParseType(spec.Type)
	value, err := Normalize(t, spec.Value)
	if err != nil {
		return nil, werrors.NewInvalidParameterError(spec.ID, string(t), err)
	}
	def, err := Normalize(t, spec.Default)
	if err != nil {
		return nil, werrors.NewInvalidParameterError(spec.ID, string(t), fmt.Errorf("default: %w", err))
	}

	return &Parameter{
		ID:            spec.ID,
		Type:          t,
		Value:         value,
		Default:       def,
		Description:   spec.Description,
		Required:      spec.Required,
		InheritedFrom: spec.InheritedFrom,
	}, nil
}

// Resolve validates a raw parameter list and returns only the parameters
// whose value is present and differs from the default; the others are
// implied. A required parameter without a value is a validation error.
func Resolve(specs []Spec) (*Set, error) {
	set := NewSet()
	for _, spec := range specs {
		p, err := FromSpec(spec)
		if err != nil {
			return nil, err
		}
		if p.Required && !p.HasValue() {
			return nil, werrors.NewMissingParameterError(p.ID, "")
		}
		if p.IsDefault() {
			continue
		}
		set.Put(p)
	}
	return set, nil
}
