// Package params models typed task and workflow parameters: the wire form
// exchanged with the editor, normalisation to Go values, default handling and
// rendering to program literals.
package params

import (
	"fmt"
	"strings"
)

// Type is the declared type of a parameter.
type Type string

const (
	TypeString   Type = "str"
	TypeDict     Type = "dict"
	TypeList     Type = "list"
	TypeBool     Type = "bool"
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeDuration Type = "duration"
	TypeDatetime Type = "datetime"
	TypeCallable Type = "callable"
)

var typeAliases = map[string]Type{
	"string":             TypeString,
	"mapping":            TypeDict,
	"datetime.timedelta": TypeDuration,
	"timedelta":          TypeDuration,
	"datetime.datetime":  TypeDatetime,
	"python_callable":    TypeCallable,
	"python callable":    TypeCallable,
	"lambda":             TypeCallable,
	"function":           TypeCallable,
}

// ParseType resolves a declared type name, accepting the editor's aliases.
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	switch t := Type(name); t {
	case TypeString, TypeDict, TypeList, TypeBool, TypeInt, TypeFloat,
		TypeDuration, TypeDatetime, TypeCallable:
		return t, nil
	}
	if t, ok := typeAliases[strings.ToLower(name)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown parameter type %q", name)
}

// Spec is the wire form of a parameter as found in documents and catalogs.
type Spec struct {
	ID            string `json:"id" yaml:"id" validate:"required"`
	Type          string `json:"type" yaml:"type" validate:"required,paramtype"`
	Value         any    `json:"value,omitempty" yaml:"value,omitempty"`
	Default       any    `json:"default,omitempty" yaml:"default,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Required      bool   `json:"required,omitempty" yaml:"required,omitempty"`
	InheritedFrom string `json:"inheritedFrom,omitempty" yaml:"inheritedFrom,omitempty"`
}

// Callable holds the body of a function-valued parameter. The compiler emits
// it as a named function instead of a literal.
type Callable struct {
	Body string
}

// Parameter is a Spec whose value and default are normalised to Go values:
// string, map[string]any, []any, bool, int64, float64, time.Duration,
// time.Time or Callable.
type Parameter struct {
	ID            string
	Type          Type
	Value         any
	Default       any
	Description   string
	Required      bool
	InheritedFrom string
}

// HasValue reports whether a value was supplied.
func (p *Parameter) HasValue() bool {
	return p.Value != nil
}

// IsDefault reports whether the parameter carries no value or its default.
func (p *Parameter) IsDefault() bool {
	return !p.HasValue() || Equal(p.Value, p.Default)
}

// Spec converts the parameter back to its wire form.
func (p *Parameter) Spec() Spec {
	return Spec{
		ID:            p.ID,
		Type:          string(p.Type),
		Value:         FormatValue(p.Type, p.Value),
		Default:       FormatValue(p.Type, p.Default),
		Description:   p.Description,
		Required:      p.Required,
		InheritedFrom: p.InheritedFrom,
	}
}
