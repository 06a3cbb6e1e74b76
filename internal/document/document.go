// Package document reads and writes the editor's workflow document: the
// workflow parameters, the nodes placed on the canvas and the links drawn
// between their ports. Node and link maps keep the key order of the file.
package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/graph"
	"github.com/maxkimambo/windmill/internal/params"
)

// Port types. The editor historically used top/bottom for in/out.
const (
	PortIn     = "in"
	PortOut    = "out"
	portTop    = "top"
	portBottom = "bottom"
)

// Document is one workflow as saved by the editor.
type Document struct {
	Filename string                                 `json:"filename"`
	DAG      Workflow                               `json:"dag"`
	Nodes    *orderedmap.OrderedMap[string, *Node] `json:"nodes"`
	Links    *orderedmap.OrderedMap[string, *Link] `json:"links"`
}

// Workflow holds the workflow-level parameters.
type Workflow struct {
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Parameters  []params.Spec `json:"parameters"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Port struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Node is one task on the canvas.
type Node struct {
	ID         string                                 `json:"id"`
	Type       string                                 `json:"type"`
	Position   Position                               `json:"position"`
	Ports      *orderedmap.OrderedMap[string, *Port] `json:"ports"`
	Properties Properties                             `json:"properties"`
}

type Properties struct {
	Name        string        `json:"name,omitempty"`
	Module      string        `json:"module"`
	Description string        `json:"description,omitempty"`
	Parameters  []params.Spec `json:"parameters"`
}

// Endpoint names one side of a link.
type Endpoint struct {
	NodeID string `json:"nodeId"`
	PortID string `json:"portId"`
}

// Link connects the ports of two nodes.
type Link struct {
	ID   string   `json:"id"`
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`
}

// New returns an empty document.
func New(filename string) *Document {
	return &Document{
		Filename: filename,
		DAG:      Workflow{Parameters: []params.Spec{}},
		Nodes:    orderedmap.New[string, *Node](),
		Links:    orderedmap.New[string, *Link](),
	}
}

// NewNode returns a node with one input and one output port.
func NewNode(id, typeName, module string) *Node {
	ports := orderedmap.New[string, *Port]()
	ports.Set(PortIn, &Port{ID: PortIn, Type: PortIn})
	ports.Set(PortOut, &Port{ID: PortOut, Type: PortOut})
	return &Node{
		ID:         id,
		Type:       typeName,
		Ports:      ports,
		Properties: Properties{Module: module, Parameters: []params.Spec{}},
	}
}

// AddNode appends a node keyed by its id.
func (d *Document) AddNode(n *Node) {
	d.Nodes.Set(n.ID, n)
}

// AddLink appends a link from the output port of one node to the input port
// of another.
func (d *Document) AddLink(id, from, to string) {
	d.Links.Set(id, &Link{
		ID:   id,
		From: Endpoint{NodeID: from, PortID: PortOut},
		To:   Endpoint{NodeID: to, PortID: PortIn},
	})
}

// NodeList returns the nodes in document order.
func (d *Document) NodeList() []*Node {
	out := make([]*Node, 0, d.Nodes.Len())
	for pair := d.Nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// LinkList returns the links in document order.
func (d *Document) LinkList() []*Link {
	out := make([]*Link, 0, d.Links.Len())
	for pair := d.Links.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// LinkEnds returns every link with its direction resolved from the port
// types: a link drawn from an input port is reversed.
func (d *Document) LinkEnds() []graph.LinkEnds {
	out := make([]graph.LinkEnds, 0, d.Links.Len())
	for _, l := range d.LinkList() {
		out = append(out, graph.LinkEnds{
			FromNode: l.From.NodeID,
			ToNode:   l.To.NodeID,
			Reversed: d.isInputPort(l.From) && !d.isInputPort(l.To),
		})
	}
	return out
}

func (d *Document) isInputPort(e Endpoint) bool {
	n, ok := d.Nodes.Get(e.NodeID)
	if !ok || n.Ports == nil {
		return false
	}
	p, ok := n.Ports.Get(e.PortID)
	if !ok {
		return false
	}
	return IsInput(p.Type)
}

// IsInput reports whether a port type receives links.
func IsInput(portType string) bool {
	return portType == PortIn || portType == portTop
}

// Read decodes and checks a document. Parameter numbers are kept as
// json.Number until their declared type is known.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, werrors.NewInvalidDocumentError("malformed JSON", err)
	}
	if err := doc.normalize(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadFile reads a document from disk. A missing filename is taken from the
// file name without extension.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return nil, err
	}
	if doc.Filename == "" {
		base := filepath.Base(path)
		doc.Filename = base[:len(base)-len(filepath.Ext(base))]
	}
	return doc, nil
}

// Write encodes a document as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// WriteFile writes a document to disk.
func WriteFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create document %s: %w", path, err)
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// normalize fills empty maps and ids from their keys and rejects links
// without endpoints.
func (d *Document) normalize() error {
	if d.Nodes == nil {
		d.Nodes = orderedmap.New[string, *Node]()
	}
	if d.Links == nil {
		d.Links = orderedmap.New[string, *Link]()
	}
	for pair := d.Nodes.Oldest(); pair != nil; pair = pair.Next() {
		n := pair.Value
		if n == nil {
			return werrors.NewInvalidDocumentError(fmt.Sprintf("node %s is empty", pair.Key), nil)
		}
		if n.ID == "" {
			n.ID = pair.Key
		}
		if n.Type == "" {
			return werrors.NewInvalidDocumentError(fmt.Sprintf("node %s has no type", pair.Key), nil)
		}
		if n.Ports == nil {
			n.Ports = orderedmap.New[string, *Port]()
		}
		for pp := n.Ports.Oldest(); pp != nil; pp = pp.Next() {
			if pp.Value == nil {
				return werrors.NewInvalidDocumentError(fmt.Sprintf("port %s of node %s is empty", pp.Key, pair.Key), nil)
			}
			if pp.Value.ID == "" {
				pp.Value.ID = pp.Key
			}
		}
	}
	for pair := d.Links.Oldest(); pair != nil; pair = pair.Next() {
		l := pair.Value
		if l == nil || l.From.NodeID == "" || l.To.NodeID == "" {
			return werrors.NewInvalidDocumentError(fmt.Sprintf("link %s needs both endpoints", pair.Key), nil)
		}
		if l.ID == "" {
			l.ID = pair.Key
		}
	}
	return nil
}
