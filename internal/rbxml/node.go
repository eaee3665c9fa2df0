package rbxml

import (
	"fmt"
	"sort"
)

// PropertyType identifies the element tag used when a property is
// serialized. The vocabulary is the small fixed set the document
// format understands.
type PropertyType string

const (
	// String is a plain string property.
	String PropertyType = "string"
	// Bool is a boolean property.
	Bool PropertyType = "bool"
	// Int is an integer property.
	Int PropertyType = "int"
	// ProtectedString is free-text script source; it is escaped at
	// serialization time rather than when the property is set.
	ProtectedString PropertyType = "ProtectedString"
)

// reservedPropertyName is the node's type tag. It is emitted as an
// attribute on the Item element, never as a property.
const reservedPropertyName = "ClassName"

// Property is a typed value attached to a node under a name.
type Property struct {
	Type  PropertyType
	Value any
}

// Node is one element of the compiled instance tree: a class name, a
// set of uniquely named properties, and an ordered sequence of
// children. Property iteration for serialization is lexicographic by
// name regardless of insertion order; child order is preserved.
type Node struct {
	ClassName string

	properties map[string]Property
	children   []*Node
}

// NewNode creates a node of the given class with no properties.
func NewNode(className string) *Node {
	return &Node{
		ClassName:  className,
		properties: make(map[string]Property),
	}
}

// SetProperty attaches a typed property, replacing any existing
// property of the same name. The reserved name "ClassName" is
// rejected.
func (n *Node) SetProperty(name string, t PropertyType, value any) error {
	if name == reservedPropertyName {
		return fmt.Errorf("property name %q is reserved", reservedPropertyName)
	}
	n.properties[name] = Property{Type: t, Value: value}
	return nil
}

// SetString sets a string property.
func (n *Node) SetString(name, value string) error {
	return n.SetProperty(name, String, value)
}

// SetBool sets a bool property.
func (n *Node) SetBool(name string, value bool) error {
	return n.SetProperty(name, Bool, value)
}

// SetInt sets an int property.
func (n *Node) SetInt(name string, value int64) error {
	return n.SetProperty(name, Int, value)
}

// SetSource sets a ProtectedString property.
func (n *Node) SetSource(name, value string) error {
	return n.SetProperty(name, ProtectedString, value)
}

// Property returns the named property, if present.
func (n *Node) Property(name string) (Property, bool) {
	p, ok := n.properties[name]
	return p, ok
}

// PropertyNames returns all property names in lexicographic order.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.properties))
	for name := range n.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddChild appends a child node. A nil child is a caller error.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	n.children = append(n.children, child)
	return nil
}

// Children returns the child sequence in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// Count returns the number of nodes in the subtree rooted here,
// including the node itself.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}
