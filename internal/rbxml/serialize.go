package rbxml

import (
	"errors"
	"fmt"
	"strconv"
)

// ReferentPrefix is the fixed literal in front of every referent id.
const ReferentPrefix = "RBX"

// ErrNilNode is returned when a nil node is handed to the serializer
// or added as a child. This is always a caller bug and aborts the
// compile.
var ErrNilNode = errors.New("rbxml: nil node")

// Referent issues unique node identifiers for one serialization run.
// It is an explicit object threaded through the call chain rather than
// package state, so concurrent compilations in one process cannot
// interfere. A single run assigns ids 1..n in depth-first pre-order,
// matching document order.
type Referent struct {
	last int
}

// NewReferent returns a counter whose first Next call yields 1.
func NewReferent() *Referent {
	return &Referent{}
}

// Next returns the next unused id.
func (r *Referent) Next() int {
	r.last++
	return r.last
}

// Count reports how many ids have been issued.
func (r *Referent) Count() int {
	return r.last
}

// Serialize writes the node and its subtree to the writer, assigning
// each node a fresh id from refs. Traversal is depth-first pre-order:
// opening tag, sorted property list, children in order, closing tag.
func Serialize(n *Node, w *Writer, refs *Referent) error {
	if n == nil {
		return ErrNilNode
	}

	id := refs.Next()
	w.Indent(0)
	w.Write(`<Item class="`, n.ClassName, `" referent="`, ReferentPrefix, id, `">`)

	w.Indent(1)
	w.Write("<Properties>")

	names := n.PropertyNames()
	for i, name := range names {
		if i == 0 {
			w.Indent(1)
		} else {
			w.Indent(0)
		}
		p, _ := n.Property(name)
		w.Write("<", p.Type, ` name="`, name, `">`, propertyText(p), "</", p.Type, ">")
	}

	if len(names) == 0 {
		w.Indent(0)
	} else {
		w.Indent(-1)
	}
	w.Write("</Properties>")

	for _, child := range n.Children() {
		if err := Serialize(child, w, refs); err != nil {
			return err
		}
	}

	w.Indent(-1)
	w.Write("</Item>")
	return nil
}

// propertyText renders a property value for element content. Script
// source (ProtectedString) is escaped here; every other type is
// already plain text and stringifies directly.
func propertyText(p Property) string {
	switch p.Type {
	case ProtectedString:
		return Escape(fmt.Sprint(p.Value))
	case Bool:
		if b, ok := p.Value.(bool); ok {
			return strconv.FormatBool(b)
		}
	}
	return fmt.Sprint(p.Value)
}
