// Package syntax provides a tree-sitter based Lua syntax check for
// script sources before they are embedded in the compiled document.
//
// The check is best-effort and diagnostic-only: a failure never blocks
// compilation, it only produces a warning for the offending file.
package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// CheckError describes the first syntax problem found in a source.
type CheckError struct {
	Line    uint32
	Column  uint32
	Message string
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Checker wraps a tree-sitter parser configured for Lua.
type Checker struct {
	parser *sitter.Parser
}

// NewChecker creates a Lua syntax checker.
func NewChecker() *Checker {
	p := sitter.NewParser()
	p.SetLanguage(lua.GetLanguage())
	return &Checker{parser: p}
}

// Check parses the source and returns a CheckError describing the
// first syntax error, or nil if the source parses cleanly.
func (c *Checker) Check(source []byte) error {
	tree, err := c.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return &CheckError{Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	if bad := firstErrorNode(root); bad != nil {
		pt := bad.StartPoint()
		return &CheckError{
			Line:    pt.Row + 1,
			Column:  pt.Column + 1,
			Message: describeNode(bad),
		}
	}
	return &CheckError{Message: "syntax error"}
}

// Close releases parser resources. After Close the checker must not
// be used.
func (c *Checker) Close() {
	if c.parser != nil {
		c.parser.Close()
		c.parser = nil
	}
}

// firstErrorNode finds the first ERROR or missing node in a
// depth-first walk, matching the order errors appear in the source.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(int(i))); found != nil {
			return found
		}
	}
	return nil
}

// describeNode renders a short human-readable message for an error
// node.
func describeNode(node *sitter.Node) string {
	if node.IsMissing() {
		return fmt.Sprintf("missing %s", node.Type())
	}
	return "syntax error"
}
