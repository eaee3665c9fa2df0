// Package compiler turns a source directory tree into an instance
// tree: directories become container nodes, files become typed leaf
// nodes selected by extension and naming convention.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rbxtools/rbxc/internal/config"
	"github.com/rbxtools/rbxc/internal/rbxml"
)

// SyntaxChecker is the optional pre-check applied to Lua sources.
// Failures are diagnostic-only and never block compilation.
type SyntaxChecker interface {
	Check(source []byte) error
}

// Compiler compiles one source tree per run. It is not safe for
// concurrent use; create a fresh Compiler per compilation.
type Compiler struct {
	cfg     *config.Config
	checker SyntaxChecker
	diags   Diagnostics
	hashes  map[string]string
}

// New creates a compiler for the given configuration.
func New(cfg *config.Config) *Compiler {
	return &Compiler{
		cfg:    cfg,
		hashes: make(map[string]string),
	}
}

// SetSyntaxChecker installs the best-effort source pre-check.
// A nil checker disables it.
func (c *Compiler) SetSyntaxChecker(sc SyntaxChecker) {
	c.checker = sc
}

// Diagnostics returns the warnings collected so far.
func (c *Compiler) Diagnostics() []Diagnostic {
	return c.diags.All()
}

// FileHashes returns the content hash of every file read during the
// compile, keyed by path relative to the compile root. Used for
// up-to-date detection against the build cache.
func (c *Compiler) FileHashes() map[string]string {
	return c.hashes
}

// CompileDirectory compiles the tree rooted at dir into a container
// node. Any unreadable entry aborts the whole compilation.
func (c *Compiler) CompileDirectory(dir string) (*rbxml.Node, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	name := c.cfg.Build.RootName
	if name == "" {
		name = filepath.Base(absDir)
	}

	return c.compileDir(absDir, absDir, name, true)
}

// compileDir builds the container node for one directory. Children
// appear in directory-listing order, which os.ReadDir makes
// name-sorted, so builds are reproducible.
func (c *Compiler) compileDir(root, dir, name string, topLevel bool) (*rbxml.Node, error) {
	node := rbxml.NewNode(c.cfg.Build.ContainerClass)
	node.SetString("Name", rbxml.Escape(name))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if c.ignored(entry.Name()) {
			continue
		}
		full := filepath.Join(dir, entry.Name())

		var child *rbxml.Node
		if entry.IsDir() {
			child, err = c.compileDir(root, full, entry.Name(), false)
		} else {
			child, err = c.compileFile(root, full, entry.Name(), topLevel)
		}
		if err != nil {
			return nil, err
		}
		if err := node.AddChild(child); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// compileFile classifies one file and builds its leaf node.
func (c *Compiler) compileFile(root, path, name string, topLevel bool) (*rbxml.Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	rel, relErr := filepath.Rel(root, path)
	if relErr != nil {
		rel = path
	}
	c.hashes[rel] = ComputeFileHash(content)

	cls := Classify(name, len(content), topLevel, c.cfg.Entry, c.cfg.Build.MaxValueLength)

	if c.checker != nil && cls.Kind.IsScript() && IsLuaSource(name) {
		if checkErr := c.checker.Check(content); checkErr != nil {
			c.diags.Warnf(path, "syntax check failed: %v", checkErr)
		}
	}

	// The comment wrapper counts toward the length ceiling, so a
	// fallback file near the maximum can overflow only after wrapping.
	if cls.Kind == KindCommented && !cls.Chunked &&
		len(commentOut(string(content))) > c.cfg.Build.MaxValueLength {
		cls.Chunked = true
	}

	if cls.Chunked {
		return c.chunkedNode(cls.Name, string(content)), nil
	}

	switch cls.Kind {
	case KindServerScript:
		return scriptNode("Script", cls.Name, string(content), false), nil
	case KindLocalScript:
		return scriptNode("LocalScript", cls.Name, string(content), false), nil
	case KindModuleScript:
		return scriptNode("ModuleScript", cls.Name, string(content), false), nil
	case KindStringValue:
		return stringValueNode(cls.Name, string(content)), nil
	case KindAsset:
		return c.assetNode(path, cls.Name, string(content)), nil
	default:
		return scriptNode("Script", cls.Name, commentOut(string(content)), true), nil
	}
}

// ignored reports whether a directory entry is skipped entirely.
func (c *Compiler) ignored(name string) bool {
	for _, ig := range c.cfg.Build.Ignore {
		if name == ig {
			return true
		}
	}
	return false
}

// scriptNode builds a script leaf. The source keeps its raw text
// (plus the leading-whitespace marker); escaping happens when the
// ProtectedString is serialized.
func scriptNode(class, name, source string, disabled bool) *rbxml.Node {
	n := rbxml.NewNode(class)
	n.SetString("Name", rbxml.Escape(name))
	n.SetSource("Source", rbxml.EncodeLeadingMarker(source))
	if disabled {
		n.SetBool("Disabled", true)
	}
	return n
}

// stringValueNode builds a plain data leaf. String property values
// are escaped at construction, unlike script source.
func stringValueNode(name, content string) *rbxml.Node {
	n := rbxml.NewNode("StringValue")
	n.SetString("Name", rbxml.Escape(name))
	n.SetString("Value", rbxml.Escape(rbxml.EncodeLeadingMarker(content)))
	return n
}

// assetNode builds an integer asset reference. Non-numeric content is
// a recoverable warning; the node still appears with a zero value so
// the compile never aborts here.
func (c *Compiler) assetNode(path, name, content string) *rbxml.Node {
	trimmed := strings.TrimSpace(content)
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		c.diags.Warnf(path, "asset content %q is not numeric; using 0", clip(trimmed, 32))
		value = 0
	}

	n := rbxml.NewNode("IntValue")
	n.SetString("Name", rbxml.Escape(name))
	n.SetInt("Value", value)
	return n
}

// chunkedNode replaces an oversized string property with a container
// holding a marker bool and one StringValue child per chunk, each
// carrying a single string property named by its 1-based index.
// Concatenating the chunks in index order reproduces the content.
func (c *Compiler) chunkedNode(name, content string) *rbxml.Node {
	node := rbxml.NewNode(c.cfg.Build.ContainerClass)
	node.SetString("Name", rbxml.Escape(name))
	node.SetBool("Chunked", true)

	for i, part := range Chunk(content, c.cfg.Build.MaxValueLength) {
		child := rbxml.NewNode("StringValue")
		child.SetString(strconv.Itoa(i+1), rbxml.Escape(rbxml.EncodeLeadingMarker(part)))
		node.AddChild(child)
	}

	return node
}

// commentOut wraps content verbatim in a Lua long-bracket comment so
// the resulting script is inert but inspectable. The bracket level is
// raised until the closer cannot occur inside the content.
func commentOut(content string) string {
	level := 0
	for strings.Contains(content, closer(level)) {
		level++
	}
	eq := strings.Repeat("=", level)
	return "--[" + eq + "[\n" + content + "\n]" + eq + "]"
}

func closer(level int) string {
	return "]" + strings.Repeat("=", level) + "]"
}

// clip shortens a string for diagnostics.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
