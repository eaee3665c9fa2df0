package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rbxtools/rbxc/internal/config"
	"github.com/rbxtools/rbxc/internal/rbxml"
)

// writeTree materializes a file map under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func testCompiler(t *testing.T, modify func(*config.Config)) *Compiler {
	t.Helper()

	cfg := config.DefaultConfig()
	if modify != nil {
		modify(cfg)
	}
	return New(cfg)
}

// propString fetches a property value as its stringified form.
func propString(t *testing.T, n *rbxml.Node, name string) string {
	t.Helper()

	p, ok := n.Property(name)
	if !ok {
		t.Fatalf("property %q not found on %s node", name, n.ClassName)
	}
	s, ok := p.Value.(string)
	if !ok {
		t.Fatalf("property %q is %T, not string", name, p.Value)
	}
	return s
}

func TestCompileServerScriptInSubdirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"foo/script.server.lua": `print("hi")`,
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	if root.ClassName != "Folder" {
		t.Errorf("root class = %s, want Folder", root.ClassName)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children()))
	}

	folder := root.Children()[0]
	if folder.ClassName != "Folder" || propString(t, folder, "Name") != "foo" {
		t.Errorf("child is %s %q, want Folder foo", folder.ClassName, propString(t, folder, "Name"))
	}
	if len(folder.Children()) != 1 {
		t.Fatalf("folder has %d children, want 1", len(folder.Children()))
	}

	script := folder.Children()[0]
	if script.ClassName != "Script" {
		t.Errorf("script class = %s, want Script", script.ClassName)
	}
	if propString(t, script, "Name") != "script" {
		t.Errorf("script name = %q, want script", propString(t, script, "Name"))
	}
	src, _ := script.Property("Source")
	if src.Type != rbxml.ProtectedString {
		t.Errorf("Source type = %s, want ProtectedString", src.Type)
	}
	if src.Value != `print("hi")` {
		t.Errorf("Source = %q, want print(\"hi\")", src.Value)
	}
}

func TestCompileChunksOversizedText(t *testing.T) {
	const max = 8
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"data.txt": strings.Repeat("a", max+1),
	})

	c := testCompiler(t, func(cfg *config.Config) {
		cfg.Build.MaxValueLength = max
	})
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	container := root.Children()[0]
	if container.ClassName != "Folder" {
		t.Errorf("container class = %s, want Folder", container.ClassName)
	}
	marker, ok := container.Property("Chunked")
	if !ok || marker.Type != rbxml.Bool || marker.Value != true {
		t.Errorf("chunk marker = %+v, want bool true", marker)
	}

	chunks := container.Children()
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	first := propString(t, chunks[0], "1")
	second := propString(t, chunks[1], "2")
	if len(first) != max {
		t.Errorf("chunk 1 length = %d, want %d", len(first), max)
	}
	if len(second) != 1 {
		t.Errorf("chunk 2 length = %d, want 1", len(second))
	}
	if first+second != strings.Repeat("a", max+1) {
		t.Error("concatenated chunks do not reproduce the content")
	}
}

func TestCompileAsset(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"icon.asset": "40469899",
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	asset := root.Children()[0]
	if asset.ClassName != "IntValue" {
		t.Errorf("class = %s, want IntValue", asset.ClassName)
	}
	v, _ := asset.Property("Value")
	if v.Type != rbxml.Int || v.Value != int64(40469899) {
		t.Errorf("Value = %+v, want int 40469899", v)
	}
	if len(c.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", c.Diagnostics())
	}
}

func TestCompileNonNumericAsset(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"icon.asset": "abc",
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory must not abort on bad asset: %v", err)
	}

	asset := root.Children()[0]
	v, _ := asset.Property("Value")
	if v.Value != int64(0) {
		t.Errorf("Value = %v, want 0 placeholder", v.Value)
	}

	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	if !strings.Contains(diags[0].Message, "not numeric") {
		t.Errorf("diagnostic = %q", diags[0].Message)
	}
	if !strings.HasSuffix(diags[0].Path, "icon.asset") {
		t.Errorf("diagnostic path = %q", diags[0].Path)
	}
}

func TestCompileEntryScriptsIgnoreExtension(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.txt":  "print(1)",
		"client.md": "print(2)",
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	classes := make(map[string]string)
	for _, child := range root.Children() {
		classes[propString(t, child, "Name")] = child.ClassName
	}

	if classes["main"] != "Script" {
		t.Errorf("main compiled to %s, want Script", classes["main"])
	}
	if classes["client"] != "LocalScript" {
		t.Errorf("client compiled to %s, want LocalScript", classes["client"])
	}
}

func TestCompileEntryNamesOnlyAtTopLevel(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"sub/main.txt": "nested",
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	nested := root.Children()[0].Children()[0]
	if nested.ClassName != "StringValue" {
		t.Errorf("nested main.txt compiled to %s, want StringValue", nested.ClassName)
	}
}

func TestCompileCommentedFallback(t *testing.T) {
	dir := t.TempDir()
	content := "# notes\nwith ]] tricky ]==] brackets"
	writeTree(t, dir, map[string]string{
		"notes.md": content,
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	script := root.Children()[0]
	if script.ClassName != "Script" {
		t.Errorf("class = %s, want Script", script.ClassName)
	}
	disabled, ok := script.Property("Disabled")
	if !ok || disabled.Value != true {
		t.Error("fallback script must be disabled")
	}

	src := propString(t, script, "Source")
	if !strings.Contains(src, content) {
		t.Error("raw content not preserved verbatim inside the comment")
	}
	if !strings.HasPrefix(src, "--[") {
		t.Errorf("source does not open a comment block: %q", src[:10])
	}
	// The chosen closer must not occur inside the content itself.
	open := src[:strings.Index(src, "\n")]
	level := strings.Count(open, "=")
	if strings.Contains(content, closer(level)) {
		t.Errorf("comment closer %q occurs in content", closer(level))
	}
}

func TestCompileCommentedFallbackWrapperOverflow(t *testing.T) {
	// Raw content fits, but the comment wrapper pushes it past the
	// maximum; the file must chunk instead of emitting an oversized
	// Source property.
	const max = 16
	content := strings.Repeat("x", max-2)
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"blob.bin": content,
	})

	c := testCompiler(t, func(cfg *config.Config) {
		cfg.Build.MaxValueLength = max
	})
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	node := root.Children()[0]
	marker, ok := node.Property("Chunked")
	if !ok || marker.Value != true {
		t.Fatalf("wrapped-overflow fallback not chunked: %s %+v", node.ClassName, marker)
	}

	var joined strings.Builder
	for i, chunk := range node.Children() {
		part := propString(t, chunk, strconv.Itoa(i+1))
		if len(part) > max {
			t.Errorf("chunk %d length = %d, exceeds %d", i+1, len(part), max)
		}
		joined.WriteString(part)
	}
	if joined.String() != content {
		t.Error("concatenated chunks do not reproduce the content")
	}
}

func TestCompileIgnoreList(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".git/config": "noise",
		"keep.txt":    "data",
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	if len(root.Children()) != 1 {
		t.Fatalf("got %d children, want 1 (.git ignored)", len(root.Children()))
	}
	if propString(t, root.Children()[0], "Name") != "keep" {
		t.Error("expected only keep.txt to survive")
	}
}

func TestCompileChildOrderDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"zeta.txt":  "z",
		"alpha.txt": "a",
		"mid.txt":   "m",
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	var names []string
	for _, child := range root.Children() {
		names = append(names, propString(t, child, "Name"))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("children = %v, want %v (name-sorted)", names, want)
		}
	}
}

func TestCompileUnreadableFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	// A dangling symlink shows up in the listing but cannot be read.
	if err := os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "broken.lua")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	c := testCompiler(t, nil)
	_, err := c.CompileDirectory(dir)
	if err == nil {
		t.Fatal("expected fatal error for unreadable file")
	}
	if !strings.Contains(err.Error(), "broken.lua") {
		t.Errorf("error does not identify the path: %v", err)
	}
}

func TestCompileLeadingWhitespaceMarker(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"indented.lua": "  local x = 1",
	})

	c := testCompiler(t, nil)
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	src := propString(t, root.Children()[0], "Source")
	if !strings.HasPrefix(src, "\\") {
		t.Errorf("leading-whitespace source missing marker: %q", src)
	}
}

// recordingChecker fails every check and records the sources it saw.
type recordingChecker struct {
	calls int
	fail  bool
}

func (r *recordingChecker) Check(source []byte) error {
	r.calls++
	if r.fail {
		return errors.New("1:1: syntax error")
	}
	return nil
}

func TestCompileSyntaxCheckDiagnosticOnly(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"bad.lua":  "local = 5",
		"data.txt": "not checked",
	})

	checker := &recordingChecker{fail: true}
	c := testCompiler(t, nil)
	c.SetSyntaxChecker(checker)

	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("syntax failures must not abort: %v", err)
	}

	if checker.calls != 1 {
		t.Errorf("checker called %d times, want 1 (lua sources only)", checker.calls)
	}
	if len(c.Diagnostics()) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(c.Diagnostics()))
	}
	// The node is still produced despite the failed check.
	if len(root.Children()) != 2 {
		t.Errorf("got %d children, want 2", len(root.Children()))
	}
}

func TestCompileFileHashes(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":     "one",
		"sub/b.lua": "two",
	})

	c := testCompiler(t, nil)
	if _, err := c.CompileDirectory(dir); err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}

	hashes := c.FileHashes()
	if len(hashes) != 2 {
		t.Fatalf("got %d hashes, want 2: %v", len(hashes), hashes)
	}
	for _, rel := range []string{"a.txt", filepath.Join("sub", "b.lua")} {
		h, ok := hashes[rel]
		if !ok {
			t.Errorf("missing hash for %s", rel)
			continue
		}
		if len(h) != HashLength {
			t.Errorf("hash %q has length %d, want %d", h, len(h), HashLength)
		}
	}
}

func TestCompileRootNameOverride(t *testing.T) {
	dir := t.TempDir()

	c := testCompiler(t, func(cfg *config.Config) {
		cfg.Build.RootName = "Workspace"
	})
	root, err := c.CompileDirectory(dir)
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}
	if propString(t, root, "Name") != "Workspace" {
		t.Errorf("root name = %q, want Workspace", propString(t, root, "Name"))
	}
}
