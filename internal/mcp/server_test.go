package mcp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbxtools/rbxc/internal/config"
)

func TestResolvePath(t *testing.T) {
	s := &Server{projectRoot: "/proj"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty means project root", "", "/proj"},
		{"relative joins the root", "src", filepath.Join("/proj", "src")},
		{"nested relative", "out/place.rbxmx", filepath.Join("/proj", "out", "place.rbxmx")},
		{"absolute passes through", "/elsewhere/x", "/elsewhere/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.resolvePath(tt.in); got != tt.want {
				t.Errorf("resolvePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// testServer builds a Server over an initialized temporary project
// without going through stdio transport.
func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	rbxcDir, err := config.EnsureConfigDir(root)
	if err != nil {
		t.Fatalf("EnsureConfigDir: %v", err)
	}

	src := filepath.Join(root, "src")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatalf("mkdir src: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "main.lua"), []byte("print('hi')"), 0644); err != nil {
		t.Fatalf("write main.lua: %v", err)
	}

	return &Server{
		rbxcDir:     rbxcDir,
		projectRoot: root,
	}, root
}

func TestExecuteBuildAnchorsRelativeOutput(t *testing.T) {
	s, root := testServer(t)

	// cwd is unrelated to the project; the output must still land
	// under the project root.
	result, err := s.executeBuild("src", "out.rbxmx", false)
	if err != nil {
		t.Fatalf("executeBuild: %v", err)
	}

	want := filepath.Join(root, "out.rbxmx")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("output not written under project root: %v", err)
	}

	var out buildOutput
	if err := json.Unmarshal([]byte(result), &out); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, result)
	}
	if out.FileCount != 1 || out.NodeCount != 2 {
		t.Errorf("result = %+v, want 1 file and 2 nodes", out)
	}
	if len(out.Outputs) != 1 || out.Outputs[0] != want {
		t.Errorf("outputs = %v, want [%s]", out.Outputs, want)
	}
}

func TestExecuteCheckReportsFindings(t *testing.T) {
	s, root := testServer(t)

	if err := os.WriteFile(filepath.Join(root, "src", "bad.lua"), []byte("if x then"), 0644); err != nil {
		t.Fatalf("write bad.lua: %v", err)
	}

	result, err := s.executeCheck("src")
	if err != nil {
		t.Fatalf("executeCheck: %v", err)
	}

	var out checkOutput
	if err := json.Unmarshal([]byte(result), &out); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, result)
	}
	if out.Checked != 2 || out.Failed != 1 {
		t.Errorf("result = %+v, want 2 checked / 1 failed", out)
	}
	if len(out.Findings) != 1 || out.Findings[0].File != "bad.lua" {
		t.Errorf("findings = %+v", out.Findings)
	}
	if out.Findings[0].Line == 0 {
		t.Error("finding has no line number")
	}
}
