// Package mcp provides an MCP (Model Context Protocol) server for rbxc.
// This allows AI agents to compile and check a project through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rbxtools/rbxc/internal/cache"
	"github.com/rbxtools/rbxc/internal/compiler"
	"github.com/rbxtools/rbxc/internal/config"
	"github.com/rbxtools/rbxc/internal/rbxml"
	"github.com/rbxtools/rbxc/internal/syntax"
)

// Server wraps the MCP server with rbxc-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	rbxcDir      string
	projectRoot  string
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"rbxc_build", "rbxc_check"}

// AllTools lists all available tools
var AllTools = []string{"rbxc_build", "rbxc_check", "rbxc_status"}

// New creates a new MCP server for rbxc
func New(cfg Config) (*Server, error) {
	rbxcDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("rbxc not initialized: run 'rbxc init' first")
	}
	projectRoot := filepath.Dir(rbxcDir)

	mcpServer := server.NewMCPServer(
		"rbxc",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		rbxcDir:      rbxcDir,
		projectRoot:  projectRoot,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "rbxc_build":
		return s.registerBuildTool()
	case "rbxc_check":
		return s.registerCheckTool()
	case "rbxc_status":
		return s.registerStatusTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "rbxc serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources
func (s *Server) Close() error {
	return nil
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// registerBuildTool registers the rbxc_build tool
func (s *Server) registerBuildTool() error {
	tool := mcp.NewTool("rbxc_build",
		mcp.WithDescription("Compile a source tree into a Roblox XML model document. Returns node/file counts, diagnostics, and the written outputs."),
		mcp.WithString("path",
			mcp.Description("Source directory to compile (default: project root)"),
		),
		mcp.WithString("output",
			mcp.Description("Destination path for the document (default: from config)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Rebuild even if nothing changed since the last build"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleBuild)
	return nil
}

// registerCheckTool registers the rbxc_check tool
func (s *Server) registerCheckTool() error {
	tool := mcp.NewTool("rbxc_check",
		mcp.WithDescription("Syntax-check every Lua source under a directory. Returns per-file findings with line and column."),
		mcp.WithString("path",
			mcp.Description("Directory to check (default: project root)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleCheck)
	return nil
}

// registerStatusTool registers the rbxc_status tool
func (s *Server) registerStatusTool() error {
	tool := mcp.NewTool("rbxc_status",
		mcp.WithDescription("Report the last recorded build: when it ran, what it compiled, and where the outputs went."),
	)

	s.mcpServer.AddTool(tool, s.handleStatus)
	return nil
}

func (s *Server) handleBuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	path, _ := args["path"].(string)
	output, _ := args["output"].(string)
	force, _ := args["force"].(bool)

	result, err := s.executeBuild(path, output, force)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	path, _ := args["path"].(string)

	result, err := s.executeCheck(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeStatus()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

// buildOutput is the JSON payload returned by rbxc_build.
type buildOutput struct {
	NodeCount   int      `json:"node_count"`
	FileCount   int      `json:"file_count"`
	Outputs     []string `json:"outputs"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	UpToDate    bool     `json:"up_to_date,omitempty"`
	DurationMs  int64    `json:"duration_ms"`
}

func (s *Server) executeBuild(path, output string, force bool) (string, error) {
	srcPath := s.resolvePath(path)

	cfg, err := config.Load(srcPath)
	if err != nil {
		return "", err
	}

	// Destinations are anchored to the project root, not whatever
	// directory the server process happens to run in.
	var outputs []string
	if output != "" {
		outputs = []string{s.resolvePath(output)}
	} else {
		for _, dest := range cfg.Build.Outputs {
			outputs = append(outputs, s.resolvePath(dest))
		}
	}

	start := time.Now()

	comp := compiler.New(cfg)
	if cfg.Check.SyntaxEnabled() {
		checker := syntax.NewChecker()
		defer checker.Close()
		comp.SetSyntaxChecker(checker)
	}

	root, err := comp.CompileDirectory(srcPath)
	if err != nil {
		return "", err
	}

	doc, nodes, err := rbxml.Assemble(root)
	if err != nil {
		return "", err
	}

	out := buildOutput{
		NodeCount:  nodes,
		FileCount:  len(comp.FileHashes()),
		DurationMs: time.Since(start).Milliseconds(),
	}
	for _, d := range comp.Diagnostics() {
		out.Diagnostics = append(out.Diagnostics, d.String())
	}

	c, err := cache.Open(s.rbxcDir)
	if err == nil {
		defer c.Close()

		if !force {
			upToDate, utdErr := c.IsUpToDate(comp.FileHashes())
			if utdErr == nil && upToDate && allExist(outputs) {
				out.UpToDate = true
				return marshalResult(out)
			}
		}
	}

	for _, dest := range outputs {
		if err := os.WriteFile(dest, []byte(doc), 0644); err != nil {
			return "", fmt.Errorf("writing output %s: %w", dest, err)
		}
		out.Outputs = append(out.Outputs, dest)
	}

	if c != nil {
		if err := c.ReplaceFileIndex(comp.FileHashes()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not update file index: %v\n", err)
		}
		if err := c.RecordBuild(&cache.BuildRecord{
			RootPath:   srcPath,
			NodeCount:  nodes,
			FileCount:  out.FileCount,
			Outputs:    out.Outputs,
			DurationMs: time.Since(start).Milliseconds(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record build: %v\n", err)
		}
	}

	out.DurationMs = time.Since(start).Milliseconds()
	return marshalResult(out)
}

// checkFinding is one syntax problem reported by rbxc_check.
type checkFinding struct {
	File    string `json:"file"`
	Line    uint32 `json:"line"`
	Column  uint32 `json:"column"`
	Message string `json:"message"`
}

// checkOutput is the JSON payload returned by rbxc_check.
type checkOutput struct {
	Checked  int            `json:"checked"`
	Failed   int            `json:"failed"`
	Findings []checkFinding `json:"findings,omitempty"`
}

func (s *Server) executeCheck(path string) (string, error) {
	srcPath := s.resolvePath(path)

	cfg, err := config.Load(srcPath)
	if err != nil {
		return "", err
	}

	checker := syntax.NewChecker()
	defer checker.Close()

	out := checkOutput{}

	err = filepath.WalkDir(srcPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != srcPath && ignored(d.Name(), cfg.Build.Ignore) {
				return filepath.SkipDir
			}
			return nil
		}
		if !compiler.IsLuaSource(d.Name()) {
			return nil
		}

		source, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", p, err)
		}

		out.Checked++
		if checkErr := checker.Check(source); checkErr != nil {
			out.Failed++
			rel, relErr := filepath.Rel(srcPath, p)
			if relErr != nil {
				rel = p
			}
			finding := checkFinding{File: rel, Message: checkErr.Error()}
			var ce *syntax.CheckError
			if errors.As(checkErr, &ce) {
				finding.Line = ce.Line
				finding.Column = ce.Column
				finding.Message = ce.Message
			}
			out.Findings = append(out.Findings, finding)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return marshalResult(out)
}

// statusOutput is the JSON payload returned by rbxc_status.
type statusOutput struct {
	BuiltAt    string   `json:"built_at"`
	RootPath   string   `json:"root_path"`
	NodeCount  int      `json:"node_count"`
	FileCount  int      `json:"file_count"`
	Outputs    []string `json:"outputs"`
	DurationMs int64    `json:"duration_ms"`
}

func (s *Server) executeStatus() (string, error) {
	c, err := cache.Open(s.rbxcDir)
	if err != nil {
		return "", fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	last, err := c.LastBuild()
	if err != nil {
		return marshalResult(map[string]string{"status": "no builds recorded"})
	}

	return marshalResult(statusOutput{
		BuiltAt:    last.BuiltAt.Format(time.RFC3339),
		RootPath:   last.RootPath,
		NodeCount:  last.NodeCount,
		FileCount:  last.FileCount,
		Outputs:    last.Outputs,
		DurationMs: last.DurationMs,
	})
}

// resolvePath anchors a tool-supplied path to the project root.
// Empty means the root itself; absolute paths pass through.
func (s *Server) resolvePath(p string) string {
	if p == "" {
		return s.projectRoot
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.projectRoot, p)
}

func marshalResult(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}

func allExist(paths []string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

func ignored(name string, ignore []string) bool {
	for _, ig := range ignore {
		if name == ig {
			return true
		}
	}
	return false
}
