package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rbxtools/rbxc/internal/mcp"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server over stdio so AI agents
can compile and check the project through tools instead of spawning
CLI commands.

Available Tools:
  rbxc_build    Compile the source tree and write the model document
  rbxc_check    Syntax-check Lua sources
  rbxc_status   Report the last recorded build

Examples:
  rbxc serve                            # Start with default tools
  rbxc serve --tools build,check,status # Choose the exposed tools
  rbxc serve --timeout 30m              # Auto-stop after inactivity
  rbxc serve --list-tools               # Show available tools`,
	RunE: runServe,
}

var (
	serveTools     string
	serveTimeout   string
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: build,check)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		fmt.Println("Available MCP tools:")
		fmt.Println()
		fmt.Println("  rbxc_build    Compile the source tree and write the model document")
		fmt.Println("  rbxc_check    Syntax-check Lua sources")
		fmt.Println("  rbxc_status   Report the last recorded build")
		fmt.Println()
		fmt.Println("Default set: build, check")
		return nil
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	var tools []string
	if serveTools != "" {
		for _, t := range strings.Split(serveTools, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				// Allow shorthand (build -> rbxc_build)
				if !strings.HasPrefix(t, "rbxc_") {
					t = "rbxc_" + t
				}
				tools = append(tools, t)
			}
		}
	}

	server, err := mcp.New(mcp.Config{
		Tools:   tools,
		Timeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nrbxc serve: shutting down\n")
		server.Close()
		os.Exit(0)
	}()

	// Log startup info to stderr (stdout is for MCP protocol)
	fmt.Fprintf(os.Stderr, "rbxc serve: starting MCP server\n")
	fmt.Fprintf(os.Stderr, "rbxc serve: tools: %v\n", server.ListTools())
	if timeout > 0 {
		fmt.Fprintf(os.Stderr, "rbxc serve: timeout: %v\n", timeout)
	}

	return server.ServeStdio()
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
