// Package cmd contains all CLI commands for rbxc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of rbxc
	Version = "0.1.0"

	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rbxc",
	Short: "Compile a Lua source tree into a Roblox XML model",
	Long: `rbxc compiles a directory of Lua sources and data files into a single
Roblox XML model document (.rbxmx) for import into the platform.

Each directory becomes a Folder instance; each file becomes a typed
instance selected by its extension and naming convention:

  script.server.lua    Script (server-side)
  gui.client.lua       LocalScript (client-side)
  util.lua             ModuleScript
  data.txt             StringValue
  icon.asset           IntValue (integer asset reference)
  anything else        disabled Script, content preserved in a comment

Two reserved names at the source root always compile to the entry
scripts regardless of extension (default: main -> Script, client ->
LocalScript). Oversized text values are split into ordered chunks so
no single property exceeds the format's length ceiling.

Examples:
  rbxc init                  # Set up .rbxc/ in the current directory
  rbxc build src             # Compile src/ to the configured outputs
  rbxc build src -o out.rbxmx
  rbxc check src             # Syntax-check Lua sources only
  rbxc status                # Show the last recorded build
  rbxc serve                 # Expose build/check over MCP

See 'rbxc <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
