// Package cmd implements the build command for rbxc CLI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rbxtools/rbxc/internal/cache"
	"github.com/rbxtools/rbxc/internal/compiler"
	"github.com/rbxtools/rbxc/internal/config"
	"github.com/rbxtools/rbxc/internal/rbxml"
	"github.com/rbxtools/rbxc/internal/syntax"
	"github.com/spf13/cobra"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Compile a source tree into an XML model document",
	Long: `Build compiles the specified directory (or the current directory if
none given) into a Roblox XML model and writes it to every configured
output path.

The build process:
  1. Walks the source tree, classifying each file by name/extension
  2. Syntax-checks Lua sources (diagnostic-only, never fatal)
  3. Serializes the instance tree with unique referent ids
  4. Writes the assembled document to each destination
  5. Updates the .rbxc/cache.db file index and build history

When nothing changed since the last recorded build and all outputs
exist, the write is skipped; use --force to rebuild anyway.

Examples:
  rbxc build                       # Compile . to the configured outputs
  rbxc build src                   # Compile a specific directory
  rbxc build src -o place.rbxmx    # Override output destinations
  rbxc build --dry-run             # Compile and report without writing
  rbxc build --force               # Ignore the up-to-date check`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

// Command-line flags
var (
	buildOutputs  []string
	buildForce    bool
	buildDryRun   bool
	buildNoSyntax bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringSliceVarP(&buildOutputs, "output", "o", nil, "Output paths (default: from config)")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "Rebuild even if nothing changed")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Compile and report without writing outputs")
	buildCmd.Flags().BoolVar(&buildNoSyntax, "no-syntax-check", false, "Skip the Lua syntax pre-check")
}

// buildOptions carries per-invocation overrides into buildProject.
type buildOptions struct {
	outputs  []string
	force    bool
	dryRun   bool
	noSyntax bool
}

// buildResult summarizes one completed (or skipped) build.
type buildResult struct {
	document    string
	nodeCount   int
	files       []string
	diagnostics []compiler.Diagnostic
	written     []string
	upToDate    bool
	duration    time.Duration
}

func runBuild(cmd *cobra.Command, args []string) error {
	srcPath := "."
	if len(args) > 0 {
		srcPath = args[0]
	}
	absPath, err := filepath.Abs(srcPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(absPath)
	if err != nil {
		return err
	}

	outputs := cfg.Build.Outputs
	if len(buildOutputs) > 0 {
		outputs = buildOutputs
	}

	result, err := buildProject(absPath, cfg, buildOptions{
		outputs:  outputs,
		force:    buildForce,
		dryRun:   buildDryRun,
		noSyntax: buildNoSyntax,
	})
	if err != nil {
		return err
	}

	for _, d := range result.diagnostics {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", d)
	}

	if result.upToDate {
		fmt.Println("Up to date; nothing written (use --force to rebuild)")
		return nil
	}

	if verbose {
		for _, f := range result.files {
			fmt.Printf("  %s\n", f)
		}
	}

	fmt.Printf("Compiled %d nodes from %d files in %v\n",
		result.nodeCount, len(result.files), result.duration.Round(time.Millisecond))
	if buildDryRun {
		fmt.Println("Dry run; no outputs written")
		return nil
	}
	for _, out := range result.written {
		fmt.Printf("Wrote %s\n", out)
	}
	return nil
}

// buildProject runs one full compile: tree walk, assembly, output
// writes, and cache bookkeeping. Used by the build command and tests.
func buildProject(srcPath string, cfg *config.Config, opts buildOptions) (*buildResult, error) {
	start := time.Now()

	comp := compiler.New(cfg)
	if cfg.Check.SyntaxEnabled() && !opts.noSyntax {
		checker := syntax.NewChecker()
		defer checker.Close()
		comp.SetSyntaxChecker(checker)
	}

	root, err := comp.CompileDirectory(srcPath)
	if err != nil {
		return nil, err
	}

	doc, nodes, err := rbxml.Assemble(root)
	if err != nil {
		return nil, err
	}

	result := &buildResult{
		document:    doc,
		nodeCount:   nodes,
		files:       sortedKeys(comp.FileHashes()),
		diagnostics: comp.Diagnostics(),
	}

	// The cache is optional: without an initialized .rbxc directory
	// every build is a full build.
	var buildCache *cache.Cache
	if rbxcDir, findErr := config.FindConfigDir(srcPath); findErr == nil {
		if c, openErr := cache.Open(rbxcDir); openErr == nil {
			buildCache = c
			defer buildCache.Close()
		}
	}

	if buildCache != nil && !opts.force && !opts.dryRun {
		upToDate, utdErr := buildCache.IsUpToDate(comp.FileHashes())
		if utdErr == nil && upToDate && outputsExist(opts.outputs) {
			result.upToDate = true
			result.duration = time.Since(start)
			return result, nil
		}
	}

	if opts.dryRun {
		result.duration = time.Since(start)
		return result, nil
	}

	for _, out := range opts.outputs {
		if err := os.WriteFile(out, []byte(doc), 0644); err != nil {
			return nil, fmt.Errorf("writing output %s: %w", out, err)
		}
		result.written = append(result.written, out)
	}

	if buildCache != nil {
		if err := buildCache.ReplaceFileIndex(comp.FileHashes()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not update file index: %v\n", err)
		}
		if err := buildCache.RecordBuild(&cache.BuildRecord{
			RootPath:   srcPath,
			NodeCount:  nodes,
			FileCount:  len(result.files),
			Outputs:    result.written,
			DurationMs: time.Since(start).Milliseconds(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record build: %v\n", err)
		}
	}

	result.duration = time.Since(start)
	return result, nil
}

// outputsExist reports whether every destination is already present.
func outputsExist(paths []string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
