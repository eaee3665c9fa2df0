package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rbxtools/rbxc/internal/compiler"
	"github.com/rbxtools/rbxc/internal/config"
	"github.com/rbxtools/rbxc/internal/syntax"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Syntax-check Lua sources without building",
	Long: `Check parses every .lua and .luau file under the given directory and
reports syntax errors as path:line:column. Unlike build, where syntax
problems are warnings, check exits non-zero when any file fails.

Examples:
  rbxc check         # Check the current directory
  rbxc check src     # Check a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	checker := syntax.NewChecker()
	defer checker.Close()

	checked := 0
	failed := 0

	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absPath && isIgnored(d.Name(), cfg.Build.Ignore) {
				return filepath.SkipDir
			}
			return nil
		}
		if !compiler.IsLuaSource(d.Name()) {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", path, err)
		}

		checked++
		if checkErr := checker.Check(source); checkErr != nil {
			failed++
			rel, relErr := filepath.Rel(absPath, path)
			if relErr != nil {
				rel = path
			}
			var ce *syntax.CheckError
			if errors.As(checkErr, &ce) {
				fmt.Printf("%s:%d:%d: %s\n", rel, ce.Line, ce.Column, ce.Message)
			} else {
				fmt.Printf("%s: %v\n", rel, checkErr)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed syntax check", failed, checked)
	}
	fmt.Printf("All %d files passed syntax check\n", checked)
	return nil
}

func isIgnored(name string, ignore []string) bool {
	for _, ig := range ignore {
		if name == ig {
			return true
		}
	}
	return false
}
