package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbxtools/rbxc/internal/cache"
	"github.com/rbxtools/rbxc/internal/config"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last recorded build",
	Long: `Status reports the most recent build recorded in the project cache:
when it ran, what it compiled, and where the outputs went.

Examples:
  rbxc status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	configDir, err := config.FindConfigDir(".")
	if err != nil {
		return fmt.Errorf("no %s directory found; run 'rbxc init' first", config.ConfigDirName)
	}

	c, err := cache.Open(configDir)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	last, err := c.LastBuild()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Println("No builds recorded")
			return nil
		}
		return err
	}

	fmt.Printf("Last build: %s (%s ago)\n",
		last.BuiltAt.Format(time.RFC3339),
		time.Since(last.BuiltAt).Round(time.Second))
	fmt.Printf("  Source:   %s\n", last.RootPath)
	fmt.Printf("  Compiled: %d nodes from %d files in %dms\n",
		last.NodeCount, last.FileCount, last.DurationMs)
	fmt.Printf("  Outputs:  %s\n", strings.Join(last.Outputs, ", "))

	if verbose {
		stats, err := c.GetStats()
		if err != nil {
			return err
		}
		fmt.Printf("  Cache:    %d indexed files, %d recorded builds\n",
			stats.FileCount, stats.BuildCount)
	}

	return nil
}
