package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rbxtools/rbxc/internal/cache"
	"github.com/rbxtools/rbxc/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize rbxc in a project directory",
	Long: `Init creates the .rbxc directory with a default config.yaml and an
empty build cache. Run it once at the project root; build and status
find the directory by walking up from wherever they are invoked.

An existing config.yaml is left untouched.

Examples:
  rbxc init          # Initialize in the current directory
  rbxc init ~/proj   # Initialize in a specific directory
  rbxc init --force  # Reinitialize (discards the build cache)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if the cache already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	workDir := "."
	if len(args) > 0 {
		workDir = args[0]
	}

	configDir, err := config.EnsureConfigDir(workDir)
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, config.ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		data, err := yaml.Marshal(config.DefaultConfig())
		if err != nil {
			return fmt.Errorf("encoding default config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
		fmt.Printf("Created %s\n", configPath)
	} else {
		fmt.Printf("Config already exists at %s\n", configPath)
	}

	c, err := cache.Open(configDir)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer c.Close()

	if initForce {
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Println("Cleared build cache")
	}
	fmt.Printf("Cache ready at %s\n", c.Path())

	return nil
}
