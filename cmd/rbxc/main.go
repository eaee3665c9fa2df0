// Package main is the entry point for the rbxc CLI tool.
package main

import (
	"github.com/rbxtools/rbxc/internal/cmd"
)

func main() {
	cmd.Execute()
}
