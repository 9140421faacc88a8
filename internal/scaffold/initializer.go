// Package scaffold writes a starter simpleboard.yml for the init command.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/simpleboard/internal/config"
)

// ConfigFile is the name of the generated configuration file.
const ConfigFile = "simpleboard.yml"

//go:embed templates/*
var templatesFS embed.FS

// Initialize writes the starter configuration into dir. If force is true an
// existing simpleboard.yml is replaced.
func Initialize(dir string, force bool) error {
	path := filepath.Join(dir, ConfigFile)

	if force {
		if err := handleForce(path); err != nil {
			return err
		}
	}

	content, err := templatesFS.ReadFile("templates/simpleboard.yml.tmpl")
	if err != nil {
		return fmt.Errorf("failed to read %s template: %w", ConfigFile, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The template must load exactly like a user's file would.
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("created %s is invalid: %w", ConfigFile, err)
	}

	return nil
}

// handleForce removes an existing configuration file
func handleForce(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	fmt.Printf("⚠️  Removing existing %s...\n", ConfigFile)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", ConfigFile, err)
	}
	return nil
}

// PrintSuccess prints the success message with the created file
func PrintSuccess(dir string) {
	fmt.Println("\n✅ Successfully initialized simpleboard!")
	fmt.Println("\nCreated:")
	fmt.Printf("  ✓ %s\n", filepath.Join(dir, ConfigFile))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit boards, prefixes and viewers in simpleboard.yml")
	fmt.Println("  2. Run 'simpleboard preview' to render the boards in the terminal")
	fmt.Println("  3. Run 'simpleboard serve' to run them on Redis")
}
