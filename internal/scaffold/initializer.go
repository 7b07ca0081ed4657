// Package scaffold writes a starter storefront.yml.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/storefront/internal/config"
	"github.com/dyluth/storefront/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// Template returns the embedded starter configuration.
func Template() ([]byte, error) {
	data, err := templatesFS.ReadFile("templates/storefront.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read storefront.yml template: %w", err)
	}
	return data, nil
}

// Initialize writes storefront.yml into dir and returns its path.
// An existing file is only replaced when force is true.
func Initialize(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.FileName)

	if force {
		if err := handleForce(path); err != nil {
			return "", err
		}
	} else if err := CheckExisting(dir); err != nil {
		return "", err
	}

	content, err := Template()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The written file must load cleanly
	if _, err := config.Load(path); err != nil {
		return "", fmt.Errorf("created %s is invalid: %w", path, err)
	}

	return path, nil
}

// handleForce removes an existing config file if present
func handleForce(path string) error {
	if _, err := os.Stat(path); err == nil {
		printer.Warning("Removing existing %s...\n", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// PrintSuccess prints the created file and next steps.
func PrintSuccess(path string) {
	printer.Success("Created %s\n", path)
	printer.Println("\nNext steps:")
	printer.Println("  1. Set backend.url to your shop API")
	printer.Println("  2. Run 'storefront signin' to start a session")
	printer.Println("  3. Run 'storefront catalog' to browse products")
}
