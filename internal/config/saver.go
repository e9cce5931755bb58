package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/docklift/docklift/internal/infrastructure/fs"
)

// Saver defines the interface for writing configuration.
type Saver interface {
	Save(cfg *DeploymentConfig, configPath string) error
}

// DefaultSaver writes configuration files in the format implied by their extension.
type DefaultSaver struct {
	fileSystem fs.FileSystem
}

// NewSaver creates a saver backed by the given file system, or the OS file
// system when nil.
func NewSaver(fileSystem fs.FileSystem) Saver {
	if fileSystem == nil {
		fileSystem = fs.NewFileSystem()
	}
	return &DefaultSaver{fileSystem: fileSystem}
}

// SaveToFile writes cfg to path using the OS file system.
func SaveToFile(cfg *DeploymentConfig, path string) error {
	return NewSaver(nil).Save(cfg, path)
}

// Save creates missing parent directories and writes cfg to configPath,
// replacing any existing file. The written document is not re-validated.
func (s *DefaultSaver) Save(cfg *DeploymentConfig, configPath string) error {
	format := FormatForPath(configPath)
	data, err := Marshal(cfg, format)
	if err != nil {
		return fmt.Errorf("failed to encode %s config: %w", format, err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := s.fileSystem.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := s.fileSystem.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("saved %s configuration to %s", format, configPath)
	return nil
}
