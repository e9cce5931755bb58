package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeKey creates a dummy private key file and returns its path.
func writeKey(t *testing.T, dir string) string {
	t.Helper()

	keyPath := filepath.Join(dir, "id_rsa")
	if err := os.WriteFile(keyPath, []byte("dummy private key"), 0600); err != nil {
		t.Fatalf("Failed to create private key file: %v", err)
	}
	return keyPath
}

// writeConfig writes content to name inside dir and returns the full path.
func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	configPath := filepath.Join(dir, name)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func intPtr(i int) *int {
	return &i
}
