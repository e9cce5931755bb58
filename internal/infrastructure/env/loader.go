// Package env loads variables from dotenv files, optionally encrypted with
// Ansible Vault, into the process environment so that ${VAR} references in
// a deployment descriptor can be resolved.
package env

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/docklift/docklift/internal/infrastructure/fs"
	"github.com/docklift/docklift/internal/infrastructure/prompt"
)

// Loader defines the interface for loading environment variables.
type Loader interface {
	Load(path, vaultPassword string) error
}

// DefaultLoader implements the Loader interface using godotenv.
type DefaultLoader struct {
	fileSystem     fs.FileSystem
	vaultDecrypter VaultDecrypter
	promptSecret   prompt.SecretFunc
}

// NewLoader creates a new environment loader with default implementations.
func NewLoader() Loader {
	return &DefaultLoader{
		fileSystem:     fs.NewFileSystem(),
		vaultDecrypter: NewVaultDecrypter(),
		promptSecret:   prompt.Secret,
	}
}

// Load loads environment variables from a file. Variables already present in
// the environment are not overridden by plain dotenv files.
func (l *DefaultLoader) Load(path, vaultPassword string) error {
	if path == "" {
		return nil
	}

	log.Printf("loading environment from %s", path)

	if IsVaultFile(path) {
		return l.loadVaultFile(path, vaultPassword)
	}

	return godotenv.Load(path)
}

// loadVaultFile loads environment variables from an Ansible Vault encrypted file.
func (l *DefaultLoader) loadVaultFile(path, password string) error {
	password, err := l.resolveVaultPassword(password)
	if err != nil {
		return err
	}

	decrypted, err := ReadVaultEnv(l.fileSystem, path, password, l.vaultDecrypter)
	if err != nil {
		return err
	}

	return setEnvironmentVariables(decrypted)
}

// resolveVaultPassword picks the password: explicit value, then VAULT_PASSWORD,
// then an interactive prompt.
func (l *DefaultLoader) resolveVaultPassword(password string) (string, error) {
	if password != "" {
		return password, nil
	}

	if envPwd := os.Getenv("VAULT_PASSWORD"); envPwd != "" {
		return envPwd, nil
	}

	promptedPwd, err := l.promptSecret("Enter vault password")
	if err != nil {
		return "", fmt.Errorf("failed to get vault password: %w", err)
	}
	return promptedPwd, nil
}

// setEnvironmentVariables parses and sets environment variables from decrypted content
func setEnvironmentVariables(decrypted string) error {
	envMap, err := godotenv.Unmarshal(decrypted)
	if err != nil {
		return fmt.Errorf("environment unmarshaling failed: %w", err)
	}

	for k, v := range envMap {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to set environment variable %s: %w", k, err)
		}
	}

	return nil
}
