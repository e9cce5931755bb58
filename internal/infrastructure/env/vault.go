package env

import (
	"fmt"
	"strings"

	"github.com/sosedoff/ansible-vault-go"

	"github.com/docklift/docklift/internal/infrastructure/fs"
)

// vaultSuffix marks --env files encrypted with ansible-vault.
const vaultSuffix = ".vault"

// VaultDecrypter opens the Ansible Vault envelope of an encrypted env file.
type VaultDecrypter interface {
	Decrypt(content, password string) (string, error)
}

// DefaultVaultDecrypter decrypts with ansible-vault-go.
type DefaultVaultDecrypter struct{}

// NewVaultDecrypter creates a new instance of the default vault decrypter.
func NewVaultDecrypter() VaultDecrypter {
	return &DefaultVaultDecrypter{}
}

// Decrypt returns the plaintext of an AES256 vault payload.
func (d *DefaultVaultDecrypter) Decrypt(content, password string) (string, error) {
	return vault.Decrypt(content, password)
}

// IsVaultFile reports whether an env file path names an encrypted file.
func IsVaultFile(path string) bool {
	return strings.HasSuffix(path, vaultSuffix)
}

// ReadVaultEnv decrypts the env file at path and returns its dotenv text.
// Errors name the file so a bad --env entry is easy to find.
func ReadVaultEnv(fileSystem fs.FileSystem, path, password string, decrypter VaultDecrypter) (string, error) {
	if password == "" {
		return "", fmt.Errorf("vault password is required for %s", path)
	}

	data, err := fileSystem.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read vault file %s: %w", path, err)
	}

	decrypted, err := decrypter.Decrypt(string(data), password)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s (wrong vault password?): %w", path, err)
	}

	return decrypted, nil
}
