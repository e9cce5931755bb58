// Package docklift provides a public API for working with docklift deployment
// descriptors. It exposes the descriptor types, loading and saving, a fluent
// builder, and the SSH client configuration derived from a descriptor so that
// deployment engines can be built on top of it.
package docklift

import (
	"golang.org/x/crypto/ssh"

	"github.com/docklift/docklift/internal/config"
	"github.com/docklift/docklift/internal/infrastructure/fs"
	"github.com/docklift/docklift/internal/infrastructure/prompt"
	"github.com/docklift/docklift/internal/infrastructure/sshkey"
)

// DeploymentConfig represents a complete deployment descriptor
type DeploymentConfig = config.DeploymentConfig

// VPSConnection represents the target server connection
type VPSConnection = config.VPSConnection

// ApplicationDescriptor represents the deployed application
type ApplicationDescriptor = config.ApplicationDescriptor

// ServiceOverride represents an auxiliary service
type ServiceOverride = config.ServiceOverride

// Value represents a dynamic passthrough option
type Value = config.Value

// Builder represents a descriptor builder
type Builder = config.Builder

// MissingFileError is returned when the descriptor file does not exist
type MissingFileError = config.MissingFileError

// ValidationError describes a single failed field check
type ValidationError = config.ValidationError

// ValidationErrors collects every failed field check of one validation pass
type ValidationErrors = config.ValidationErrors

// SerializationError is returned when a descriptor cannot be parsed
type SerializationError = config.SerializationError

// NewBuilder creates a new descriptor builder
func NewBuilder() *Builder {
	return config.NewBuilder()
}

// LoadFromFile loads and validates the descriptor at path
func LoadFromFile(path string) (*DeploymentConfig, error) {
	return config.LoadFromFile(path)
}

// LoadFromFileWithEnv loads the descriptor at path after substituting
// ${VAR} references with environment variables
func LoadFromFileWithEnv(path string) (*DeploymentConfig, error) {
	return config.NewLoader(config.WithEnvExpansion(true)).Load(path)
}

// SaveToFile writes cfg to path in the format implied by its extension
func SaveToFile(cfg *DeploymentConfig, path string) error {
	return config.SaveToFile(cfg, path)
}

// ClientConfig reads the descriptor's SSH key and returns a client
// configuration for its VPS. Encrypted keys are unlocked through a terminal
// prompt. A nil hostKeyCallback accepts any host key.
func ClientConfig(vps VPSConnection, hostKeyCallback ssh.HostKeyCallback) (*ssh.ClientConfig, error) {
	signer, err := sshkey.LoadSigner(fs.NewFileSystem(), vps.SSHKeyPath, prompt.Secret)
	if err != nil {
		return nil, err
	}
	return sshkey.ClientConfig(vps, signer, hostKeyCallback), nil
}
