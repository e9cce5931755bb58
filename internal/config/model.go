// Package config defines the docklift deployment descriptor and loads, validates
// and saves it as a structured text document.
package config

import (
	"net"
	"strconv"
)

// Default values applied when a field is omitted.
const (
	DefaultSSHPort    = 22
	DefaultDockerfile = "./Dockerfile"
	DefaultContext    = "."
)

// DeploymentConfig is the root of a deployment descriptor. It owns exactly one
// VPS connection and one application.
type DeploymentConfig struct {
	VPS         VPSConnection         `yaml:"vps" json:"vps" validate:"required"`
	Application ApplicationDescriptor `yaml:"application" json:"application" validate:"required"`
}

// VPSConnection describes how to reach the server the application is deployed to.
type VPSConnection struct {
	Host       string `yaml:"host" json:"host" validate:"required"`
	User       string `yaml:"user" json:"user" validate:"required"`
	SSHKeyPath string `yaml:"ssh_key_path" json:"ssh_key_path" validate:"required,exists"`
	Port       int    `yaml:"port,omitempty" json:"port,omitempty" validate:"min=1,max=65535"`
	// Email receives certificate-authority notifications.
	Email string `yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
}

// ApplicationDescriptor describes the deployable unit. Name is used to derive
// the names of containers and other resources.
type ApplicationDescriptor struct {
	Name           string `yaml:"name" json:"name" validate:"required"`
	Domain         string `yaml:"domain" json:"domain" validate:"required"`
	DockerfilePath string `yaml:"dockerfile,omitempty" json:"dockerfile,omitempty"`
	BuildContext   string `yaml:"context,omitempty" json:"context,omitempty"`
	// Port is the port the application listens on inside its container.
	// Nil leaves the choice to the deployment engine.
	Port         *int                       `yaml:"port,omitempty" json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Environment  map[string]string          `yaml:"environment,omitempty" json:"environment,omitempty"`
	Dependencies map[string]ServiceOverride `yaml:"dependencies,omitempty" json:"dependencies,omitempty" validate:"dive,keys,required,endkeys"` //nolint:lll // long struct tag needed for complete configuration
}

// ServiceOverride is an auxiliary service (database, cache, ...) composed
// alongside the application.
type ServiceOverride struct {
	Image       string            `yaml:"image,omitempty" json:"image,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty" json:"environment,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty" json:"volumes,omitempty"`
	Ports       []string          `yaml:"ports,omitempty" json:"ports,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	// Extra carries compose options that are not modelled explicitly.
	Extra map[string]Value `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// GetPort returns the SSH port, falling back to DefaultSSHPort when unset.
func (v VPSConnection) GetPort() int {
	if v.Port == 0 {
		return DefaultSSHPort
	}
	return v.Port
}

// Address returns the host:port pair to dial.
func (v VPSConnection) Address() string {
	return net.JoinHostPort(v.Host, strconv.Itoa(v.GetPort()))
}

// GetPort returns the application port and whether one was configured.
func (a *ApplicationDescriptor) GetPort() (int, bool) {
	if a.Port == nil {
		return 0, false
	}
	return *a.Port, true
}

// DependencyNames returns the dependency service names in sorted order.
func (a *ApplicationDescriptor) DependencyNames() []string {
	return sortedKeys(a.Dependencies)
}
