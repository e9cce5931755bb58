package config

// Builder facilitates the construction of deployment configurations
// using a fluent interface pattern.
type Builder struct {
	config *DeploymentConfig
}

// NewBuilder creates and returns a new Builder instance with an initialized
// empty configuration.
func NewBuilder() *Builder {
	return &Builder{
		config: &DeploymentConfig{},
	}
}

// VPS sets the connection details of the target server.
func (b *Builder) VPS(host, user, sshKeyPath string) *Builder {
	b.config.VPS.Host = host
	b.config.VPS.User = user
	b.config.VPS.SSHKeyPath = sshKeyPath
	return b
}

// SSHPort overrides the default SSH port.
func (b *Builder) SSHPort(port int) *Builder {
	b.config.VPS.Port = port
	return b
}

// Email sets the address used for certificate notifications.
func (b *Builder) Email(email string) *Builder {
	b.config.VPS.Email = email
	return b
}

// Application sets the application name and domain.
func (b *Builder) Application(name, domain string) *Builder {
	b.config.Application.Name = name
	b.config.Application.Domain = domain
	return b
}

// Dockerfile sets the Dockerfile path relative to the build context.
func (b *Builder) Dockerfile(path string) *Builder {
	b.config.Application.DockerfilePath = path
	return b
}

// BuildContext sets the docker build context.
func (b *Builder) BuildContext(dir string) *Builder {
	b.config.Application.BuildContext = dir
	return b
}

// Port sets the port the application listens on.
func (b *Builder) Port(port int) *Builder {
	b.config.Application.Port = &port
	return b
}

// Env adds an application environment variable.
func (b *Builder) Env(key, value string) *Builder {
	if b.config.Application.Environment == nil {
		b.config.Application.Environment = map[string]string{}
	}
	b.config.Application.Environment[key] = value
	return b
}

// AddDependency adds or replaces an auxiliary service.
func (b *Builder) AddDependency(name string, svc ServiceOverride) *Builder {
	if b.config.Application.Dependencies == nil {
		b.config.Application.Dependencies = map[string]ServiceOverride{}
	}
	b.config.Application.Dependencies[name] = svc
	return b
}

// GetConfig returns the configuration as built so far, without validation.
func (b *Builder) GetConfig() *DeploymentConfig {
	return b.config
}

// Build validates the configuration and returns an independent copy of it.
func (b *Builder) Build() (*DeploymentConfig, error) {
	return NewDeploymentConfig(b.config.VPS, b.config.Application)
}
