package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVPSConnection(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	keyPath := writeKey(t, home)

	tests := []struct {
		name        string
		input       VPSConnection
		wantErr     bool
		wantField   string
		wantPort    int
		wantKeyPath string
	}{
		{
			name:        "defaults port to 22",
			input:       VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: keyPath},
			wantPort:    22,
			wantKeyPath: keyPath,
		},
		{
			name:        "keeps explicit port",
			input:       VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: keyPath, Port: 2222},
			wantPort:    2222,
			wantKeyPath: keyPath,
		},
		{
			name:        "expands home directory",
			input:       VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: "~/id_rsa"},
			wantPort:    22,
			wantKeyPath: keyPath,
		},
		{
			name:      "missing key file",
			input:     VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: "/nonexistent/key"},
			wantErr:   true,
			wantField: "vps.ssh_key_path",
		},
		{
			name:      "missing host",
			input:     VPSConnection{User: "deploy", SSHKeyPath: keyPath},
			wantErr:   true,
			wantField: "vps.host",
		},
		{
			name:      "missing user",
			input:     VPSConnection{Host: "1.2.3.4", SSHKeyPath: keyPath},
			wantErr:   true,
			wantField: "vps.user",
		},
		{
			name:      "missing key path",
			input:     VPSConnection{Host: "1.2.3.4", User: "deploy"},
			wantErr:   true,
			wantField: "vps.ssh_key_path",
		},
		{
			name:      "port out of range",
			input:     VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: keyPath, Port: 70000},
			wantErr:   true,
			wantField: "vps.port",
		},
		{
			name:      "invalid email",
			input:     VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: keyPath, Email: "not-an-email"},
			wantErr:   true,
			wantField: "vps.email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vps, err := NewVPSConnection(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var errs ValidationErrors
				require.True(t, errors.As(err, &errs), "expected ValidationErrors, got %T", err)
				assert.True(t, errs.HasField(tt.wantField), "expected failure on %s, got %v", tt.wantField, err)
				assert.Equal(t, VPSConnection{}, vps)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, vps.Port)
			assert.Equal(t, tt.wantKeyPath, vps.SSHKeyPath)
		})
	}
}

func TestMissingKeyErrorMentionsPath(t *testing.T) {
	_, err := NewVPSConnection(VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: "/nonexistent/key"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "/nonexistent/key", validationErr.Value)
	assert.Contains(t, err.Error(), "/nonexistent/key")
}

func TestKeyDirectoryCountsAsExisting(t *testing.T) {
	dir := t.TempDir()

	vps, err := NewVPSConnection(VPSConnection{Host: "h", User: "u", SSHKeyPath: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, vps.SSHKeyPath)
}

func TestNewApplicationDescriptor(t *testing.T) {
	app, err := NewApplicationDescriptor(ApplicationDescriptor{Name: "blog", Domain: "blog.example.com"})
	require.NoError(t, err)

	assert.Equal(t, DefaultDockerfile, app.DockerfilePath)
	assert.Equal(t, DefaultContext, app.BuildContext)
	assert.Nil(t, app.Port)
	_, ok := app.GetPort()
	assert.False(t, ok)
	assert.Equal(t, map[string]string{}, app.Environment)
	assert.Equal(t, map[string]ServiceOverride{}, app.Dependencies)
}

func TestNewApplicationDescriptorErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     ApplicationDescriptor
		wantField string
	}{
		{"missing name", ApplicationDescriptor{Domain: "blog.example.com"}, "application.name"},
		{"missing domain", ApplicationDescriptor{Name: "blog"}, "application.domain"},
		{"explicit zero port", ApplicationDescriptor{Name: "blog", Domain: "d", Port: intPtr(0)}, "application.port"},
		{"port too large", ApplicationDescriptor{Name: "blog", Domain: "d", Port: intPtr(65536)}, "application.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewApplicationDescriptor(tt.input)
			require.Error(t, err)

			var errs ValidationErrors
			require.True(t, errors.As(err, &errs))
			assert.True(t, errs.HasField(tt.wantField), "expected failure on %s, got %v", tt.wantField, err)
		})
	}
}

func TestNewApplicationDescriptorRejectsEmptyDependencyName(t *testing.T) {
	_, err := NewApplicationDescriptor(ApplicationDescriptor{
		Name:         "blog",
		Domain:       "blog.example.com",
		Dependencies: map[string]ServiceOverride{"": {Image: "redis"}},
	})

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
}

func TestNewApplicationDescriptorDoesNotMutateInput(t *testing.T) {
	deps := map[string]ServiceOverride{"db": {Image: "postgres:15"}}
	input := ApplicationDescriptor{Name: "blog", Domain: "blog.example.com", Dependencies: deps}

	app, err := NewApplicationDescriptor(input)
	require.NoError(t, err)

	assert.Nil(t, deps["db"].Volumes, "caller's map must not be normalized in place")
	assert.Equal(t, []string{}, app.Dependencies["db"].Volumes)

	app.Dependencies["db"] = ServiceOverride{Image: "mysql"}
	assert.Equal(t, "postgres:15", deps["db"].Image)
}

func TestNewServiceOverride(t *testing.T) {
	svc := NewServiceOverride(ServiceOverride{Image: "redis:7", Ports: []string{"6379:6379"}})

	assert.Equal(t, "redis:7", svc.Image)
	assert.Equal(t, []string{"6379:6379"}, svc.Ports)
	assert.Equal(t, map[string]string{}, svc.Environment)
	assert.Equal(t, []string{}, svc.Volumes)
	assert.Equal(t, []string{}, svc.DependsOn)
	assert.Equal(t, map[string]Value{}, svc.Extra)

	empty := NewServiceOverride(ServiceOverride{})
	assert.Empty(t, empty.Image)
}

func TestNewDeploymentConfigPropagatesNestedFailure(t *testing.T) {
	keyPath := writeKey(t, t.TempDir())

	cfg, err := NewDeploymentConfig(
		VPSConnection{Host: "1.2.3.4", User: "deploy", SSHKeyPath: keyPath},
		ApplicationDescriptor{Name: "blog"},
	)
	require.Error(t, err)
	assert.Nil(t, cfg)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.True(t, errs.HasField("application.domain"))
}

func TestNewDeploymentConfigRequiresBothSections(t *testing.T) {
	_, err := NewDeploymentConfig(VPSConnection{}, ApplicationDescriptor{})

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.True(t, errs.HasField("vps"))
	assert.True(t, errs.HasField("application"))
}

func TestValidatorHomeDirFailure(t *testing.T) {
	v := NewValidator(WithHomeDir(func() (string, error) {
		return "", errors.New("no home")
	}))

	vps := VPSConnection{Host: "h", User: "u", SSHKeyPath: "~/.ssh/id_rsa"}
	err := v.ValidateVPS(&vps)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "vps.ssh_key_path", validationErr.Field)
	assert.Contains(t, err.Error(), "no home")
}

func TestExpandHome(t *testing.T) {
	home := filepath.Join(string(os.PathSeparator), "home", "deploy")
	homeDir := func() (string, error) { return home, nil }

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/.ssh/id_rsa", filepath.Join(home, ".ssh", "id_rsa")},
		{"/etc/keys/id_rsa", "/etc/keys/id_rsa"},
		{"keys/id_rsa", "keys/id_rsa"},
		{"~other/id_rsa", "~other/id_rsa"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := expandHome(tt.input, homeDir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
