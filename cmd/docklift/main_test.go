package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/docklift/docklift/internal/config"
)

// execute runs the command tree with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldOutput, oldFlags := log.Writer(), log.Flags()
	t.Cleanup(func() {
		log.SetOutput(oldOutput)
		log.SetFlags(oldFlags)
	})

	var out bytes.Buffer
	root := NewApplication().NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func writeKey(t *testing.T) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)

	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600))
	return keyPath
}

func TestNewApplicationDefaults(t *testing.T) {
	app := NewApplication()
	root := app.NewRootCommand()

	require.NoError(t, root.ParseFlags([]string{}))
	assert.Equal(t, "docklift.yaml", app.opts.ConfigPath)
	assert.Empty(t, app.opts.EnvPaths)
	assert.Empty(t, app.opts.VaultPassword)
	assert.False(t, app.verbose)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantConfig   string
		wantEnv      []string
		wantPassword string
		wantVerbose  bool
	}{
		{
			name:       "short config flag",
			args:       []string{"-c", "custom.yaml"},
			wantConfig: "custom.yaml",
		},
		{
			name:         "all flags set",
			args:         []string{"--config", "prod.json", "--env", "prod.env", "--vault-password", "secret", "--verbose"},
			wantConfig:   "prod.json",
			wantEnv:      []string{"prod.env"},
			wantPassword: "secret",
			wantVerbose:  true,
		},
		{
			name:       "multiple env files",
			args:       []string{"--env", "base.env,prod.env", "--env", "secrets.vault"},
			wantConfig: "docklift.yaml",
			wantEnv:    []string{"base.env", "prod.env", "secrets.vault"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApplication()
			root := app.NewRootCommand()

			require.NoError(t, root.PersistentFlags().Parse(tt.args))
			assert.Equal(t, tt.wantConfig, app.opts.ConfigPath)
			assert.Equal(t, tt.wantEnv, app.opts.EnvPaths)
			assert.Equal(t, tt.wantPassword, app.opts.VaultPassword)
			assert.Equal(t, tt.wantVerbose, app.verbose)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "docklift version "+versionString+"\n", out)
}

func TestInitThenValidate(t *testing.T) {
	keyPath := writeKey(t)
	configPath := filepath.Join(t.TempDir(), "docklift.yaml")

	out, err := execute(t, "init", "-c", configPath,
		"--host", "203.0.113.10", "--user", "deploy", "--key", keyPath,
		"--name", "shop", "--domain", "shop.example.com", "--email", "ops@example.com", "--port", "3000")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+configPath)

	cfg, err := config.LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", cfg.VPS.Email)
	port, ok := cfg.Application.GetPort()
	assert.True(t, ok)
	assert.Equal(t, 3000, port)

	out, err = execute(t, "validate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid: shop (shop.example.com) on deploy@203.0.113.10:22, 0 dependencies")

	_, err = execute(t, "init", "-c", configPath,
		"--host", "h", "--user", "u", "--name", "n", "--domain", "d")
	assert.ErrorContains(t, err, "already exists")
}

func TestInitRequiresFlags(t *testing.T) {
	_, err := execute(t, "init", "-c", filepath.Join(t.TempDir(), "docklift.yaml"), "--host", "h")
	assert.ErrorContains(t, err, "required flag(s)")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, "validate", "-c", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var missing *config.MissingFileError
	assert.ErrorAs(t, err, &missing)
}

func TestValidateUsesEnvFiles(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeKey(t)

	envPath := filepath.Join(dir, "prod.env")
	require.NoError(t, os.WriteFile(envPath, []byte("DOCKLIFT_TEST_HOST=198.51.100.7\n"), 0600))
	require.NoError(t, os.Unsetenv("DOCKLIFT_TEST_HOST"))
	t.Cleanup(func() { os.Unsetenv("DOCKLIFT_TEST_HOST") })

	configPath := filepath.Join(dir, "docklift.yaml")
	content := "vps:\n  host: ${DOCKLIFT_TEST_HOST}\n  user: deploy\n  ssh_key_path: " + keyPath +
		"\napplication:\n  name: shop\n  domain: shop.example.com\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	out, err := execute(t, "validate", "-c", configPath, "--env", envPath)
	require.NoError(t, err)
	assert.Contains(t, out, "deploy@198.51.100.7:22")
}

func TestShowFormats(t *testing.T) {
	keyPath := writeKey(t)
	configPath := filepath.Join(t.TempDir(), "docklift.yaml")

	_, err := execute(t, "init", "-c", configPath,
		"--host", "203.0.113.10", "--user", "deploy", "--key", keyPath,
		"--name", "shop", "--domain", "shop.example.com")
	require.NoError(t, err)

	out, err := execute(t, "show", "-c", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "host: 203.0.113.10")

	out, err = execute(t, "show", "-c", configPath, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"host": "203.0.113.10"`)

	out, err = execute(t, "show", "-c", configPath, "-f", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[vps]")
	assert.Contains(t, out, "203.0.113.10")
}

func TestKeyCommand(t *testing.T) {
	keyPath := writeKey(t)
	configPath := filepath.Join(t.TempDir(), "docklift.yaml")

	_, err := execute(t, "init", "-c", configPath,
		"--host", "203.0.113.10", "--user", "deploy", "--key", keyPath,
		"--name", "shop", "--domain", "shop.example.com")
	require.NoError(t, err)

	out, err := execute(t, "key", "-c", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Fingerprint: SHA256:")
	assert.Contains(t, out, "docklift@shop")
}
