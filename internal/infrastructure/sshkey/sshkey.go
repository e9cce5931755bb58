// Package sshkey turns the VPS section of a deployment descriptor into SSH
// client material: the parsed private key, its fingerprint and a client
// configuration that a deployment engine can dial with.
package sshkey

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/docklift/docklift/internal/config"
	"github.com/docklift/docklift/internal/infrastructure/fs"
	"github.com/docklift/docklift/internal/infrastructure/prompt"
)

// DialTimeout bounds the TCP connect and handshake of clients built by ClientConfig.
const DialTimeout = 5 * time.Second

// LoadSigner reads and parses the private key at path. When the key is
// encrypted, passphrase is asked for the passphrase; a nil passphrase makes
// encrypted keys an error.
func LoadSigner(fileSystem fs.FileSystem, path string, passphrase prompt.SecretFunc) (ssh.Signer, error) {
	data, err := fileSystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err == nil {
		return signer, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("failed to parse SSH key %s: %w", path, err)
	}
	if passphrase == nil {
		return nil, fmt.Errorf("SSH key %s is encrypted and no passphrase is available", path)
	}

	secret, err := passphrase("Enter passphrase for " + path)
	if err != nil {
		return nil, fmt.Errorf("failed to get SSH key passphrase: %w", err)
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(data, []byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt SSH key %s: %w", path, err)
	}
	return signer, nil
}

// Fingerprint returns the SHA256 fingerprint of key as printed by ssh-keygen -l.
func Fingerprint(key ssh.PublicKey) string {
	return ssh.FingerprintSHA256(key)
}

// AuthorizedKey returns key as an authorized_keys line with an optional comment.
func AuthorizedKey(key ssh.PublicKey, comment string) string {
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(key)))
	if comment != "" {
		line += " " + comment
	}
	return line
}

// KnownHosts returns a host key callback backed by the given known_hosts files.
func KnownHosts(files ...string) (ssh.HostKeyCallback, error) {
	callback, err := knownhosts.New(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts: %w", err)
	}
	return callback, nil
}

// ClientConfig builds the SSH client configuration for vps. A nil
// hostKeyCallback accepts any host key.
func ClientConfig(vps config.VPSConnection, signer ssh.Signer, hostKeyCallback ssh.HostKeyCallback) *ssh.ClientConfig {
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // caller opted out of host key checking
	}

	return &ssh.ClientConfig{
		User:            vps.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         DialTimeout,
	}
}
