package gitsync

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"mercator-hq/ganymede/pkg/config"
)

// AuthProvider supplies git transport credentials.
type AuthProvider interface {
	// GetAuth returns the transport authentication method.
	GetAuth() (transport.AuthMethod, error)

	// Type returns the auth type for logging purposes.
	Type() string
}

// TokenAuth implements token-based HTTPS authentication. It covers
// GitHub, GitLab, and Bitbucket access tokens.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a token-based authentication provider. The
// token needs repository read permission.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// GetAuth returns HTTP basic auth carrying the token as password. The
// username is ignored by token-authenticated remotes.
func (a *TokenAuth) GetAuth() (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	return &githttp.BasicAuth{
		Username: "git",
		Password: a.token,
	}, nil
}

// Type returns the authentication type.
func (a *TokenAuth) Type() string {
	return "token"
}

// SSHAuth implements SSH public key authentication with an optional
// passphrase.
type SSHAuth struct {
	keyPath    string
	passphrase string
}

// NewSSHAuth creates an SSH key authentication provider. The
// passphrase is empty for unencrypted keys.
func NewSSHAuth(keyPath, passphrase string) *SSHAuth {
	return &SSHAuth{
		keyPath:    keyPath,
		passphrase: passphrase,
	}
}

// GetAuth loads the private key and returns SSH public key
// authentication. The key file must exist and must not be readable by
// group or others.
func (a *SSHAuth) GetAuth() (transport.AuthMethod, error) {
	if a.keyPath == "" {
		return nil, fmt.Errorf("ssh key path cannot be empty")
	}

	info, err := os.Stat(a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access SSH key file: %w", err)
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	auth, err := gitssh.NewPublicKeysFromFile("git", a.keyPath, a.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}

	return auth, nil
}

// Type returns the authentication type.
func (a *SSHAuth) Type() string {
	return "ssh"
}

// NoAuth is the provider for public repositories.
type NoAuth struct{}

// NewNoAuth creates a no-authentication provider.
func NewNoAuth() *NoAuth {
	return &NoAuth{}
}

// GetAuth returns nil authentication.
func (a *NoAuth) GetAuth() (transport.AuthMethod, error) {
	return nil, nil
}

// Type returns the authentication type.
func (a *NoAuth) Type() string {
	return "none"
}

// NewAuthProvider builds the provider named by the configuration.
// Supported types: "token", "ssh", "none". Token and passphrase values
// go through environment expansion, so "${GITHUB_TOKEN}" in a config
// file resolves at startup rather than being used literally.
func NewAuthProvider(cfg *config.GitAuthConfig) (AuthProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config cannot be nil")
	}

	switch cfg.Type {
	case "token":
		token := os.ExpandEnv(cfg.Token)
		if token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return NewTokenAuth(token), nil

	case "ssh":
		if cfg.SSHKeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires ssh_key_path")
		}
		return NewSSHAuth(cfg.SSHKeyPath, os.ExpandEnv(cfg.SSHKeyPassphrase)), nil

	case "none", "":
		return NewNoAuth(), nil

	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}
