package credential

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const serviceName = "planwright"

// knownBackends is the list of backends checked by List().
var knownBackends = []string{"custom", "openai", "anthropic", "groq"}

// Vault provides secure API key storage using the OS keychain,
// with fallback to environment variables.
type Vault struct{}

// NewVault creates a new Vault instance.
func NewVault() *Vault {
	return &Vault{}
}

// Set stores an API key for the given backend in the OS keychain.
func (v *Vault) Set(backend, key string) error {
	return keyring.Set(serviceName, backend, key)
}

// Get retrieves the API key for the given backend. It first checks the
// OS keychain, then falls back to the environment variable
// PLANWRIGHT_KEY_{UPPER(backend)}.
func (v *Vault) Get(backend string) (string, error) {
	secret, err := keyring.Get(serviceName, backend)
	if err == nil && secret != "" {
		return secret, nil
	}

	envKey := "PLANWRIGHT_KEY_" + strings.ToUpper(backend)
	if val := os.Getenv(envKey); val != "" {
		return val, nil
	}

	return "", fmt.Errorf("no key found for backend %q: not in keychain and %s not set", backend, envKey)
}

// Delete removes the API key for the given backend from the OS keychain.
func (v *Vault) Delete(backend string) error {
	return keyring.Delete(serviceName, backend)
}

// List returns the names of known backends that currently have keys stored.
// It checks both the keychain and environment variables for each backend.
func (v *Vault) List() ([]string, error) {
	var backends []string

	for _, backend := range knownBackends {
		secret, err := keyring.Get(serviceName, backend)
		if err == nil && secret != "" {
			backends = append(backends, backend)
			continue
		}

		envKey := "PLANWRIGHT_KEY_" + strings.ToUpper(backend)
		if val := os.Getenv(envKey); val != "" {
			backends = append(backends, backend)
		}
	}

	return backends, nil
}

// ResolveKeyRef parses a key reference and retrieves the corresponding API key.
// Supported formats:
//   - "keyring://planwright/<backend>" (preferred)
//   - "env:VARIABLE_NAME" (environment variable)
//   - "file:///path/to/key" (plain-text file)
//
// Anything else is treated as a literal credential value, so operators can
// paste a key straight into the config file if they accept the tradeoff.
func (v *Vault) ResolveKeyRef(keyRef string) (string, error) {
	if strings.HasPrefix(keyRef, "keyring://") {
		path := strings.TrimPrefix(keyRef, "keyring://")
		parts := strings.SplitN(path, "/", 2)
		if len(parts) != 2 || parts[0] != serviceName || parts[1] == "" {
			return "", fmt.Errorf("invalid key reference format: %q (expected \"keyring://planwright/<backend>\")", keyRef)
		}
		return v.Get(parts[1])
	}

	if strings.HasPrefix(keyRef, "env:") {
		envVar := strings.TrimPrefix(keyRef, "env:")
		if val := os.Getenv(envVar); val != "" {
			return val, nil
		}
		return "", fmt.Errorf("environment variable %q is not set", envVar)
	}

	if strings.HasPrefix(keyRef, "file://") {
		filePath := strings.TrimPrefix(keyRef, "file://")
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("reading key file %q: %w", filePath, err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", fmt.Errorf("key file %q is empty", filePath)
		}
		return key, nil
	}

	return keyRef, nil
}
