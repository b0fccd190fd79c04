package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringService groups this application's secrets in the OS keychain.
const keyringService = "jobsieve"

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over the other sources.
	File string
	// KeyringAccount names an OS keychain account holding the secret. It is
	// consulted after File and before Value.
	KeyringAccount string
}

// Load returns the resolved secret value from the provided source, trying
// File, then KeyringAccount, then Value. The returned secret is always
// trimmed. An error is returned when the first configured source does not
// yield a usable secret.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	account := strings.TrimSpace(src.KeyringAccount)
	if account != "" {
		value, err := keyring.Get(keyringService, account)
		if err != nil {
			return "", fmt.Errorf("reading %s from keyring account %q: %w", name, account, err)
		}
		secret := strings.TrimSpace(value)
		if secret == "" {
			return "", fmt.Errorf("%s keyring account %q is empty", name, account)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
