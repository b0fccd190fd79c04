package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoadFromValue(t *testing.T) {
	secret, err := Load(Source{Name: "api key", Value: "  s3cret  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "s3cret" {
		t.Fatalf("expected trimmed secret, got %q", secret)
	}
}

func TestLoadFilePrecedesValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	secret, err := Load(Source{Name: "api key", Value: "from-value", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-file" {
		t.Fatalf("expected file to win, got %q", secret)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want string
	}{
		{
			name: "missing file",
			src:  Source{Name: "api key", File: filepath.Join(t.TempDir(), "absent")},
			want: "reading api key from file",
		},
		{
			name: "empty file",
			src:  Source{Name: "api key"},
			want: "is empty",
		},
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("   \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tests[1].src.File = empty

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.src); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromKeyring(t *testing.T) {
	keyring.MockInit()

	if err := keyring.Set(keyringService, "gemini", "keyring-secret"); err != nil {
		t.Fatal(err)
	}

	secret, err := Load(Source{Name: "api key", Value: "from-value", KeyringAccount: "gemini"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "keyring-secret" {
		t.Fatalf("expected keyring to win over value, got %q", secret)
	}
}

func TestLoadKeyringAccountMissing(t *testing.T) {
	keyring.MockInit()

	_, err := Load(Source{Name: "api key", KeyringAccount: "absent"})
	if err == nil || !strings.Contains(err.Error(), "keyring account") {
		t.Fatalf("expected keyring error, got %v", err)
	}
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "api key"})
	if err == nil || !strings.Contains(err.Error(), "api key is not configured") {
		t.Fatalf("expected not configured error, got %v", err)
	}
}
