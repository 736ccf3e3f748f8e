package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uicli-dev/uicli/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New("/project")

	if cfg.Registry != DefaultRegistry {
		t.Errorf("Registry = %q, want %q", cfg.Registry, DefaultRegistry)
	}
	if cfg.TimeoutDuration() != DefaultTimeout {
		t.Errorf("TimeoutDuration() = %v, want %v", cfg.TimeoutDuration(), DefaultTimeout)
	}
	if cfg.Paths.Components != "src/components/ui" {
		t.Errorf("Paths.Components = %q", cfg.Paths.Components)
	}
	if cfg.Dir() != "/project" {
		t.Errorf("Dir() = %q, want /project", cfg.Dir())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(RegistryEnv, "")
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}
	if got, want := cfg.ComponentsPath(), filepath.Join(tmpDir, "src", "components", "ui"); got != want {
		t.Errorf("ComponentsPath() = %q, want %q", got, want)
	}
}

func TestLoad_JSONC(t *testing.T) {
	t.Setenv(RegistryEnv, "")
	tmpDir := t.TempDir()

	configJSON := `{
  // mirror of the public library
  "registry": "https://mirror.example.test/ui",
  "timeout": "5s",
  "paths": {
    "components": "components/ui",
    /* keep defaults for utils */
    "app": "app",
  },
  "tailwind": {"config": "tailwind.config.ts"},
  "packageManager": "pnpm",
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Registry != "https://mirror.example.test/ui" {
		t.Errorf("Registry = %q", cfg.Registry)
	}
	if cfg.TimeoutDuration() != 5*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 5s", cfg.TimeoutDuration())
	}
	if cfg.Paths.Components != "components/ui" {
		t.Errorf("Paths.Components = %q", cfg.Paths.Components)
	}
	if cfg.Paths.Utils != "src/utils" {
		t.Errorf("Paths.Utils should keep default, got %q", cfg.Paths.Utils)
	}
	if cfg.PackageManager != "pnpm" {
		t.Errorf("PackageManager = %q", cfg.PackageManager)
	}
	if got, want := cfg.TailwindConfigPath(), filepath.Join(tmpDir, "tailwind.config.ts"); got != want {
		t.Errorf("TailwindConfigPath() = %q, want %q", got, want)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`{"registry": `), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir)
	if ue, ok := err.(*errors.Error); !ok || ue.Code != "E120" {
		t.Fatalf("expected E120, got %v", err)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv(RegistryEnv, "")

	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"bad registry", `{"registry": "not a url"}`, "Registry"},
		{"bad timeout", `{"timeout": "soon"}`, "Timeout"},
		{"negative timeout", `{"timeout": "-1s"}`, "Timeout"},
		{"bad package manager", `{"packageManager": "cargo"}`, "PackageManager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(tt.json), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(tmpDir)
			if ue, ok := err.(*errors.Error); !ok || ue.Code != "E121" {
				t.Fatalf("expected E121, got %v", err)
			}
			if !strings.Contains(err.(*errors.Error).Detail, tt.field) {
				t.Errorf("detail %q should mention %s", err.(*errors.Error).Detail, tt.field)
			}
		})
	}
}

func TestLoad_RegistryEnvOverride(t *testing.T) {
	t.Setenv(RegistryEnv, "s3://ui-bucket/library")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Registry != "s3://ui-bucket/library" {
		t.Errorf("Registry = %q", cfg.Registry)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "pages")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, found := FindProjectRoot(nested)
	if !found {
		t.Fatal("expected project root to be found")
	}
	if got != root {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}

	other := t.TempDir()
	got, found = FindProjectRoot(other)
	if found {
		t.Errorf("unexpected root found at %q", got)
	}
	if got != other {
		t.Errorf("FindProjectRoot() = %q, want start dir %q", got, other)
	}
}

func TestLoadFromDir(t *testing.T) {
	t.Setenv(RegistryEnv, "")
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{"paths": {"components": "ui"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(nested)
	if err != nil {
		t.Fatalf("LoadFromDir error: %v", err)
	}
	if got, want := cfg.ComponentsPath(), filepath.Join(root, "ui"); got != want {
		t.Errorf("ComponentsPath() = %q, want %q", got, want)
	}
}

func TestContentPath(t *testing.T) {
	cfg := New("/project")

	tests := []struct {
		abs  string
		want string
	}{
		{"/project/src/components/ui/button.tsx", "./src/components/ui/button.tsx"},
		{"/project/src/components/ui/**/*.{js,ts,jsx,tsx}", "./src/components/ui/**/*.{js,ts,jsx,tsx}"},
		{"/elsewhere/ui/a.tsx", "../elsewhere/ui/a.tsx"},
	}

	for _, tt := range tests {
		if got := cfg.ContentPath(tt.abs); got != tt.want {
			t.Errorf("ContentPath(%q) = %q, want %q", tt.abs, got, tt.want)
		}
	}
}

func TestAbsolutePathsAreKept(t *testing.T) {
	cfg := New("/project")
	cfg.Paths.Utils = "/shared/utils"

	if cfg.UtilsPath() != "/shared/utils" {
		t.Errorf("UtilsPath() = %q", cfg.UtilsPath())
	}
	if cfg.AppPath() != filepath.Join("/project", "src", "app") {
		t.Errorf("AppPath() = %q", cfg.AppPath())
	}
	if cfg.TailwindConfigPath() != "" {
		t.Errorf("TailwindConfigPath() should be empty when unset")
	}
}
