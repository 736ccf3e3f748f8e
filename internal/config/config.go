package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"

	"github.com/uicli-dev/uicli/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "uicli.json"

	// DefaultRegistry is the default component library base URL.
	DefaultRegistry = "https://raw.githubusercontent.com/shivamsaksham/ui-comp-test/main"

	// DefaultTimeout bounds every remote fetch.
	DefaultTimeout = 30 * time.Second

	// RegistryEnv overrides the registry field when set.
	RegistryEnv = "UICLI_REGISTRY"

	// PackageManagerNone disables package installation.
	PackageManagerNone = "none"
)

// Config represents the uicli.json configuration.
type Config struct {
	// Registry is the base URL of the component library.
	Registry string `json:"registry,omitempty" validate:"required,url"`

	// Timeout is the per-fetch deadline as a Go duration string.
	Timeout string `json:"timeout,omitempty" validate:"omitempty,duration"`

	// Paths contains destination directories inside the project.
	Paths PathsConfig `json:"paths"`

	// Tailwind contains Tailwind CSS configuration.
	Tailwind TailwindConfig `json:"tailwind"`

	// PackageManager forces npm, pnpm, yarn, bun, or none.
	// Empty means detect from the lockfile.
	PackageManager string `json:"packageManager,omitempty" validate:"omitempty,oneof=npm pnpm yarn bun none"`

	// S3 configures s3:// registries.
	S3 S3Config `json:"s3"`

	// dir is the project root.
	dir string

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains destination directories, relative to the project root.
type PathsConfig struct {
	// Components receives component files and their stylesheets.
	Components string `json:"components,omitempty" validate:"required"`

	// Utils receives the shared class-merge helper.
	Utils string `json:"utils,omitempty" validate:"required"`

	// App receives the global stylesheet.
	App string `json:"app,omitempty" validate:"required"`
}

// TailwindConfig contains Tailwind CSS settings.
type TailwindConfig struct {
	// Config is the path to the Tailwind config file.
	// Empty means detect tailwind.config.{js,cjs,mjs,ts,json}.
	Config string `json:"config,omitempty"`
}

// S3Config configures the S3 component source.
type S3Config struct {
	// Region is the bucket region (default: the AWS profile or environment, then us-east-1).
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (S3-compatible stores).
	Endpoint string `json:"endpoint,omitempty" validate:"omitempty,url"`
}

// New creates a new Config with default values rooted at dir.
func New(dir string) *Config {
	return &Config{
		Registry: DefaultRegistry,
		Timeout:  DefaultTimeout.String(),
		Paths: PathsConfig{
			Components: "src/components/ui",
			Utils:      "src/utils",
			App:        "src/app",
		},
		dir: dir,
	}
}

// Load reads configuration from the specified directory.
// A missing uicli.json is not an error: defaults rooted at dir are returned.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := New(dir)
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail(err.Error()).
			Wrap(err)
	}

	cfg := New(filepath.Dir(path))
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that uicli.json is valid JSON").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New(c.dir)

	if c.Registry == "" {
		c.Registry = defaults.Registry
	}
	if c.Timeout == "" {
		c.Timeout = defaults.Timeout
	}
	if c.Paths.Components == "" {
		c.Paths.Components = defaults.Paths.Components
	}
	if c.Paths.Utils == "" {
		c.Paths.Utils = defaults.Paths.Utils
	}
	if c.Paths.App == "" {
		c.Paths.App = defaults.Paths.App
	}
}

// applyEnv applies environment overrides.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(RegistryEnv)); v != "" {
		c.Registry = v
	}
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance returns the shared validator used for Config.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			d, err := time.ParseDuration(fl.Field().String())
			return err == nil && d > 0
		})
		validateInst = v
	})
	return validateInst
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
		}
	} else {
		fields = append(fields, err.Error())
	}

	return errors.New("E121").
		WithDetail("Invalid fields: " + strings.Join(fields, ", ")).
		Wrap(err)
}

// Path returns the path where the config was loaded from, or "" when the
// defaults are in use.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the project root.
func (c *Config) Dir() string {
	return c.dir
}

// TimeoutDuration returns the per-fetch timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// ComponentsPath returns the absolute path to the components directory.
func (c *Config) ComponentsPath() string {
	return c.resolve(c.Paths.Components)
}

// UtilsPath returns the absolute path to the utilities directory.
func (c *Config) UtilsPath() string {
	return c.resolve(c.Paths.Utils)
}

// AppPath returns the absolute path to the application styles directory.
func (c *Config) AppPath() string {
	return c.resolve(c.Paths.App)
}

// TailwindConfigPath returns the configured Tailwind config path, or "" when
// it should be detected.
func (c *Config) TailwindConfigPath() string {
	if c.Tailwind.Config == "" {
		return ""
	}
	return c.resolve(c.Tailwind.Config)
}

// ContentPath returns an absolute path in the slash-separated, "./"-prefixed
// form Tailwind content globs use, relative to the project root.
func (c *Config) ContentPath(abs string) string {
	rel, err := filepath.Rel(c.dir, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || filepath.IsAbs(rel) {
		return rel
	}
	return "./" + rel
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// uicli.json. It returns startDir and false if none is found.
func FindProjectRoot(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return startDir, false
	}
	start := dir

	for {
		if Exists(dir) {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, false
		}
		dir = parent
	}
}

// LoadFromDir loads configuration for the project containing dir.
func LoadFromDir(dir string) (*Config, error) {
	root, _ := FindProjectRoot(dir)
	return Load(root)
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return LoadFromDir(wd)
}
