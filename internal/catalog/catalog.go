// Package catalog maps component names to the npm packages they import.
//
// The catalog is compiled into the binary and is read-only for the life of
// the process. Lookups never touch the network or the filesystem.
package catalog

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Requirement is a package requirement in name@range form.
type Requirement string

// Catalog is the static dependency specification.
type Catalog struct {
	// Shared lists requirements of the shared utility module.
	Shared []Requirement `yaml:"shared" validate:"dive,requirement"`

	// Components maps component names to their requirements.
	Components map[string][]Requirement `yaml:"components" validate:"dive,keys,component,endkeys,dive,requirement"`
}

var (
	namePattern        = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)
	requirementPattern = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*(@[^\s@]+)?$`)

	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// MaxNameLength bounds component names.
const MaxNameLength = 64

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("component", func(fl validator.FieldLevel) bool {
			return namePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("requirement", func(fl validator.FieldLevel) bool {
			return requirementPattern.MatchString(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}

// ValidateName rejects component names that are not alphanumeric plus hyphen.
// Names are interpolated into URLs and filesystem paths, so anything that
// could express a path segment is refused.
func ValidateName(name string) error {
	err := validatorInstance().Var(name, fmt.Sprintf("required,max=%d,component", MaxNameLength))
	if err != nil {
		return fmt.Errorf("component name %q must match %s (max %d chars)", name, namePattern.String(), MaxNameLength)
	}
	return nil
}

// ValidName reports whether name passes ValidateName.
func ValidName(name string) bool {
	return ValidateName(name) == nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if c.Components == nil {
		c.Components = map[string][]Requirement{}
	}
	if err := validatorInstance().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Load returns the embedded catalog.
func Load() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embeddedCatalog)
	})
	return defaultCatalog, defaultErr
}

// DependenciesFor returns the requirements of a component in declared order.
// Unknown names yield an empty slice.
func (c *Catalog) DependenciesFor(name string) []Requirement {
	deps := c.Components[name]
	out := make([]Requirement, len(deps))
	copy(out, deps)
	return out
}

// AllDependencies returns every requirement in the catalog, shared ones
// included, with duplicates removed. The result is sorted.
func (c *Catalog) AllDependencies() []Requirement {
	seen := make(map[Requirement]bool)
	var all []Requirement

	add := func(reqs []Requirement) {
		for _, r := range reqs {
			if !seen[r] {
				seen[r] = true
				all = append(all, r)
			}
		}
	}

	add(c.Shared)
	for _, deps := range c.Components {
		add(deps)
	}

	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// Has reports whether the catalog declares name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Components[name]
	return ok
}

// Names returns the declared component names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Components))
	for name := range c.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Strings converts requirements to plain strings for command arguments.
func Strings(reqs []Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = string(r)
	}
	return out
}
