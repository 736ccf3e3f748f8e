package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/uicli-dev/uicli/internal/catalog"
	"github.com/uicli-dev/uicli/internal/config"
	"github.com/uicli-dev/uicli/internal/errors"
	"github.com/uicli-dev/uicli/internal/fetch"
	"github.com/uicli-dev/uicli/internal/install"
	"github.com/uicli-dev/uicli/internal/logging"
	"github.com/uicli-dev/uicli/internal/metrics"
	"github.com/uicli-dev/uicli/internal/pkgmgr"
	"github.com/uicli-dev/uicli/internal/tailwind"
)

// TracerName is the OpenTelemetry instrumentation name.
const TracerName = "uicli"

// ContentGlob is appended to the components directory to form the content
// entry written by Init.
const ContentGlob = "**/*.{js,ts,jsx,tsx}"

// Registry installs components into one project.
type Registry struct {
	config   *config.Config
	catalog  *catalog.Catalog
	source   fetch.Source
	packages pkgmgr.Installer
	logger   *logging.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithSource replaces the library source derived from the config.
func WithSource(src fetch.Source) Option {
	return func(r *Registry) {
		r.source = src
	}
}

// WithCatalog replaces the embedded dependency catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Registry) {
		r.catalog = c
	}
}

// WithPackageInstaller replaces the package manager runner.
func WithPackageInstaller(p pkgmgr.Installer) Option {
	return func(r *Registry) {
		r.packages = p
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTracer sets the tracer. The default is the global tracer named
// TracerName.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = t
	}
}

// New creates a Registry for the project described by cfg.
func New(cfg *config.Config, opts ...Option) (*Registry, error) {
	r := &Registry{config: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logging.Nop()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(TracerName)
	}
	if r.catalog == nil {
		c, err := catalog.Load()
		if err != nil {
			return nil, err
		}
		r.catalog = c
	}
	if r.source == nil {
		src, err := fetch.NewSource(cfg.Registry, fetch.Options{
			Timeout: cfg.TimeoutDuration(),
			S3: fetch.S3Options{
				Region:   cfg.S3.Region,
				Endpoint: cfg.S3.Endpoint,
			},
		})
		if err != nil {
			return nil, errors.New("E121").
				WithDetail(err.Error()).
				WithSuggestion("Set registry to an https://, s3:// or file:// URL").
				Wrap(err)
		}
		r.source = src
	}
	if r.packages == nil {
		r.packages = pkgmgr.NewRunner(pkgmgr.Manager(cfg.PackageManager))
	}

	return r, nil
}

// Catalog returns the dependency catalog in use.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// Result describes what an Install or Init did.
type Result struct {
	// Component is the installed component; empty for Init.
	Component string

	// Files lists the files written, in order.
	Files []string

	// Version is the component's @version tag, if it has one.
	Version string

	// Stylesheet reports whether a component stylesheet was written.
	Stylesheet bool

	// Dependencies are the packages handed to the package manager.
	Dependencies []catalog.Requirement

	// ContentEntry is the Tailwind content entry for the installed files.
	ContentEntry string

	// ConfigPath is the Tailwind config that was patched, if one was found.
	ConfigPath string

	// ConfigResult is the outcome of the Tailwind patch.
	ConfigResult tailwind.Result
}

// Install adds one component to the project.
func (r *Registry) Install(ctx context.Context, name string) (res *Result, err error) {
	ctx, span := r.tracer.Start(ctx, "registry.Install",
		trace.WithAttributes(attribute.String("uicli.component", name)))
	defer func() { endSpan(span, err) }()

	if verr := catalog.ValidateName(name); verr != nil {
		return nil, errors.New("E110").
			WithDetail(verr.Error()).
			WithSuggestion("Run 'uicli list' to see available components").
			Wrap(verr)
	}

	log := r.logger.With("component", name)
	res = &Result{Component: name}

	if !r.catalog.Has(name) {
		log.Debug("component has no catalog entry; no packages to install")
	}
	res.Dependencies = r.catalog.DependenciesFor(name)
	if err := r.installPackages(ctx, res.Dependencies); err != nil {
		return nil, err
	}

	asset := fetch.ComponentAsset(name)
	content, err := r.fetch(ctx, asset)
	if err != nil {
		return nil, err
	}

	componentPath := filepath.Join(r.config.ComponentsPath(), asset.FileName())
	if err := r.write(asset, componentPath, content); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, componentPath)
	res.Version, _ = fetch.VersionTag(content)
	span.SetAttributes(attribute.String("uicli.version", res.Version))

	style := fetch.StylesheetAsset(name)
	css, ferr := r.fetch(ctx, style)
	if ferr != nil {
		log.WithFields(map[string]any{"error": ferr.Error()}).Debug("no stylesheet installed")
	} else {
		stylePath := filepath.Join(r.config.ComponentsPath(), style.FileName())
		if err := r.write(style, stylePath, css); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, stylePath)
		res.Stylesheet = true
	}

	res.ContentEntry = r.config.ContentPath(componentPath)
	res.ConfigPath, res.ConfigResult, err = r.patch(res.ContentEntry)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Init bootstraps the project's shared files and packages.
func (r *Registry) Init(ctx context.Context) (res *Result, err error) {
	ctx, span := r.tracer.Start(ctx, "registry.Init")
	defer func() { endSpan(span, err) }()

	res = &Result{Dependencies: r.catalog.AllDependencies()}
	if err := r.installPackages(ctx, res.Dependencies); err != nil {
		return nil, err
	}

	targets := []struct {
		asset fetch.Asset
		dir   string
	}{
		{fetch.UtilityAsset(), r.config.UtilsPath()},
		{fetch.GlobalStylesheetAsset(), r.config.AppPath()},
	}
	for _, t := range targets {
		content, err := r.fetch(ctx, t.asset)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(t.dir, t.asset.FileName())
		if err := r.write(t.asset, path, content); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	res.ContentEntry = r.config.ContentPath(r.config.ComponentsPath()) + "/" + ContentGlob
	res.ConfigPath, res.ConfigResult, err = r.patch(res.ContentEntry)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Registry) installPackages(ctx context.Context, deps []catalog.Requirement) (err error) {
	if len(deps) == 0 {
		r.metrics.PackagesInstalled(metrics.OutcomeSkipped)
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "packages.Install",
		trace.WithAttributes(attribute.StringSlice("uicli.packages", catalog.Strings(deps))))
	defer func() { endSpan(span, err) }()

	r.logger.WithFields(map[string]any{"packages": catalog.Strings(deps)}).Debug("installing packages")

	if ierr := r.packages.Install(ctx, r.config.Dir(), catalog.Strings(deps)); ierr != nil {
		r.metrics.PackagesInstalled(metrics.OutcomeError)
		return errors.New("E150").
			WithDetail(ierr.Error()).
			WithSuggestion("Install the packages manually, or set \"packageManager\": \"none\" in uicli.json").
			Wrap(ierr)
	}
	r.metrics.PackagesInstalled(metrics.OutcomeOK)
	return nil
}

func (r *Registry) fetch(ctx context.Context, asset fetch.Asset) (body []byte, err error) {
	ctx, span := r.tracer.Start(ctx, "fetch."+string(asset.Type),
		trace.WithAttributes(
			attribute.String("uicli.asset", asset.Name),
			attribute.String("uicli.location", r.source.Location(asset)),
		))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	body, ferr := r.source.Fetch(ctx, asset)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeOK
	if ferr != nil {
		outcome = fetch.KindOf(ferr).String()
	}
	r.metrics.ObserveFetch(string(asset.Type), outcome, elapsed)

	r.logger.WithFields(map[string]any{
		"asset":    asset.Path(),
		"outcome":  outcome,
		"duration": elapsed.String(),
	}).Debug("fetch")

	if ferr != nil {
		return nil, fetchError(ferr, asset)
	}
	span.SetAttributes(attribute.Int("uicli.bytes", len(body)))
	return body, nil
}

// fetchError maps a fetch failure onto a coded error.
func fetchError(err error, asset fetch.Asset) *errors.Error {
	var ue *errors.Error
	switch fetch.KindOf(err) {
	case fetch.KindNotFound:
		ue = errors.New("E130")
		if asset.Type != fetch.Component {
			ue.Message = "Library file not found"
		}
		ue.WithSuggestion("Run 'uicli list' to see available components")
	case fetch.KindRateLimited:
		ue = errors.New("E131").
			WithSuggestion("Wait for the limit to reset, or point UICLI_REGISTRY at a mirror started with 'uicli serve'")
	case fetch.KindUnexpectedStatus:
		ue = errors.New("E133")
	default:
		ue = errors.New("E132").
			WithSuggestion("Check your internet connection")
	}
	return ue.WithDetail(err.Error()).Wrap(err)
}

func (r *Registry) write(asset fetch.Asset, path string, content []byte) error {
	if err := install.Write(install.Target{Path: path, Content: content}); err != nil {
		return errors.New("E140").
			WithDetail(err.Error()).
			Wrap(err)
	}
	r.metrics.FileWritten(string(asset.Type))
	r.logger.WithFields(map[string]any{"path": path, "bytes": len(content)}).Debug("wrote file")
	return nil
}

// patch adds entry to the project's Tailwind config. A missing config is
// reported through the result, not as an error.
func (r *Registry) patch(entry string) (string, tailwind.Result, error) {
	path, ok := tailwind.Locate(r.config.Dir(), r.config.TailwindConfigPath())
	if !ok {
		r.metrics.ConfigPatched(tailwind.ConfigMissing.String())
		r.logger.With("entry", entry).Warn("tailwind config not found; content entry not added")
		return path, tailwind.ConfigMissing, nil
	}

	result, err := tailwind.Patch(path, entry)
	if err != nil {
		r.metrics.ConfigPatched(metrics.OutcomeError)
		code := "E140"
		if stderrors.Is(err, tailwind.ErrUnrecognized) {
			code = "E160"
		}
		return path, result, errors.New(code).
			WithDetail(err.Error()).
			WithSuggestion(fmt.Sprintf("Add %q to the content array of %s manually", entry, filepath.Base(path))).
			Wrap(err)
	}

	r.metrics.ConfigPatched(result.String())
	r.logger.WithFields(map[string]any{"path": path, "entry": entry, "result": result.String()}).Debug("patched tailwind config")
	return path, result, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InstalledComponent is a component file found in the project.
type InstalledComponent struct {
	Name       string
	Path       string
	Version    string
	Stylesheet bool
	InCatalog  bool
}

// ListInstalled scans the components directory for component files.
func (r *Registry) ListInstalled() ([]InstalledComponent, error) {
	dir := r.config.ComponentsPath()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var components []InstalledComponent
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tsx") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".tsx")
		path := filepath.Join(dir, entry.Name())

		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		version, _ := fetch.VersionTag(content)

		_, statErr := os.Stat(filepath.Join(dir, name+".css"))

		components = append(components, InstalledComponent{
			Name:       name,
			Path:       path,
			Version:    version,
			Stylesheet: statErr == nil,
			InCatalog:  r.catalog.Has(name),
		})
	}

	return components, nil
}

// ComponentInfo describes a catalog component and its local state.
type ComponentInfo struct {
	Name         string
	Dependencies []catalog.Requirement
	Installed    bool
	Version      string
	InCatalog    bool
}

// Components lists every catalog component plus any installed component
// the catalog does not know, sorted by name.
func (r *Registry) Components() ([]ComponentInfo, error) {
	installed, err := r.ListInstalled()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*ComponentInfo)
	for _, name := range r.catalog.Names() {
		byName[name] = &ComponentInfo{
			Name:         name,
			Dependencies: r.catalog.DependenciesFor(name),
			InCatalog:    true,
		}
	}
	for _, ic := range installed {
		info, ok := byName[ic.Name]
		if !ok {
			info = &ComponentInfo{Name: ic.Name}
			byName[ic.Name] = info
		}
		info.Installed = true
		info.Version = ic.Version
	}

	out := make([]ComponentInfo, 0, len(byName))
	for _, info := range byName {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
