// Command uicli copies UI components from the component library into a
// project and wires them into its Tailwind config.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/uicli-dev/uicli/internal/config"
	"github.com/uicli-dev/uicli/internal/errors"
	"github.com/uicli-dev/uicli/internal/logging"
	"github.com/uicli-dev/uicli/internal/metrics"
	"github.com/uicli-dev/uicli/internal/pkgmgr"
	"github.com/uicli-dev/uicli/internal/registry"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageLine is printed when no component name is given.
const usageLine = "Usage: uicli <component-name>"

// errUsage ends a run that already printed usageLine.
var errUsage = errors.New("E100")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	code := a.run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

// app carries the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// dir is the directory commands run in; empty means the working directory.
	dir string

	// options are appended to the registry options built per command.
	options []registry.Option

	verbose     bool
	metricsFile string

	out     *output
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// run executes the command line and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if isTerminal(a.stderr) {
		errors.EnableColors()
	} else {
		errors.DisableColors()
	}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)

	if a.metricsFile != "" {
		if werr := a.metrics.WriteTextfile(a.metricsFile); werr != nil {
			a.logger.Error(werr, "write metrics textfile")
		}
	}

	if err != nil {
		if err == error(errUsage) {
			return 1
		}
		ue := errors.FromError(err, "E101")
		errors.Fprint(a.stderr, ue)
		if a.verbose {
			fmt.Fprint(a.stderr, ue.Format())
		}
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uicli <component-name>",
		Short: "Copy UI components into your project",
		Long: `uicli copies UI components from the component library into your project.

Components are copied as source files that you own. Installing a component
also installs the npm packages it imports and adds the file to the content
list of your Tailwind config.

Examples:
  uicli init
  uicli button
  uicli install toggleButton
  uicli list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(a.stdout, usageLine)
				return errUsage
			}
			return a.runInstall(cmd.Context(), args[0])
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	cmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile when done")

	cmd.AddCommand(
		a.installCmd(),
		a.initCmd(),
		a.listCmd(),
		a.serveCmd(),
		versionCmd(),
	)

	return cmd
}

// setup builds the logger, metrics and output helpers once flags are parsed.
func (a *app) setup(cmd *cobra.Command) error {
	level := "warn"
	if cmd.Name() == "serve" {
		level = "info"
	}
	if a.verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{Level: level, HumanReadable: true, Writer: a.stderr})
	if err != nil {
		return err
	}
	a.logger = logger
	a.metrics = metrics.New(metrics.WithConstLabels(prometheus.Labels{"command": commandName(cmd)}))
	a.out = newOutput(a.stdout)
	return nil
}

// commandName labels metrics; the bare form counts as install.
func commandName(cmd *cobra.Command) string {
	if cmd == cmd.Root() {
		return "install"
	}
	return cmd.Name()
}

// registry loads the project config and builds a Registry for it.
func (a *app) registry() (*registry.Registry, *config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.dir != "" {
		cfg, err = config.LoadFromDir(a.dir)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, nil, err
	}
	if cfg.Path() != "" {
		a.logger.With("path", cfg.Path()).Debug("loaded config")
	}

	runner := pkgmgr.NewRunner(pkgmgr.Manager(cfg.PackageManager))
	runner.Stdout = a.stderr

	opts := []registry.Option{
		registry.WithLogger(a.logger),
		registry.WithMetrics(a.metrics),
		registry.WithPackageInstaller(runner),
	}
	opts = append(opts, a.options...)

	reg, err := registry.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

// rel shortens path for display.
func rel(cfg *config.Config, path string) string {
	if r, err := filepath.Rel(cfg.Dir(), path); err == nil {
		return r
	}
	return path
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// output prints user-facing progress lines.
type output struct {
	w        io.Writer
	okMark   string
	warnMark string
}

func newOutput(w io.Writer) *output {
	r := lipgloss.NewRenderer(w)
	return &output{
		w:        w,
		okMark:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("✓"),
		warnMark: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Render("⚠"),
	}
}

// success prints a success message.
func (o *output) success(format string, args ...any) {
	fmt.Fprintf(o.w, "%s %s\n", o.okMark, fmt.Sprintf(format, args...))
}

// info prints an info message.
func (o *output) info(format string, args ...any) {
	fmt.Fprintf(o.w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func (o *output) warn(format string, args ...any) {
	fmt.Fprintf(o.w, "%s %s\n", o.warnMark, fmt.Sprintf(format, args...))
}
