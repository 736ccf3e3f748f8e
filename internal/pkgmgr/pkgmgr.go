// Package pkgmgr installs npm packages with the project's package manager.
package pkgmgr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Manager names a package manager.
type Manager string

const (
	NPM  Manager = "npm"
	PNPM Manager = "pnpm"
	Yarn Manager = "yarn"
	Bun  Manager = "bun"

	// None disables installation.
	None Manager = "none"
)

// lockfiles maps lockfile names to the manager that writes them, in probe
// order.
var lockfiles = []struct {
	name    string
	manager Manager
}{
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"package-lock.json", NPM},
}

// Detect picks the manager from the lockfile in dir, defaulting to npm.
func Detect(dir string) Manager {
	for _, lf := range lockfiles {
		if _, err := os.Stat(filepath.Join(dir, lf.name)); err == nil {
			return lf.manager
		}
	}
	return NPM
}

// Args returns the command line that adds packages with m.
func (m Manager) Args(packages []string) []string {
	var args []string
	switch m {
	case PNPM, Yarn, Bun:
		args = []string{string(m), "add"}
	default:
		args = []string{string(NPM), "install"}
	}
	return append(args, packages...)
}

// Installer installs packages into a project directory.
type Installer interface {
	Install(ctx context.Context, dir string, packages []string) error
}

// Error reports a failed install command.
type Error struct {
	Manager Manager
	Args    []string
	Output  string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + lastLines(out, 10)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Runner runs the package manager as a child process.
type Runner struct {
	// Manager is the manager to run. Empty means Detect per project.
	Manager Manager

	// Stdout receives the command's output as it runs. If nil, output is
	// only captured for error reports.
	Stdout io.Writer

	// command builds the process; replaced in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewRunner creates a Runner for m.
func NewRunner(m Manager) *Runner {
	return &Runner{Manager: m}
}

// Install runs "<manager> add|install <packages...>" in dir.
func (r *Runner) Install(ctx context.Context, dir string, packages []string) error {
	if len(packages) == 0 {
		return nil
	}

	m := r.Manager
	if m == "" {
		m = Detect(dir)
	}
	if m == None {
		return nil
	}

	args := m.Args(packages)

	command := r.command
	if command == nil {
		command = exec.CommandContext
	}
	cmd := command(ctx, args[0], args[1:]...)
	cmd.Dir = dir

	var out bytes.Buffer
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(r.Stdout, &out)
		cmd.Stderr = io.MultiWriter(r.Stdout, &out)
	} else {
		cmd.Stdout = &out
		cmd.Stderr = &out
	}

	if err := cmd.Run(); err != nil {
		return &Error{Manager: m, Args: args, Output: out.String(), Err: err}
	}
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
