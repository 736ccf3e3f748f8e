package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uicli-dev/uicli/internal/catalog"
	"github.com/uicli-dev/uicli/internal/config"
	"github.com/uicli-dev/uicli/internal/errors"
	"github.com/uicli-dev/uicli/internal/registry"
	"github.com/uicli-dev/uicli/internal/tailwind"
)

func (a *app) installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <component-name>",
		Short: "Install a component",
		Long: `Install a component from the component library.

The component is written to the components directory (src/components/ui by
default) together with its stylesheet, if the library has one. The npm
packages it imports are installed with the project's package manager and
the file is added to the Tailwind content list.

"uicli <component-name>" is shorthand for this command.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E100").
					WithDetail("install takes exactly one component name").
					WithSuggestion("Run 'uicli list' to see available components")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd.Context(), args[0])
		},
	}
}

func (a *app) runInstall(ctx context.Context, name string) error {
	reg, cfg, err := a.registry()
	if err != nil {
		return err
	}

	res, err := reg.Install(ctx, name)
	if err != nil {
		return err
	}

	a.out.success("Installed %s to %s", name, rel(cfg, res.Files[0]))
	if res.Stylesheet {
		a.out.success("Added stylesheet %s", rel(cfg, res.Files[1]))
	}
	if res.Version != "" {
		a.out.info("Version %s", res.Version)
	}
	if len(res.Dependencies) > 0 {
		a.out.info("Packages: %s", strings.Join(catalog.Strings(res.Dependencies), ", "))
	}
	a.reportPatch(cfg, res)
	return nil
}

// reportPatch prints the outcome of the Tailwind config patch.
func (a *app) reportPatch(cfg *config.Config, res *registry.Result) {
	switch res.ConfigResult {
	case tailwind.Updated:
		a.out.success("Added %s to %s", res.ContentEntry, rel(cfg, res.ConfigPath))
	case tailwind.AlreadyPresent:
		a.out.info("%s already lists %s", rel(cfg, res.ConfigPath), res.ContentEntry)
	default:
		a.out.warn("No Tailwind config found; add %q to the content array of your tailwind.config", res.ContentEntry)
	}
}
