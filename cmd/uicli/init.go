package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set up a project for uicli components",
		Long: `Set up a project for uicli components.

This installs every package any component needs and fetches the shared files:
  • src/utils/cn_tw_merger.ts - class name merge helper used by all components
  • src/app/globals.css       - global stylesheet

The components directory is added to the Tailwind content list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, cfg, err := a.registry()
			if err != nil {
				return err
			}

			a.out.info("Initializing uicli...")
			fmt.Fprintln(a.stdout)

			res, err := reg.Init(cmd.Context())
			if err != nil {
				return err
			}

			for _, path := range res.Files {
				a.out.success("Created %s", rel(cfg, path))
			}
			a.reportPatch(cfg, res)

			fmt.Fprintln(a.stdout)
			a.out.info("Ready! Add components with:")
			fmt.Fprintln(a.stdout)
			a.out.info("  uicli button")
			fmt.Fprintln(a.stdout)
			return nil
		},
	}
}
