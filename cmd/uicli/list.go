package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uicli-dev/uicli/internal/catalog"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available components",
		Long:  `List the components in the catalog and mark the ones installed in this project.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := a.registry()
			if err != nil {
				return err
			}

			infos, err := reg.Components()
			if err != nil {
				return err
			}

			a.out.info("Available components:")
			fmt.Fprintln(a.stdout)

			for _, info := range infos {
				status := "    "
				if info.Installed {
					status = " ✓  "
				}

				var notes []string
				if info.Version != "" {
					notes = append(notes, "v"+info.Version)
				}
				if !info.InCatalog {
					notes = append(notes, "not in catalog")
				} else if len(info.Dependencies) > 0 {
					notes = append(notes, "requires: "+strings.Join(catalog.Strings(info.Dependencies), ", "))
				}

				line := status + info.Name
				if len(notes) > 0 {
					line += " (" + strings.Join(notes, "; ") + ")"
				}
				fmt.Fprintln(a.stdout, line)
			}

			fmt.Fprintln(a.stdout)
			return nil
		},
	}
}
