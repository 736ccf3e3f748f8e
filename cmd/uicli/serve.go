package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/uicli-dev/uicli/internal/mirror"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		dir    string
		addr   string
		limit  int
		window time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local component library",
		Long: `Serve a local checkout of the component library over HTTP.

The checkout must use the library layout (components/, styles/, utils/,
app/). Point a project at the mirror with UICLI_REGISTRY or the registry
field of uicli.json.

With --limit the mirror rate limits requests like the hosted library,
sending x-ratelimit-remaining and x-ratelimit-reset headers.

Examples:
  uicli serve --dir ./library
  uicli serve --dir ./library --addr :9000 --limit 60 --window 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mirror.New(mirror.Config{
				Dir:     dir,
				Limit:   limit,
				Window:  window,
				Logger:  a.logger,
				Metrics: a.metrics,
			})

			a.out.success("Serving %s on %s", dir, addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Library checkout to serve")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().IntVar(&limit, "limit", 0, "Requests allowed per window (0 disables rate limiting)")
	cmd.Flags().DurationVar(&window, "window", time.Hour, "Rate limit window")

	return cmd
}
