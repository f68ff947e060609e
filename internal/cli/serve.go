package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sineshade/internal/server"
	"github.com/matzehuels/sineshade/pkg/config"
	"github.com/matzehuels/sineshade/pkg/errors"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		maxUploadMB int
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

  POST /api/v1/render          render an uploaded image (multipart "image" field or raw body)
  GET  /api/v1/artifacts/{id}  fetch a rendered artifact by the ID from X-Artifact-ID
  GET  /api/v1/config          default options
  GET  /healthz                liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srvCfg := c.cfg.Server
			if cmd.Flags().Changed("addr") {
				srvCfg.Addr = addr
			}
			if cmd.Flags().Changed("max-upload-mb") {
				srvCfg.MaxUploadMB = maxUploadMB
			}
			if srvCfg.MaxUploadMB <= 0 {
				return errors.Invalid("max-upload-mb", "must be positive, got %d", srvCfg.MaxUploadMB)
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, server.Options{
				Defaults:       c.cfg.PipelineOptions(),
				MaxUploadBytes: srvCfg.MaxUploadBytes(),
				Logger:         c.Logger,
			})
			printInfo("Serving on %s", StyleHighlight.Render(srvCfg.Addr))
			return srv.ListenAndServe(cmd.Context(), srvCfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultAddr+")")
	cmd.Flags().IntVar(&maxUploadMB, "max-upload-mb", 0, "request body limit in MiB")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache (artifact IDs will not resolve)")

	return cmd
}
