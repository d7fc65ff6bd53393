package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/treepick/internal/server"
)

type serveOptions struct {
	addr      string
	rateLimit float64
	burst     int
	maxUpload int64
}

func newServeCommand(root *rootOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload, parse and export API over HTTP",
		Long: `serve starts an HTTP server with these routes:

  POST /api/parse         multipart upload (field "file" or "prefab"), returns the parsed tree
  POST /api/parse-prefab  same as /api/parse
  POST /api/export        JSON body with a document and a pick, returns the export
  GET  /healthz           liveness
  GET  /metrics           Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := serverOptions(root.cfg)
			flags := cmd.Flags()
			if flags.Changed("addr") {
				opts.Addr = o.addr
			}
			if flags.Changed("rate-limit") {
				opts.RateLimit = o.rateLimit
			}
			if flags.Changed("burst") {
				opts.Burst = o.burst
			}
			if flags.Changed("max-upload-bytes") {
				opts.MaxUploadBytes = o.maxUpload
			}
			if opts.Burst < 1 || opts.MaxUploadBytes < 1 || opts.RateLimit < 0 {
				return usageErrorf("burst and max-upload-bytes must be positive and rate-limit not negative")
			}

			ctx, stop := signal.NotifyContext(root.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(opts, root.log).Run(ctx)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.addr, "addr", "", "listen address (default from config, 127.0.0.1:5000)")
	f.Float64Var(&o.rateLimit, "rate-limit", 0, "API requests per second per server, 0 for no limit")
	f.IntVar(&o.burst, "burst", 0, "API request burst size")
	f.Int64Var(&o.maxUpload, "max-upload-bytes", 0, "largest accepted upload")
	return cmd
}
