package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hicluster/pkg/metrics"
	"github.com/matzehuels/hicluster/pkg/server"
	"github.com/matzehuels/hicluster/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		data     datasetFlags
		sv       string
		addr     string
		mongoURI string
		preload  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a loaded dataset over HTTP",
		Long: `Serve loads the contact data and breakpoints once and answers score,
detection and graph requests over a JSON API. Detection runs are kept in
MongoDB when a URI is configured, in memory otherwise. Prometheus metrics
are served at /metrics unless disabled in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bps, err := c.loadBreakpoints(sv)
			if err != nil {
				return err
			}
			d, err := c.openDataset(ctx, &data)
			if err != nil {
				return err
			}
			defer d.Close()

			defaults := c.cfg.PipelineOptions()
			if preload {
				prog := newProgress(c.Logger)
				if err := d.session.Preload(ctx, defaults.Chromosomes); err != nil {
					c.Logger.Warn("preload incomplete", "error", err)
				}
				prog.done("Preloaded matrices")
			}

			st, err := c.newStore(ctx, mongoURI)
			if err != nil {
				return err
			}
			if st == nil {
				st = store.NewMemoryStore()
			}
			defer st.Close(context.WithoutCancel(ctx))

			var metricsHandler http.Handler
			if c.cfg.Server.Metrics {
				reg := metrics.NewRegistry()
				reg.Install()
				metricsHandler = reg.Handler()
			}

			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			srv := server.New(server.Config{
				Runner:         c.runner(d, bps),
				Store:          st,
				Metrics:        metricsHandler,
				Defaults:       defaults,
				RequestTimeout: c.cfg.Server.RequestTimeout,
				Logger:         c.Logger,
			})
			printInfo("Serving %d samples on %s", len(bps.Samples()), addr)
			printNextStep("Try", "curl http://localhost"+portOf(addr)+"/v1/chromosomes")
			return srv.ListenAndServe(ctx, addr)
		},
	}

	data.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&sv, "sv", "", "structural variants table")
	fl.StringVar(&addr, "addr", "", "listen address (default from config)")
	fl.StringVar(&mongoURI, "mongo", "", "store runs in MongoDB at this URI")
	fl.BoolVar(&preload, "preload", false, "normalize all configured chromosomes before serving")
	_ = cmd.MarkFlagRequired("sv")

	return cmd
}

// portOf returns the ":port" suffix of a listen address.
func portOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return ""
}
