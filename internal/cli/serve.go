package cli

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"github.com/edkuperman/pairsort/internal/api"
	"github.com/edkuperman/pairsort/internal/config"
	"github.com/edkuperman/pairsort/internal/dag"
	"github.com/edkuperman/pairsort/internal/db"
	"github.com/edkuperman/pairsort/internal/scheduler"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), cfg, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serve runs the API on ln until ctx is canceled. With a database
// configured it also serves the stored-DAG routes and, when enabled, runs
// the periodic audit.
func (c *CLI) serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	opts := api.Options{
		Logger:       c.Logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	if cfg.HasDatabase() {
		pool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			ln.Close()
			return err
		}
		defer pool.Close()

		repo := db.NewDAGRepo(pool)
		auditor := &scheduler.Auditor{DAGs: repo, Edges: &dag.DBEdges{DB: pool}, Logger: c.Logger}
		opts.DAGs, opts.Edges, opts.Auditor = repo, auditor.Edges, auditor

		if cfg.Audit.Enabled {
			s := scheduler.New(auditor, c.Logger)
			if err := s.Register(ctx, cfg.Audit.Schedule); err != nil {
				ln.Close()
				return err
			}
			s.Start()
			defer s.Stop()
		}
	} else {
		c.Logger.Debug("no database configured, stored-DAG routes disabled")
	}

	return api.Serve(ctx, ln, cfg.Server, api.NewRouter(api.NewHandlers(opts)), c.Logger)
}
