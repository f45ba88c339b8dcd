package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edkuperman/pairsort/internal/dag"
	"github.com/edkuperman/pairsort/internal/db"
	apperrors "github.com/edkuperman/pairsort/internal/errors"
	"github.com/edkuperman/pairsort/internal/scheduler"
)

// auditCommand creates the "audit" command.
func (c *CLI) auditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check every stored DAG for cycles once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return apperrors.New(apperrors.ErrCodeInvalidConfig, "audit needs database.url or DATABASE_URL")
			}

			pool, err := db.NewPool(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			prog := newProgress(c.Logger)
			a := &scheduler.Auditor{DAGs: db.NewDAGRepo(pool), Edges: &dag.DBEdges{DB: pool}, Logger: c.Logger}
			findings, err := a.Run(cmd.Context())
			if err != nil {
				return err
			}
			prog.done("Audit finished")
			return printFindings(cmd.OutOrStdout(), findings)
		},
	}
}

// printFindings writes one block per cyclic DAG and returns ErrCycle if
// there was any.
func printFindings(w io.Writer, findings []scheduler.Finding) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "no cycles found")
		return nil
	}
	for _, f := range findings {
		fmt.Fprintf(w, "%s: %s\n", f.DagID, f.Diagnostic.Message())
		for _, cycle := range f.Cycles {
			fmt.Fprintf(w, "  cycle: %s\n", strings.Join(cycle, " -> "))
		}
	}
	return ErrCycle
}
