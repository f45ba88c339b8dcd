package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/edkuperman/pairsort/internal/api"
	"github.com/edkuperman/pairsort/internal/dag"
)

// sortCommand creates the "sort" command.
func (c *CLI) sortCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sort [FILE]",
		Short: "Order the pairs in FILE, or stdin when FILE is - or omitted",
		Long: `Reads {"pairs":[{"from":"A","to":"B"}, ...]} and prints one node per line.
When the pairs form a cycle the diagnostic goes to stderr and the exit status is 2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return c.sortPairs(in, cmd.OutOrStdout(), cmd.ErrOrStderr(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response body instead of plain lines")
	return cmd
}

func (c *CLI) sortPairs(in io.Reader, out, errOut io.Writer, asJSON bool) error {
	edges, err := api.DecodePairs(in)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res := dag.Sort(dag.Build(edges))
	prog.done(fmt.Sprintf("Sorted %d pairs", len(edges)))

	_, cyclic := res.(dag.Diagnostic)
	if asJSON {
		body, err := api.ResponseBody(res)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(body); err != nil {
			return err
		}
		if cyclic {
			return ErrCycle
		}
		return nil
	}

	switch r := res.(type) {
	case dag.Ordering:
		for _, n := range r {
			fmt.Fprintln(out, n)
		}
	case dag.Diagnostic:
		fmt.Fprintln(errOut, r.Message())
		return ErrCycle
	}
	return nil
}
