package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-jobform/pkg/params"
)

func newWorkspacesCmd(opts *rootOptions) *cobra.Command {
	var (
		filter string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "workspaces",
		Aliases: []string{"ls"},
		Short:   "List the workspaces of the repository",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sess := a.newSession()
			defer sess.Close()

			if err := sess.LoadWorkspaces(cmd.Context()); err != nil {
				return err
			}
			items := filterWorkspaces(sess.Workspaces(), filter)

			if asJSON {
				if items == nil {
					items = []params.WorkspaceSummary{}
				}
				return writeJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTITLE\tLAST SAVED")
			for _, ws := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ws.Name, ws.Title, ws.LastSaveDate)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy filter on name and title")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// filterWorkspaces keeps the fuzzy matches of pattern, best match first.
func filterWorkspaces(items []params.WorkspaceSummary, pattern string) []params.WorkspaceSummary {
	if pattern == "" {
		return items
	}
	haystack := make([]string, len(items))
	for i, ws := range items {
		haystack[i] = ws.Name + " " + ws.Title
	}
	matches := fuzzy.Find(pattern, haystack)
	out := make([]params.WorkspaceSummary, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}
