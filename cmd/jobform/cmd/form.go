package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
	"github.com/goliatone/go-jobform/pkg/session"
)

type formOutput struct {
	View   render.View    `json:"view"`
	Status session.Status `json:"status"`
}

// jsonDocument writes the view and the session status as JSON.
type jsonDocument struct {
	w    io.Writer
	sess *session.Session
}

func (jsonDocument) Name() string { return "json" }

func (d jsonDocument) Render(_ context.Context, view render.View, _ render.ChangeFunc) error {
	return writeJSON(d.w, formOutput{View: view, Status: d.sess.Status()})
}

func newFormCmd(opts *rootOptions) *cobra.Command {
	var (
		sets   []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "form <workspace>",
		Short: "Print the rendered form of a workspace",
		Long: `form loads the published parameters of a workspace, applies any --set
values and prints the resulting view with its status as JSON, or the HTML
markup with --format html. Nothing is submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sess := a.newSession()
			defer sess.Close()

			page, err := html.New()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			registry := render.NewRegistry()
			registry.MustRegister(jsonDocument{w: out, sess: sess})
			registry.MustRegister(page.Document(out))

			renderer, err := registry.Get(format)
			if err != nil {
				return err
			}

			if err := sess.Select(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := applySets(sess, sets); err != nil {
				return err
			}
			return renderer.Render(cmd.Context(), sess.View(), sess.Update)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "set a field value (NAME=VALUE, repeatable)")
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, html)")
	return cmd
}
