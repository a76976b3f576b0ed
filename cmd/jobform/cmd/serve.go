package cmd

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-jobform/pkg/httpapi"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form session as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sess := a.newSession()
			defer sess.Close()

			renderer, err := html.New()
			if err != nil {
				return err
			}
			serverOpts := []httpapi.ServerOption{
				httpapi.WithLogger(a.logger),
				httpapi.WithViewRenderer(renderer),
			}
			if submitter := a.submitter(); submitter != nil {
				serverOpts = append(serverOpts, httpapi.WithSubmitter(submitter))
			}
			return httpapi.NewServer(sess, serverOpts...).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
