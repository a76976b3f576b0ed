package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-jobform/pkg/fmeflow"
	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/renderers/tui"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		sets    []string
		out     string
		dryRun  bool
		noInput bool
	)

	cmd := &cobra.Command{
		Use:   "run <workspace>",
		Short: "Fill in a workspace form and submit the job",
		Long: `run prompts for every visible parameter of a workspace, re-asking fields
that fail validation, then submits the job. Use --set to preset values and
--no-input to skip the prompts. Without a server, or with --dry-run, the
payload is printed instead of submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sess := a.newSession()
			defer sess.Close()

			ctx := cmd.Context()
			if err := sess.Select(ctx, args[0]); err != nil {
				return err
			}
			if err := applySets(sess, sets); err != nil {
				return err
			}

			if !noInput {
				tuiOpts := []tui.Option{tui.WithLogger(a.logger)}
				if opts.driver != nil {
					tuiOpts = append(tuiOpts, tui.WithPromptDriver(opts.driver))
				}
				if err := tui.New(tuiOpts...).Render(ctx, sess.View(), sess.Update); err != nil {
					return err
				}
			}

			submitter := a.submitter()
			if out != "" || dryRun || submitter == nil {
				// Validates without sending anywhere.
				payload, err := sess.Submit(formstate.SinkFunc(func(formstate.Payload) {}))
				if err != nil {
					return err
				}
				if out != "" {
					data, err := marshalSummary(payload)
					if err != nil {
						return err
					}
					if err := atomicWriteFile(out, data, 0o644); err != nil {
						return fmt.Errorf("writing %s: %w", out, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "payload written to %s\n", out)
					return nil
				}
				return writeJSON(cmd.OutOrStdout(), payload.Summary())
			}

			var (
				result  fmeflow.Result
				sendErr error
			)
			if _, err := sess.Submit(submitter.Sink(ctx, func(r fmeflow.Result, err error) {
				result, sendErr = r, err
			})); err != nil {
				return err
			}
			if sendErr != nil {
				return sendErr
			}
			if result.Scheduled {
				fmt.Fprintf(cmd.OutOrStdout(), "scheduled %s\n", result.Schedule)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %d %s\n", result.JobID, result.Status)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&sets, "set", nil, "preset a field value (NAME=VALUE, repeatable)")
	f.StringVarP(&out, "out", "o", "", "write the payload to this file instead of submitting")
	f.BoolVar(&dryRun, "dry-run", false, "print the payload instead of submitting")
	f.BoolVar(&noInput, "no-input", false, "do not prompt; submit the preset values")
	return cmd
}
