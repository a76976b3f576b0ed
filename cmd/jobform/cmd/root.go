package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-jobform/pkg/renderers/tui"
)

// rootOptions carries state shared by every subcommand.
type rootOptions struct {
	v          *viper.Viper
	configFile string

	// driver replaces the survey prompts; set by tests.
	driver tui.PromptDriver
}

// flagBindings maps persistent flags to configuration keys.
var flagBindings = map[string]string{
	"server-url": "server.url",
	"token":      "server.token",
	"repository": "repository",
	"service":    "service",
	"fixtures":   "fixtures.dir",
	"locale":     "locale",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// NewRootCommand builds the jobform command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newRootCommand(&rootOptions{v: viper.New()}, out, errOut)
}

func newRootCommand(opts *rootOptions, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "jobform",
		Short: "Fill in and submit workspace jobs on an FME Flow server",
		Long: `jobform loads the published parameters of a workspace, turns them into a
validated form and submits the job. Forms can be filled interactively
(run), inspected as JSON (form) or served to a web client (serve).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default: .jobform.yaml)")
	pf.String("server-url", "", "FME Flow base URL")
	pf.String("token", "", "FME Flow API token")
	pf.StringP("repository", "r", "", "repository holding the workspaces")
	pf.String("service", "submit", "transformation service (submit, transact)")
	pf.String("fixtures", "", "read workspaces from this directory instead of a server (\"builtin\" for the bundled samples)")
	pf.String("locale", "", "locale for labels and messages")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "auto", "log format (auto, text, json)")

	for flag, key := range flagBindings {
		_ = opts.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newWorkspacesCmd(opts),
		newFormCmd(opts),
		newRunCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
}
