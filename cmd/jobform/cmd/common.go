package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-jobform"
	"github.com/goliatone/go-jobform/internal/config"
	"github.com/goliatone/go-jobform/internal/logging"
	"github.com/goliatone/go-jobform/pkg/fmeflow"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/session"
	"github.com/goliatone/go-jobform/pkg/workspace"
)

// builtinFixtures selects the sample workspaces bundled with the binary.
const builtinFixtures = "builtin"

// app is the resolved runtime of one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  workspace.Client
	remote  *fmeflow.Client
	catalog *render.Catalog
}

func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	loader := config.NewLoaderWithViper(o.v)
	if o.configFile != "" {
		loader.WithConfigFile(o.configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Fixtures.Dir == builtinFixtures && cfg.Repository == "" {
		cfg.Repository = jobform.SampleRepository
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "file", used)
	}

	a := &app{cfg: cfg, logger: logger}
	switch {
	case cfg.Server.URL != "":
		client, err := fmeflow.New(cfg.Server.URL, cfg.Server.Token,
			fmeflow.WithTimeout(cfg.Server.Timeout),
			fmeflow.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		a.client, a.remote = client, client
	case cfg.Fixtures.Dir == builtinFixtures:
		a.client = jobform.NewSampleClient()
	default:
		a.client = jobform.NewFixtureClient(cfg.Fixtures.Dir)
	}

	if cfg.Locale != "" {
		catalog, err := jobform.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		a.catalog = catalog
	}
	return a, nil
}

func (a *app) newSession(opts ...session.Option) *session.Session {
	form := a.cfg.Form
	base := []session.Option{
		session.WithBuilderOptions(
			model.WithUpload(form.AllowUpload, form.UploadAccept...),
			model.WithRemoteDataset(form.AllowRemoteDataset),
			model.WithSchedule(form.AllowSchedule),
		),
		session.WithMinVisible(a.cfg.Loading.MinVisible),
		session.WithLogger(a.logger),
	}
	if a.catalog != nil {
		base = append(base, session.WithViewOptions(render.WithTranslator(a.cfg.Locale, a.catalog)))
	}
	return session.New(a.client, a.cfg.Repository, append(base, opts...)...)
}

// submitter returns nil when workspaces come from fixtures.
func (a *app) submitter() *fmeflow.Submitter {
	if a.remote == nil {
		return nil
	}
	return a.remote.NewSubmitter(a.cfg.Repository,
		fmeflow.WithService(a.cfg.Service),
		fmeflow.WithDatasetParameter(a.cfg.Form.DatasetParameter),
	)
}

// applySets applies NAME=VALUE assignments in order.
func applySets(sess *session.Session, sets []string) error {
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q: want NAME=VALUE", set)
		}
		if _, err := sess.Update(name, value); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
