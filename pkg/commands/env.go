package commands

import (
	"fmt"
	"io"

	"tableflip.dev/sitelog/pkg/api"
	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/config"
	"tableflip.dev/sitelog/pkg/logging"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/source"
	"tableflip.dev/sitelog/pkg/store"
)

// env is what a command needs once configuration is resolved.
type env struct {
	Config    *config.Config
	Log       *logging.Data
	Snapshots *store.Snapshots
	Service   *app.Service
	Scope     string
}

func (e *env) Close() {
	_ = e.Log.Close()
}

// load reads the config, builds the logger and wires the service. Without an
// API URL the service only reads snapshots and refuses mutations.
func load(stderr io.Writer, so *options.ScopeOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	b := logging.New().FromWriter(stderr).Level(cfg.LogLevel).Format(cfg.LogFormat)
	if cfg.LogFile != "" {
		b = b.FromPath(cfg.LogFile)
	}
	logs, err := b.Make()
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	log := logs.Logger

	scope, roleName := cfg.Scope, cfg.Role
	if so != nil {
		scope, roleName = so.Resolve(scope, roleName)
	}
	role, err := site.ParseRole(roleName)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	snaps, err := store.Open(cfg, log)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	svc := &app.Service{
		Role:     role,
		Location: loc,
		Log:      log,
	}
	if cfg.Offline() {
		log.Debug().Str("path", snaps.BasePath()).Msg("no api configured, reading snapshots")
		svc.Raw = snaps
	} else {
		client := api.NewClient(cfg.APIURL, cfg.APIToken, cfg.APITimeout, log)
		svc.Raw = &source.Cached{Primary: client, Fallback: snaps, Saver: snaps, Log: log}
		svc.Mutator = client
	}

	return &env{Config: cfg, Log: logs, Snapshots: snaps, Service: svc, Scope: scope}, nil
}

func featureArg(args []string, def site.Feature) (site.Feature, error) {
	if len(args) == 0 {
		return def, nil
	}
	return site.ParseFeature(args[0])
}

func pageNames() []string {
	names := make([]string, len(site.Pages))
	for i, f := range site.Pages {
		names[i] = string(f)
	}
	return names
}
