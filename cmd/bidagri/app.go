package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-bidagri-client/api"
	"github.com/jrsteele09/go-bidagri-client/auth"
	"github.com/jrsteele09/go-bidagri-client/guard"
	"github.com/jrsteele09/go-bidagri-client/internal/config"
	"github.com/jrsteele09/go-bidagri-client/kvstore/filestore"
	"github.com/jrsteele09/go-bidagri-client/lot"
	"github.com/jrsteele09/go-bidagri-client/session"
	"github.com/jrsteele09/go-bidagri-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

// globalOptions override configuration for a single invocation
type globalOptions struct {
	apiURL    string
	storeFile string
	logLevel  string
}

func (o *globalOptions) flagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("bidagri", pflag.ContinueOnError)
	flagSet.StringVar(&o.apiURL, "api", "", "backend base URL (overrides API_URL)")
	flagSet.StringVar(&o.storeFile, "store", "", "local storage file (overrides STORE_FILE)")
	flagSet.StringVar(&o.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flagSet.SetInterspersed(false)
	return flagSet
}

// app holds the client components one invocation works with. They are
// opened on first use so help output never touches the store.
type app struct {
	ctx     context.Context
	cfg     config.Config
	options globalOptions
	out     io.Writer

	sessions *session.Manager
	lots     *lot.Store
	client   *api.Client
	auth     *auth.Service
	guard    *guard.Guard
}

func newApp(ctx context.Context, cfg config.Config, options globalOptions, out io.Writer) *app {
	return &app{ctx: ctx, cfg: cfg, options: options, out: out}
}

func (a *app) open() error {
	if a.auth != nil {
		return nil
	}

	storeFile := a.options.storeFile
	if storeFile == "" {
		storeFile = a.cfg.GetStoreFile()
	}
	store, err := filestore.Open(storeFile)
	if err != nil {
		return errors.Wrap(err, "opening local storage")
	}

	sessions, err := session.NewManager(store)
	if err != nil {
		return err
	}

	var lotOptions []lot.Option
	if a.cfg.GetAnonymousLot() {
		lotOptions = append(lotOptions, lot.WithAnonymousStaging())
	}
	lots, err := lot.New(sessions, store, lotOptions...)
	if err != nil {
		return err
	}

	apiURL := a.options.apiURL
	if apiURL == "" {
		apiURL = a.cfg.GetAPIURL()
	}
	client, err := api.New(apiURL, api.WithTimeout(a.cfg.GetHTTPTimeout()), api.WithTokenSource(sessions))
	if err != nil {
		return err
	}

	service, err := auth.NewService(auth.Deps{
		Backend:  client,
		Sessions: sessions,
		Lots:     lots,
		Store:    store,
	}, auth.WithResendCooldown(a.cfg.GetResendCooldown()))
	if err != nil {
		return err
	}

	routes, err := guard.New(service)
	if err != nil {
		return err
	}

	log.Debug().Str("store", store.Path()).Str("api", client.BaseURL()).Msg("Client ready")
	a.sessions, a.lots, a.client, a.auth, a.guard = sessions, lots, client, service, routes
	return nil
}

const loginPrompt = "run 'bidagri login' first"

// requireUser mounts a protected command through the route guard and
// returns the signed-in user when the guard renders it.
func (a *app) requireUser(roles ...users.RoleType) (*users.User, error) {
	decision := a.guard.Mount(guard.Request{RequiredRoles: roles})
	switch {
	case decision.Action == guard.ActionRender:
	case decision.Action == guard.ActionRedirect && decision.Target == guard.RouteHome:
		return nil, errors.Wrap(auth.ErrSessionNotFound, loginPrompt)
	case decision.Action == guard.ActionRedirect, decision.Action == guard.ActionDeny:
		return nil, errors.Wrapf(auth.ErrAccessDenied, "requires role %s", joinRoles(roles))
	default:
		return nil, errors.Errorf("unexpected guard decision %s", decision.Action)
	}

	user, ok := a.sessions.User()
	if !ok {
		return nil, errors.Wrap(auth.ErrSessionNotFound, loginPrompt)
	}
	return user, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func joinRoles(roles []users.RoleType) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, " or ")
}

func (a *app) root() *command {
	return &command{
		name:    "bidagri",
		summary: "Command-line client for the BidAgri marketplace.",
		usage:   "bidagri [--api URL] [--store FILE] [--log-level LEVEL] <command>",
		subcommands: []*command{
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.productsCommand(),
			a.categoriesCommand(),
			a.lotCommand(),
			a.passwordCommand(),
			a.registerCommand(),
			a.verifyCommand(),
			a.resendCommand(),
		},
	}
}
