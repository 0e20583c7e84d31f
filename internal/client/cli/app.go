package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/apexclient/internal/client/client"
	"github.com/dmitrijs2005/apexclient/internal/client/config"
	"github.com/dmitrijs2005/apexclient/internal/client/credentials"
	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/apexclient/internal/client/services"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

type App struct {
	config  *config.Config
	session services.SessionService
	users   services.UserService
	nav     *Navigator
	profile *profileView
	reader  *bufio.Reader
	log     logging.Logger

	registry *prometheus.Registry
	closers  []func() error
}

// NewApp opens session storage, builds the API client and services, and
// returns an App ready to Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {

	repo, err := kvstore.Open(ctx, c.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}
	store := credentials.NewStore(repo)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	apiClient, err := client.NewHTTPClient(c.APIBaseURL, store,
		client.WithLogger(log.With("component", "http")),
		client.WithMetrics(client.NewMetrics(reg)),
	)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	session := services.NewSessionService(apiClient, store, log.With("component", "session"))
	users := services.NewUserService(apiClient, session, log.With("component", "users"))

	a := newApp(apiClient, session, users, log, os.Stdin)
	a.config = c
	a.registry = reg
	a.closers = append(a.closers, repo.Close)
	return a, nil
}

// newApp assembles the views around already-built services and wires the
// client's unauthorized event to the session and the login view.
func newApp(c client.Client, session services.SessionService, users services.UserService, log logging.Logger, in io.Reader) *App {

	a := &App{
		session: session,
		users:   users,
		nav:     NewNavigator(session),
		profile: newProfileView(session),
		reader:  bufio.NewReader(in),
		log:     log,
	}

	a.nav.Handle(RouteDashboard, true, a.renderDashboard)
	a.nav.Handle(RouteProfile, true, a.renderProfile)
	a.nav.Handle(RouteLogin, false, a.renderLogin)
	a.nav.Handle(RouteRegister, false, a.renderRegister)
	a.nav.NotFound(a.renderNotFound)

	c.OnUnauthorized(func(ctx context.Context) {
		a.session.HandleUnauthorized(ctx)
		_ = a.nav.Navigate(ctx, RouteLogin)
	})

	// an edit form belongs to one account; drop it whenever the user changes
	var shown atomic.Int64
	unsubscribe := session.Subscribe(func(s models.Session) {
		var id int64
		if s.User != nil {
			id = s.User.ID
		}
		if shown.Swap(id) != id {
			a.profile.reset()
		}
	})
	a.closers = append(a.closers, func() error {
		unsubscribe()
		return nil
	})

	return a
}

// Run restores the persisted session, shows the home route and serves the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.config != nil && a.config.MetricsAddr != "" && a.registry != nil {
		stop := serveMetrics(ctx, a.config.MetricsAddr, a.registry, a.log)
		defer stop()
	}

	printlnFn("Welcome to Apex CLI (type 'help' for commands)")

	a.session.Restore(ctx)
	_ = a.nav.Navigate(ctx, RouteHome)

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close releases storage handles. Safe to call more than once.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) isLoggedIn() bool {
	return a.session.Session().IsAuthenticated()
}

// status is shown in the REPL prompt: user and current route.
func (a *App) status() string {
	s := a.nav.Current()
	if a.profile.isEditing() && s == RouteProfile {
		s += " (editing)"
	}
	if u := a.session.Session().User; u != nil {
		s = u.Username + " " + s
	}
	return s
}
