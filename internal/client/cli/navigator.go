package cli

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/client/services"
)

const (
	RouteHome      = "/"
	RouteDashboard = "/dashboard"
	RouteProfile   = "/profile"
	RouteLogin     = "/login"
	RouteRegister  = "/register"
)

type route struct {
	protected bool
	render    func(ctx context.Context) error
}

// Navigator is the navigation shell. It tracks the current route, keeps
// anonymous users out of protected routes, and renders the layout and the
// matching view.
type Navigator struct {
	session services.SessionService

	mu       sync.Mutex
	current  string
	routes   map[string]route
	notFound func(ctx context.Context, path string)
}

func NewNavigator(session services.SessionService) *Navigator {
	return &Navigator{
		session:  session,
		routes:   make(map[string]route),
		notFound: func(context.Context, string) {},
	}
}

// Handle registers the view for path.
func (n *Navigator) Handle(path string, protected bool, render func(ctx context.Context) error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes[path] = route{protected: protected, render: render}
}

// NotFound sets the view rendered for unknown paths.
func (n *Navigator) NotFound(fn func(ctx context.Context, path string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notFound = fn
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) setCurrent(p string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = p
}

// Navigate switches to p and renders it. "/" goes to the dashboard;
// protected routes send anonymous users to the login view.
func (n *Navigator) Navigate(ctx context.Context, p string) error {

	p = normalizePath(p)
	if p == RouteHome {
		p = RouteDashboard
	}

	n.mu.Lock()
	r, ok := n.routes[p]
	notFound := n.notFound
	n.mu.Unlock()

	if !ok {
		n.setCurrent(p)
		notFound(ctx, p)
		return nil
	}

	if r.protected {
		s := n.session.Session()
		if s.IsLoading() {
			printlnFn("Loading...")
			return nil
		}
		if !s.IsAuthenticated() {
			return n.Navigate(ctx, RouteLogin)
		}
		// current is set before rendering: the view may navigate away
		n.setCurrent(p)
		renderLayout(p, s.User)
		return r.render(ctx)
	}

	n.setCurrent(p)
	return r.render(ctx)
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

var navItems = []struct {
	path  string
	label string
}{
	{RouteDashboard, "Dashboard"},
	{RouteProfile, "Profile"},
}

// renderLayout prints the nav bar shown above every protected view.
func renderLayout(active string, u *models.User) {
	var b strings.Builder
	for _, it := range navItems {
		if it.path == active {
			fmt.Fprintf(&b, "[%s] ", it.label)
		} else {
			fmt.Fprintf(&b, " %s  ", it.label)
		}
	}
	fmt.Fprintf(&b, "| %s <%s> %s | logout", u.Username, u.Email, capitalize(u.Role))
	printlnFn(b.String())
	printlnFn(strings.Repeat("-", b.Len()))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
