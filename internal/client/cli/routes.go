package cli

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/evote/internal/client/models"
)

type Route string

const (
	RouteHome         Route = "/"
	RouteResults      Route = "/results"
	RouteElection     Route = "/election"
	RouteLogin        Route = "/login"
	RouteRegistration Route = "/registration"
)

var ErrUnknownRoute = errors.New("unknown route")

// ParseRoute accepts "results", "/results" and "/results/" alike.
func ParseRoute(s string) Route {
	s = strings.TrimSpace(s)
	return Route(path.Clean("/" + strings.TrimPrefix(s, "/")))
}

// resolve applies the route guards: the election page needs a session, the
// login and registration pages are for guests only.
func resolve(r Route, authenticated bool) (Route, error) {
	switch r {
	case RouteHome, RouteResults:
		return r, nil
	case RouteElection:
		if !authenticated {
			return RouteLogin, nil
		}
		return r, nil
	case RouteLogin, RouteRegistration:
		if authenticated {
			return RouteElection, nil
		}
		return r, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownRoute, r)
}

// Navigate opens the page at target after applying the route guards.
func (a *App) Navigate(ctx context.Context, target string) error {
	requested := ParseRoute(target)
	r, err := resolve(requested, a.isLoggedIn())
	if err != nil {
		printlnFn("No such page:", target)
		return err
	}
	if r != requested {
		a.logger.Debug(ctx, "redirected", "from", requested, "to", r)
	}

	a.setRoute(r)

	switch r {
	case RouteResults:
		return a.showResults(ctx)
	case RouteElection:
		return a.showElection(ctx)
	case RouteLogin:
		return a.Login(ctx)
	case RouteRegistration:
		return a.Register(ctx)
	}
	return a.showHome(ctx)
}

func (a *App) setRoute(r Route) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.route = r
}

func (a *App) currentRoute() Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) showHome(_ context.Context) error {
	var b strings.Builder
	b.WriteString("evote: cast your vote and follow the results.\n")
	b.WriteString("  results    live results by election type\n")
	if a.isLoggedIn() {
		b.WriteString("  election   vote in the " + typeList() + " elections")
	} else {
		b.WriteString("  login      sign in to vote\n")
		b.WriteString("  register   create a voter account")
	}
	printlnFn(b.String())
	return nil
}

func typeList() string {
	names := make([]string, len(models.ElectionTypes))
	for i, t := range models.ElectionTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
