package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/evento/internal/client/client"
)

// Replace implements client.Navigator. The REPL has no history, so a
// replace is a plain switch of the current view.
func (a *App) Replace(route string, state any) {
	a.mu.Lock()
	a.route = route
	a.routeState = state
	a.mu.Unlock()

	if ls, ok := state.(client.LoginState); ok && ls.Expired {
		a.logger.Info(context.Background(), "session expired", "from", ls.From)
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	}
}

func (a *App) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) navigate(route string) {
	a.mu.Lock()
	a.route = route
	a.routeState = nil
	a.mu.Unlock()
}

// RouteState returns the payload the current view was entered with.
func (a *App) RouteState() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.routeState
}
