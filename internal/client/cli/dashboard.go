package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
)

// Dashboard shows the dashboard (user list).
func (a *App) Dashboard(ctx context.Context) error {
	return a.nav.Navigate(ctx, RouteDashboard)
}

func (a *App) renderDashboard(ctx context.Context) error {

	if u := a.session.Session().User; u != nil {
		printlnFn(fmt.Sprintf("Welcome back, %s!", u.Username))
	}

	users, err := a.users.List(ctx)
	if err != nil {
		toast("Failed to load users", errorDescription(err, "Could not load users. Please try again."))
		return err
	}
	printlnFn(formatUsers(users))
	return nil
}

func formatUsers(users []models.User) string {
	if len(users) == 0 {
		return "No users."
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
	}
	_ = tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// DeleteUser deletes the account with the given id. Deleting the signed-in
// account ends the session.
func (a *App) DeleteUser(ctx context.Context, arg string) error {

	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		printlnFn("Usage: deluser <id>")
		return fmt.Errorf("invalid user id %q", arg)
	}

	if err := a.users.Delete(ctx, id); err != nil {
		toast("Delete failed", errorDescription(err, "Failed to delete user. Please try again."))
		return err
	}
	printlnFn(fmt.Sprintf("User #%d deleted.", id))

	if !a.isLoggedIn() {
		return a.nav.Navigate(ctx, RouteLogin)
	}
	return nil
}

// Go navigates to path.
func (a *App) Go(ctx context.Context, path string) error {
	return a.nav.Navigate(ctx, path)
}
