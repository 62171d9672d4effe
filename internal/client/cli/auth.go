package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hiredesk/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for e-mail and password and signs in. The server's message
// is printed verbatim when it refuses the credentials.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	user, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		a.println("Login unsuccessful:", client.Message(err))
		return err
	}

	a.println("Signed in as", user.DisplayName())
	return a.openDashboard(ctx)
}

// Logout clears the stored session and closes the dashboard.
func (a *App) Logout(ctx context.Context) error {
	if a.dashboard != nil {
		a.dashboard.Close()
		a.dashboard = nil
	}
	if err := a.authService.Logout(ctx); err != nil {
		a.println("Logout failed:", err)
		return err
	}
	a.println("Signed out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.authService.CurrentUser(ctx)
	if !ok {
		a.println("Not signed in.")
		return nil
	}
	switch {
	case u.Name != "" && u.Email != "":
		a.println(fmt.Sprintf("%s <%s>", u.Name, u.Email))
	default:
		a.println(u.DisplayName())
	}
	return nil
}
