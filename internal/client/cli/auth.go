package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/client/session"
)

// getSimpleText, getPassword, getMultiline and confirm are indirections used
// to facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
	confirm       = Confirm
)

const minPasswordLength = 6

var (
	errFillAllFields    = errors.New("please fill in all fields")
	errInvalidEmail     = errors.New("please enter a valid email address")
	errShortPassword    = fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	errPasswordMismatch = errors.New("passwords do not match")
)

// Register prompts for name, email and a confirmed password and creates an
// account bound to the default event. Input is validated before any request
// is sent.
func (a *App) Register(ctx context.Context) error {
	if u := a.session.Current(); u != nil {
		a.printf("Already signed in as %s. Log out first.\n", u.DisplayName())
		return nil
	}

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	a.printf("Confirm password\n")
	again, err := getPassword(a.out)
	if err != nil {
		return err
	}

	switch {
	case name == "" || email == "" || len(password) == 0 || len(again) == 0:
		return errFillAllFields
	case !strings.Contains(email, "@"):
		return errInvalidEmail
	case len(password) < minPasswordLength:
		return errShortPassword
	case string(password) != string(again):
		return errPasswordMismatch
	}

	if err := a.session.Register(ctx, email, string(password), name); err != nil {
		return err
	}

	a.printf("Welcome, %s!\n", a.session.Current().DisplayName())
	return nil
}

// Login prompts for credentials and opens a session. Failures leave any
// previous state as it was; the REPL reports why the attempt failed.
func (a *App) Login(ctx context.Context) error {
	if u := a.session.Current(); u != nil {
		a.printf("Already signed in as %s.\n", u.DisplayName())
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return err
	}

	u := a.session.Current()
	a.printf("Login successful. Hello, %s!\n", u.DisplayName())
	if u.IsAdmin {
		a.printf("You have admin access. Type 'help' for admin commands.\n")
	}
	return nil
}

// Logout ends the session. Local storage problems are reported, but the
// session is gone either way.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	a.printf("Logged out.\n")
	return err
}

// WhoAmI prints the session user and token expiry, when the token carries one.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.Current()
	if u == nil {
		return session.ErrNoSession
	}

	a.printf("%s <%s>\n", u.DisplayName(), u.Email)
	if u.Description != "" {
		a.printf("%s\n", u.Description)
	}
	role := "attendee"
	if u.IsAdmin {
		role = "admin"
	}
	a.printf("Role: %s\n", role)
	if u.EventID != "" {
		a.printf("Event: %s\n", u.EventID)
	}
	if len(u.FormResponse) > 0 {
		a.printf("Questionnaire: answered\n")
	}

	token, err := a.session.Token(ctx)
	if err != nil {
		return err
	}
	if exp, ok := session.TokenExpiry(token); ok {
		if exp.After(a.now()) {
			a.printf("Session expires: %s\n", exp.Local().Format(time.RFC1123))
		} else {
			a.printf("Session token expired at %s; log in again.\n", exp.Local().Format(time.RFC1123))
		}
	}
	return nil
}

// Profile edits the name and description of the session user. Blank input
// keeps the current value. The change is stored locally.
func (a *App) Profile(ctx context.Context) error {
	u := a.session.Current()
	if u == nil {
		return session.ErrNoSession
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Name [%s]", u.Name), a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "About you (blank keeps the current text)", a.out)
	if err != nil {
		return err
	}

	var patch models.UserPatch
	if name != "" && name != u.Name {
		patch.Name = &name
	}
	if description != "" && description != u.Description {
		patch.Description = &description
	}
	if patch.Empty() {
		a.printf("Nothing changed.\n")
		return nil
	}

	now := a.now().UTC()
	patch.UpdatedAt = &now
	if err := a.session.UpdateUser(ctx, patch); err != nil {
		return err
	}
	a.printf("Profile updated.\n")
	return nil
}
