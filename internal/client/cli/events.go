package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/moonmatch/internal/client/client"
	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/client/session"
)

const dateLayout = "Mon 02 Jan 2006 15:04"

// eventArg takes the event id from args or asks for it.
func (a *App) eventArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("an event id is required")
	}
	return id, nil
}

// Events lists upcoming events.
func (a *App) Events(ctx context.Context) error {
	events, err := a.api.ListEvents(ctx)
	if err != nil {
		return err
	}

	upcoming := models.UpcomingEvents(events, a.now())
	if len(upcoming) == 0 {
		a.printf("No upcoming events.\n")
		return nil
	}
	for _, e := range upcoming {
		a.printf("%-24s %s  %s [%s]\n", e.ID, e.Date.Local().Format(dateLayout), e.Name, e.Status(a.now()))
	}
	if !a.isLoggedIn() {
		a.printf("Log in to buy a ticket.\n")
	}
	return nil
}

// Buy purchases a ticket for the session user.
func (a *App) Buy(ctx context.Context, args []string) error {
	u := a.session.Current()
	if u == nil {
		return session.ErrNoSession
	}
	eventID, err := a.eventArg(args, "Enter event id")
	if err != nil {
		return err
	}

	if _, err := a.api.PurchaseTicket(ctx, u.ID, eventID); err != nil {
		if errors.Is(err, client.ErrConflict) {
			a.printf("You already have a ticket for this event.\n")
			return nil
		}
		return err
	}
	a.printf("You have purchased a ticket for %s!\n", eventID)
	return nil
}

// MyEvents lists the events the user holds tickets for, with their form state.
func (a *App) MyEvents(ctx context.Context) error {
	u := a.session.Current()
	if u == nil {
		return session.ErrNoSession
	}

	events, err := a.api.UserEvents(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		a.printf("You have no tickets yet. Use 'events' and 'buy'.\n")
		return nil
	}

	formState := "not completed"
	done, err := a.api.CheckFormCompletion(ctx, u.Email)
	switch {
	case err != nil:
		a.log.Warn(ctx, "form completion check failed", "error", err)
		formState = "unknown"
	case done:
		formState = "completed"
	}

	for _, e := range events {
		form := "no form"
		if e.FormURL != "" {
			form = "form " + formState
		}
		a.printf("%-24s %s  %s [%s, %s]\n", e.ID, e.Date.Local().Format(dateLayout), e.Name, e.Status(a.now()), form)
	}
	return nil
}

// Form prints the questionnaire link of an event unless the user already
// answered it. When completion cannot be checked the link is shown anyway.
func (a *App) Form(ctx context.Context, args []string) error {
	u := a.session.Current()
	if u == nil {
		return session.ErrNoSession
	}
	eventID, err := a.eventArg(args, "Enter event id")
	if err != nil {
		return err
	}

	e, err := a.api.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(e.FormURL) == "" {
		a.printf("This event does not have a form to fill out.\n")
		return nil
	}

	done, err := a.api.CheckFormCompletion(ctx, u.Email)
	switch {
	case err != nil:
		a.log.Warn(ctx, "form completion check failed", "error", err)
		a.printf("Unable to verify form completion status.\n")
	case done:
		a.printf("You have already completed this form. You cannot submit it again.\n")
		return nil
	}

	a.printf("Open this link in your browser:\n  %s\n", e.FormURL)
	return nil
}
