package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/client/session"
)

// Matches lists the user's matches, best first. Unrevealed matches show
// initials only.
func (a *App) Matches(ctx context.Context) error {
	u := a.session.Current()
	if u == nil {
		return session.ErrNoSession
	}

	ms, err := a.api.UserMatches(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		a.printf("No matches yet. They are sent once matching for your event completes.\n")
		return nil
	}

	hidden := 0
	for _, m := range models.TopMatches(ms, -1) {
		a.printMatch(m)
		if !m.Revealed() {
			hidden++
		}
	}
	if hidden > 0 {
		a.printf("%d hidden match(es). Use 'reveal <match id>' to reveal more.\n", hidden)
	}
	return nil
}

func (a *App) printMatch(m models.Match) {
	who := models.Initials(m.MatchedUser.Name)
	if m.Revealed() {
		who = m.MatchedUser.Name
	}
	a.printf("%-24s %5.1f%%  %s\n", m.ID, m.Score, who)
	if m.Revealed() && len(m.Similarities) > 0 {
		a.printf("  in common: %s\n", strings.Join(m.Similarities, ", "))
	}
}

// Reveal asks the backend to reveal additional matches after confirmation.
func (a *App) Reveal(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return session.ErrNoSession
	}

	var matchID string
	if len(args) > 0 {
		matchID = args[0]
	} else {
		id, err := getSimpleText(a.reader, "Enter match id", a.out)
		if err != nil {
			return err
		}
		matchID = id
	}
	if matchID == "" {
		a.printf("A match id is required.\n")
		return nil
	}

	ok, err := confirm(a.reader, "Would you like to reveal 2 additional matches for $5?", a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.api.RevealMatch(ctx, matchID); err != nil {
		return err
	}
	a.printf("Additional matches revealed!\n")
	return a.Matches(ctx)
}
