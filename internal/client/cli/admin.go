package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moonmatch/internal/client/formlink"
	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/client/polling"
)

const inputDateLayout = "2006-01-02 15:04"

var errNoStatus = errors.New("event status unavailable")

// AdminEvents lists every event with its matching state.
func (a *App) AdminEvents(ctx context.Context) error {
	events, err := a.api.ListEvents(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		a.printf("No events yet. Use 'createevent'.\n")
		return nil
	}
	for _, e := range events {
		st := models.StatusFromEvent(e)
		sent := ""
		if st.MatchesSent {
			sent = ", matches sent"
		}
		a.printf("%-24s %s  %s (%d users) [%s%s]\n",
			e.ID, e.Date.Local().Format(dateLayout), e.Name, e.UserCount, st.Label(), sent)
	}
	return nil
}

// CreateEvent prompts for the event details and creates it.
func (a *App) CreateEvent(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Event name", a.out)
	if err != nil {
		return err
	}
	when, err := getSimpleText(a.reader, "Date and time (YYYY-MM-DD HH:MM)", a.out)
	if err != nil {
		return err
	}
	link, err := getSimpleText(a.reader, "Google Form URL", a.out)
	if err != nil {
		return err
	}

	if name == "" || when == "" || link == "" {
		return errFillAllFields
	}
	date, err := time.ParseInLocation(inputDateLayout, when, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD HH:MM", when)
	}
	formURL, err := formlink.Parse(link)
	if err != nil {
		return err
	}

	e, err := a.api.CreateEvent(ctx, models.NewEvent{Name: name, Date: date, FormURL: formURL})
	if err != nil {
		return err
	}
	a.printf("Event created successfully! id: %s\n", e.ID)
	return nil
}

// Watch shows the live matching status of an event until Enter is pressed.
func (a *App) Watch(ctx context.Context, args []string) error {
	eventID, err := a.eventArg(args, "Enter event id")
	if err != nil {
		return err
	}

	m := a.newMonitor(eventID)
	defer m.Close()

	cancel := m.Subscribe(a.renderStatus)
	defer cancel()

	// Failures are part of the rendered view; keep watching regardless.
	_ = m.Open(ctx)

	a.printf("Watching %s, press Enter to stop.\n", eventID)
	// If ctx ends first this goroutine stays blocked on a.reader and swallows
	// the next line. That is only safe because the REPL exits with ctx.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = a.reader.ReadString('\n')
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	cancel()
	a.renderMatches(m.Snapshot())
	return nil
}

// StartMatching begins the matching run of an event after confirmation.
func (a *App) StartMatching(ctx context.Context, args []string) error {
	eventID, err := a.eventArg(args, "Enter event id")
	if err != nil {
		return err
	}

	m := a.newMonitor(eventID)
	defer m.Close()
	if err := m.Open(ctx); err != nil {
		return err
	}
	v := m.Snapshot()
	if v.Status == nil {
		return errNoStatus
	}
	a.renderStatus(v)

	switch {
	case v.Status.Active():
		a.printf("Matching is already in progress.\n")
		return nil
	case v.Status.IsComplete:
		a.printf("Matching has already completed.\n")
		return nil
	}

	ok, err := confirm(a.reader, "This will begin the AI matching algorithm for all registered users. "+
		"This process cannot be stopped once started. Start matching?", a.out)
	if err != nil || !ok {
		return err
	}

	if err := m.StartMatching(ctx); err != nil {
		return err
	}
	a.printf("Matching process started! Use 'watch %s' to follow progress.\n", eventID)
	a.renderStatus(m.Snapshot())
	return nil
}

// SendMatches notifies participants of a completed run after confirmation.
func (a *App) SendMatches(ctx context.Context, args []string) error {
	eventID, err := a.eventArg(args, "Enter event id")
	if err != nil {
		return err
	}

	m := a.newMonitor(eventID)
	defer m.Close()
	if err := m.Open(ctx); err != nil {
		return err
	}
	v := m.Snapshot()
	if v.Status == nil {
		return errNoStatus
	}

	switch {
	case !v.Status.IsComplete:
		a.printf("Matching has not completed yet.\n")
		return nil
	case v.Status.MatchesSent:
		a.printf("Matches were already sent.\n")
		return nil
	}

	a.renderMatches(v)
	ok, err := confirm(a.reader, "Send match results to all participants?", a.out)
	if err != nil || !ok {
		return err
	}

	if err := m.SendMatches(ctx); err != nil {
		return err
	}
	a.printf("Matches sent to all participants!\n")
	return nil
}

// FormURL replaces an event's questionnaire link.
func (a *App) FormURL(ctx context.Context, args []string) error {
	eventID, err := a.eventArg(args, "Enter event id")
	if err != nil {
		return err
	}

	var link string
	if len(args) > 1 {
		link = args[1]
	} else if link, err = getSimpleText(a.reader, "New Google Form URL", a.out); err != nil {
		return err
	}
	formURL, err := formlink.Parse(link)
	if err != nil {
		return err
	}

	m := a.newMonitor(eventID)
	defer m.Close()
	if err := m.UpdateFormURL(ctx, formURL); err != nil {
		return err
	}

	v := m.Snapshot()
	if v.Status != nil {
		a.printf("Form URL updated: %s\n", v.Status.FormURL)
	} else {
		a.printf("Form URL updated.\n")
	}
	return nil
}

func (a *App) renderStatus(v polling.View) {
	if v.Status == nil {
		if v.Err != nil {
			a.printf("Status unavailable: %s\n", describe(v.Err))
		}
		return
	}

	s := v.Status
	line := fmt.Sprintf("%s: %s", s.EventName, s.Label())
	if s.IsMatching {
		line += fmt.Sprintf(" %.0f%% (%d/%d users)", s.ProgressPercent(), s.ProcessedUsers, s.TotalUsers)
	} else {
		line += fmt.Sprintf(" (%d users)", s.TotalUsers)
	}
	if s.TotalMatches > 0 {
		line += fmt.Sprintf(", %d matches", s.TotalMatches)
	}
	if s.MatchesSent {
		line += ", matches sent"
	}
	if !v.UpdatedAt.IsZero() {
		line = v.UpdatedAt.Local().Format("15:04:05") + " " + line
	}
	a.printf("%s\n", line)

	if v.Err != nil {
		a.printf("  last refresh failed: %s\n", describe(v.Err))
	}
}

func (a *App) renderMatches(v polling.View) {
	if len(v.Matches) == 0 {
		a.printf("No matches yet.\n")
		return
	}
	a.printf("Top matches:\n")
	for _, m := range v.Matches {
		left := "?"
		if m.User != nil {
			left = m.User.Name
		}
		a.printf("  %5.1f%%  %s & %s\n", m.Score, left, m.MatchedUser.Name)
	}
}
