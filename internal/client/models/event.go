package models

import (
	"time"
)

// Event is an event as listed by the backend. The matching fields are only
// filled by the single-event endpoint.
type Event struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Date               time.Time  `json:"date"`
	FormURL            string     `json:"formUrl,omitempty"`
	TicketID           string     `json:"ticketId,omitempty"`
	UserCount          int        `json:"userCount,omitempty"`
	IsMatching         bool       `json:"isMatching,omitempty"`
	IsMatchingComplete bool       `json:"isMatchingComplete,omitempty"`
	MatchesSent        bool       `json:"matchesSent,omitempty"`
	ProcessedUsers     int        `json:"processedUsers,omitempty"`
	TotalMatches       int        `json:"totalMatches,omitempty"`
	Progress           float64    `json:"progress,omitempty"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	EndTime            *time.Time `json:"endTime,omitempty"`
}

type EventStatus string

const (
	EventPast     EventStatus = "Past"
	EventToday    EventStatus = "Today"
	EventUpcoming EventStatus = "Upcoming"
)

// Status classifies the event relative to now: already started events are
// past, events starting within a day are today.
func (e Event) Status(now time.Time) EventStatus {
	switch {
	case e.Date.Before(now):
		return EventPast
	case e.Date.Sub(now) < 24*time.Hour:
		return EventToday
	default:
		return EventUpcoming
	}
}

// UpcomingEvents keeps events whose calendar day, in now's location, is today
// or later. Input order is preserved.
func UpcomingEvents(events []Event, now time.Time) []Event {
	ty, tm, td := now.Date()
	today := time.Date(ty, tm, td, 0, 0, 0, 0, now.Location())

	out := make([]Event, 0, len(events))
	for _, e := range events {
		y, m, d := e.Date.In(now.Location()).Date()
		if !time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Before(today) {
			out = append(out, e)
		}
	}
	return out
}

// NewEvent is the payload for creating an event.
type NewEvent struct {
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	FormURL string    `json:"formUrl"`
}

// Ticket is an issued event ticket.
type Ticket struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	EventID string `json:"eventId"`
}
