package models

import (
	"sort"
	"strings"
	"time"
)

// MatchingStatus is the server-reported progress of one event's matching run.
type MatchingStatus struct {
	EventID        string
	EventName      string
	TotalUsers     int
	ProcessedUsers int
	TotalMatches   int
	IsMatching     bool
	IsComplete     bool
	MatchesSent    bool
	StartTime      *time.Time
	EndTime        *time.Time
	Progress       float64
	FormURL        string
}

// StatusFromEvent projects the single-event payload onto a MatchingStatus.
func StatusFromEvent(e Event) MatchingStatus {
	return MatchingStatus{
		EventID:        e.ID,
		EventName:      e.Name,
		TotalUsers:     e.UserCount,
		ProcessedUsers: e.ProcessedUsers,
		TotalMatches:   e.TotalMatches,
		IsMatching:     e.IsMatching,
		IsComplete:     e.IsMatchingComplete,
		MatchesSent:    e.MatchesSent,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		Progress:       clampPercent(e.Progress),
		FormURL:        e.FormURL,
	}
}

// Active reports whether a run is in flight and not yet finished.
func (s MatchingStatus) Active() bool {
	return s.IsMatching && !s.IsComplete
}

// ProgressPercent is only meaningful while matching; it is 0 otherwise.
func (s MatchingStatus) ProgressPercent() float64 {
	if !s.IsMatching {
		return 0
	}
	return clampPercent(s.Progress)
}

func (s MatchingStatus) Label() string {
	switch {
	case s.IsMatching:
		return "Matching in progress"
	case s.IsComplete:
		return "Matching completed"
	default:
		return "Matching not started"
	}
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// MatchUser is the public projection of an attendee inside a match.
type MatchUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// Match is a scored pairing. The client never mutates it; reveal is a server
// action.
type Match struct {
	ID                  string     `json:"id"`
	User                *MatchUser `json:"user,omitempty"`
	MatchedUser         MatchUser  `json:"matchedUser"`
	Score               float64    `json:"score"`
	IsInitiallyRevealed bool       `json:"isInitiallyRevealed"`
	IsPaidReveal        bool       `json:"isPaidReveal"`
	Similarities        []string   `json:"similarities,omitempty"`
}

func (m Match) Revealed() bool {
	return m.IsInitiallyRevealed || m.IsPaidReveal
}

// TopMatches returns up to n matches ordered by descending score. The input
// slice is left untouched.
func TopMatches(matches []Match, n int) []Match {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Initials returns up to two upper-case initials of name.
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, word := range strings.Fields(name) {
		initials = append(initials, []rune(strings.ToUpper(word))[0])
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}
