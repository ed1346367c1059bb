package polling

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/logging"
)

// TopMatchCount is how many matches a View carries.
const TopMatchCount = 10

var ErrClosed = errors.New("monitor closed")

// Fetcher is the slice of the backend client a Monitor talks to.
type Fetcher interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEventMatches(ctx context.Context, eventID string) ([]models.Match, error)
	StartMatching(ctx context.Context, eventID string) error
	SendMatches(ctx context.Context, eventID string) error
	UpdateEventFormURL(ctx context.Context, eventID, formURL string) (*models.Event, error)
}

type State int

const (
	StateIdle State = iota
	StatePolling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// View is what the admin screen renders. Status is nil until the first
// successful fetch. Err holds the most recent fetch failure, if any; the
// data fields keep their previous values in that case.
type View struct {
	Status    *models.MatchingStatus
	Matches   []models.Match
	Err       error
	State     State
	UpdatedAt time.Time
}

func (v View) clone() View {
	if v.Status != nil {
		s := *v.Status
		v.Status = &s
	}
	v.Matches = slices.Clone(v.Matches)
	return v
}

type Monitor struct {
	api      Fetcher
	eventID  string
	interval time.Duration
	log      logging.Logger
	now      func() time.Time

	// life serializes Open, Refresh and Close so a closed monitor never
	// publishes another view. Polling ticks do not take it.
	life sync.Mutex

	mu     sync.Mutex
	base   context.Context
	view   View
	task   *Task
	gen    int
	closed bool

	subMu   sync.Mutex
	subs    map[int]func(View)
	nextSub int
}

func NewMonitor(api Fetcher, eventID string, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		api:      api,
		eventID:  eventID,
		interval: interval,
		log:      log.With("event_id", eventID),
		now:      time.Now,
		base:     context.Background(),
		subs:     make(map[int]func(View)),
	}
}

func (m *Monitor) EventID() string { return m.eventID }

// Open performs the initial fetch and starts polling when a run is in flight.
// Polling lasts until the run ends, Close is called or ctx is done.
func (m *Monitor) Open(ctx context.Context) error {
	m.mu.Lock()
	m.base = ctx
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// Refresh fetches status and matches out of cycle. It starts polling if the
// fresh status is active and nothing is polling yet.
func (m *Monitor) Refresh(ctx context.Context) error {
	if m.isClosed() {
		return ErrClosed
	}

	res := m.fetch(ctx)

	m.life.Lock()
	defer m.life.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.applyLocked(ctx, res)
	view := m.view.clone()
	m.mu.Unlock()

	m.notify(view)
	m.ensurePolling()
	return res.err()
}

// Close stops polling and discards any result that resolves afterwards.
func (m *Monitor) Close() {
	m.life.Lock()
	defer m.life.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.gen++
	m.view.State = StateStopped
	task := m.task
	m.task = nil
	view := m.view.clone()
	m.mu.Unlock()

	if task != nil {
		task.Stop()
	}
	m.notify(view)
}

// StartMatching asks the backend to begin the matching run and refreshes on
// success. Failures leave the view untouched. A failed follow-up refresh
// shows up in View.Err only.
func (m *Monitor) StartMatching(ctx context.Context) error {
	return m.action(ctx, "start matching", func(ctx context.Context) error {
		return m.api.StartMatching(ctx, m.eventID)
	})
}

// SendMatches asks the backend to notify attendees of their matches.
func (m *Monitor) SendMatches(ctx context.Context) error {
	return m.action(ctx, "send matches", func(ctx context.Context) error {
		return m.api.SendMatches(ctx, m.eventID)
	})
}

// UpdateFormURL replaces the event's questionnaire link, then re-fetches.
func (m *Monitor) UpdateFormURL(ctx context.Context, formURL string) error {
	return m.action(ctx, "update form url", func(ctx context.Context) error {
		_, err := m.api.UpdateEventFormURL(ctx, m.eventID, formURL)
		return err
	})
}

func (m *Monitor) action(ctx context.Context, name string, fn func(context.Context) error) error {
	if m.isClosed() {
		return ErrClosed
	}
	if err := fn(ctx); err != nil {
		m.log.Warn(ctx, name+" failed", "error", err)
		return err
	}
	m.log.Info(ctx, name+" succeeded")

	if err := m.Refresh(ctx); err != nil && !errors.Is(err, ErrClosed) {
		m.log.Warn(ctx, "refresh after "+name+" failed", "error", err)
	}
	return nil
}

// Snapshot returns a copy of the current view.
func (m *Monitor) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view.clone()
}

// Subscribe calls fn with a copy of the view after every change. Calls from a
// polling tick and from Refresh may interleave; Snapshot is authoritative.
func (m *Monitor) Subscribe(fn func(View)) (cancel func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Monitor) notify(v View) {
	m.subMu.Lock()
	fns := make([]func(View), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(v.clone())
	}
}

func (m *Monitor) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ensurePolling starts a polling task when the current status is active and
// none is running. Callers hold m.life.
func (m *Monitor) ensurePolling() {
	m.mu.Lock()
	running := m.task != nil && !finished(m.task)
	if m.closed || m.view.Status == nil || !m.view.Status.Active() || (m.view.State == StatePolling && running) {
		m.mu.Unlock()
		return
	}
	m.gen++
	gen := m.gen
	old := m.task
	m.view.State = StatePolling
	view := m.view.clone()
	ctx := m.base
	m.mu.Unlock()

	// A previous task is either finished or about to be; its ticks see a
	// stale generation and return without touching the view.
	if old != nil {
		old.Stop()
	}

	task := Every(ctx, m.interval, func(ctx context.Context) bool { return m.tick(ctx, gen) })

	m.mu.Lock()
	m.task = task
	m.mu.Unlock()

	m.log.Debug(ctx, "polling started", "interval", m.interval)
	m.notify(view)
}

func finished(t *Task) bool {
	select {
	case <-t.Done():
		return true
	default:
		return false
	}
}

func (m *Monitor) tick(ctx context.Context, gen int) bool {
	res := m.fetch(ctx)

	m.mu.Lock()
	if m.closed || gen != m.gen || ctx.Err() != nil {
		m.mu.Unlock()
		return false
	}
	m.applyLocked(ctx, res)

	keepGoing := m.view.Status == nil || m.view.Status.Active()
	if !keepGoing {
		m.view.State = StateIdle
	}
	view := m.view.clone()
	m.mu.Unlock()

	if !keepGoing {
		m.log.Info(ctx, "matching no longer active, polling stopped")
	}
	m.notify(view)
	return keepGoing
}

type fetchResult struct {
	status    *models.MatchingStatus
	statusErr error
	matches   []models.Match
	matchErr  error
}

func (r fetchResult) err() error {
	return errors.Join(r.statusErr, r.matchErr)
}

// fetch loads status and matches independently; either may fail alone.
func (m *Monitor) fetch(ctx context.Context) fetchResult {
	var res fetchResult

	if e, err := m.api.GetEvent(ctx, m.eventID); err != nil {
		res.statusErr = fmt.Errorf("fetch status: %w", err)
	} else {
		s := models.StatusFromEvent(*e)
		res.status = &s
	}

	if ms, err := m.api.ListEventMatches(ctx, m.eventID); err != nil {
		res.matchErr = fmt.Errorf("fetch matches: %w", err)
	} else {
		res.matches = models.TopMatches(ms, TopMatchCount)
	}

	return res
}

// applyLocked merges res into the view; the last resolved response wins.
func (m *Monitor) applyLocked(ctx context.Context, res fetchResult) {
	if res.status != nil {
		if prev := m.view.Status; prev != nil && prev.Active() && res.status.IsMatching &&
			(res.status.ProcessedUsers < prev.ProcessedUsers || res.status.Progress < prev.Progress) {
			m.log.Warn(ctx, "matching progress went backwards",
				"processed_before", prev.ProcessedUsers, "processed_now", res.status.ProcessedUsers,
				"progress_before", prev.Progress, "progress_now", res.status.Progress)
		}
		m.view.Status = res.status
	}
	if res.matchErr == nil {
		m.view.Matches = res.matches
	}
	if res.status != nil || res.matchErr == nil {
		m.view.UpdatedAt = m.now()
	}

	m.view.Err = res.err()
	if m.view.Err != nil {
		m.log.Warn(ctx, "refresh failed", "error", m.view.Err)
	}
}
