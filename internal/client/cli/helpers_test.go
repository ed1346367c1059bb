package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moonmatch/internal/client/client"
	"github.com/dmitrijs2005/moonmatch/internal/client/config"
	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/client/polling"
	"github.com/dmitrijs2005/moonmatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moonmatch/internal/client/session"
	"github.com/dmitrijs2005/moonmatch/internal/logging"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeAPI answers the calls the CLI makes. Calls it does not override panic
// through the nil embedded interface.
type fakeAPI struct {
	client.Client

	mu    sync.Mutex
	calls []string

	authRes  *models.AuthResult
	authErr  error
	regEvent string

	pingErr error

	events    []models.Event
	event     *models.Event
	eventsErr error

	ticketErr error

	userEvents []models.Event
	matches    []models.Match
	revealErr  error

	formDone    bool
	formErr     error
	created     *models.NewEvent
	createdResp *models.Event
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	f.record("login")
	return f.authRes, f.authErr
}

func (f *fakeAPI) Register(ctx context.Context, email, password, name, eventID string) (*models.AuthResult, error) {
	f.record("register")
	f.regEvent = eventID
	return f.authRes, f.authErr
}

func (f *fakeAPI) Ping(ctx context.Context) error {
	f.record("ping")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeAPI) ListEvents(ctx context.Context) ([]models.Event, error) {
	f.record("events")
	return f.events, f.eventsErr
}

func (f *fakeAPI) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	f.record("event " + eventID)
	return f.event, f.eventsErr
}

func (f *fakeAPI) CreateEvent(ctx context.Context, e models.NewEvent) (*models.Event, error) {
	f.record("create")
	f.created = &e
	return f.createdResp, nil
}

func (f *fakeAPI) PurchaseTicket(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
	f.record("buy " + userID + " " + eventID)
	if f.ticketErr != nil {
		return nil, f.ticketErr
	}
	return &models.Ticket{ID: "t1", UserID: userID, EventID: eventID}, nil
}

func (f *fakeAPI) UserEvents(ctx context.Context, userID string) ([]models.Event, error) {
	f.record("myevents")
	return f.userEvents, nil
}

func (f *fakeAPI) UserMatches(ctx context.Context, userID string) ([]models.Match, error) {
	f.record("matches")
	return f.matches, nil
}

func (f *fakeAPI) RevealMatch(ctx context.Context, matchID string) error {
	f.record("reveal " + matchID)
	return f.revealErr
}

func (f *fakeAPI) CheckFormCompletion(ctx context.Context, email string) (bool, error) {
	f.record("formcheck")
	return f.formDone, f.formErr
}

// fakeMonitor stands in for the polling monitor; subscribers are called
// synchronously.
type fakeMonitor struct {
	view    polling.View
	openErr error
	actErr  error

	opened, closed bool
	started, sent  bool
	formURL        string
	subs           []func(polling.View)
}

func (m *fakeMonitor) Open(ctx context.Context) error {
	m.opened = true
	for _, fn := range m.subs {
		fn(m.view)
	}
	return m.openErr
}

func (m *fakeMonitor) Refresh(ctx context.Context) error { return nil }
func (m *fakeMonitor) Close()                            { m.closed = true }
func (m *fakeMonitor) Snapshot() polling.View            { return m.view }

func (m *fakeMonitor) Subscribe(fn func(polling.View)) func() {
	m.subs = append(m.subs, fn)
	return func() { m.subs = nil }
}

func (m *fakeMonitor) StartMatching(ctx context.Context) error {
	if m.actErr != nil {
		return m.actErr
	}
	m.started = true
	return nil
}

func (m *fakeMonitor) SendMatches(ctx context.Context) error {
	if m.actErr != nil {
		return m.actErr
	}
	m.sent = true
	return nil
}

func (m *fakeMonitor) UpdateFormURL(ctx context.Context, formURL string) error {
	if m.actErr != nil {
		return m.actErr
	}
	m.formURL = formURL
	return nil
}

func ann() *models.User {
	return &models.User{ID: "u1", Email: "ann@example.com", Name: "Ann", EventID: "moonlight-gala"}
}

func adminUser() *models.User {
	u := ann()
	u.IsAdmin = true
	return u
}

// newTestApp builds an App over an in-memory session. A non-nil user is
// stored as the current session with the given token, "tok" when empty. Prompts read from input.
func newTestApp(t *testing.T, api *fakeAPI, user *models.User, token, input string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	repo := metadata.NewMemoryRepository()
	if user != nil {
		if token == "" {
			token = "tok"
		}
		raw, err := json.Marshal(user)
		require.NoError(t, err)
		require.NoError(t, repo.Set(ctx, metadata.KeyUser, raw))
		require.NoError(t, repo.Set(ctx, metadata.KeyToken, []byte(token)))
	}
	store := session.NewStore(repo, api, "moonlight-gala", logging.Discard())
	store.Initialize(ctx)

	a := newApp(&config.Config{PollInterval: time.Millisecond}, store, api, logging.Discard())
	var out bytes.Buffer
	a.reader = rdr(input)
	a.out = &out
	a.now = func() time.Time { return testNow }
	return a, &out
}

// stubPasswords makes getPassword return the given passwords in order.
func stubPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := getPassword
	t.Cleanup(func() { getPassword = orig })
	getPassword = func(_ io.Writer) ([]byte, error) {
		require.NotEmpty(t, passwords, "unexpected password prompt")
		pw := passwords[0]
		passwords = passwords[1:]
		return []byte(pw), nil
	}
}
