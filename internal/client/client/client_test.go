package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records requests and replies from per-route handlers.
type fakeBackend struct {
	mu       sync.Mutex
	mux      *http.ServeMux
	requests []recorded
}

type recorded struct {
	method, path, query, auth string
	body                      map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{mux: http.NewServeMux()}
}

func (f *fakeBackend) handle(pattern string, status int, reply string) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization")}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	})
}

func (f *fakeBackend) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newAPI(t *testing.T, f *fakeBackend, token string) *API {
	t.Helper()
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	return NewAPI(NewGateway(srv.URL, srv.Client(), &staticToken{token: token}, logging.Discard()))
}

const userJSON = `{"id":"u1","email":"a@x.com","name":"Ann","dataRetention":false,"isAdmin":true,
	"eventId":"moonlight-gala","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}`

func TestAPI_Login(t *testing.T) {
	f := newFakeBackend()
	f.handle("POST /api/auth/login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok"}`)
	api := newAPI(t, f, "stale")

	res, err := api.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "u1", res.User.ID)
	assert.True(t, res.User.IsAdmin)

	req := f.last(t)
	assert.Empty(t, req.auth, "login is sent without a bearer token")
	assert.Equal(t, map[string]any{"email": "a@x.com", "password": "pw"}, req.body)
}

func TestAPI_LoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   error
	}{
		{name: "bad credentials", status: http.StatusUnauthorized, reply: `{"error":"Invalid credentials"}`, want: ErrUnauthorized},
		{name: "server down", status: http.StatusInternalServerError, reply: `{}`, want: ErrServer},
		{name: "missing token", status: http.StatusOK, reply: `{"user":` + userJSON + `}`, want: ErrMalformedResponse},
		{name: "missing user", status: http.StatusOK, reply: `{"token":"x"}`, want: ErrMalformedResponse},
		{name: "broken json", status: http.StatusOK, reply: `{"user":`, want: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend()
			f.handle("POST /api/auth/login", tt.status, tt.reply)
			api := newAPI(t, f, "")

			res, err := api.Login(context.Background(), "a@x.com", "pw")
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestAPI_RegisterSendsEventID(t *testing.T) {
	f := newFakeBackend()
	f.handle("POST /api/auth/register", http.StatusCreated, `{"user":`+userJSON+`,"token":"tok"}`)
	api := newAPI(t, f, "")

	_, err := api.Register(context.Background(), "a@x.com", "pw", "Ann", "moonlight-gala")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"email": "a@x.com", "password": "pw", "name": "Ann", "eventId": "moonlight-gala",
	}, f.last(t).body)
}

func TestAPI_EventEndpoints(t *testing.T) {
	f := newFakeBackend()
	f.handle("GET /api/events", http.StatusOK, `{"events":[{"id":"e1","name":"Gala","date":"2030-01-01T20:00:00Z"}]}`)
	f.handle("GET /api/events/{id}", http.StatusOK, `{"event":{"id":"e1","name":"Gala","userCount":12,"isMatching":true,"formUrl":"https://forms.google.com/f"}}`)
	f.handle("PATCH /api/events/{id}", http.StatusOK, `{"id":"e1","name":"Gala","formUrl":"https://forms.google.com/new"}`)
	f.handle("POST /api/events/{id}/start-matching", http.StatusOK, `{"ok":true}`)
	f.handle("POST /api/events/{id}/send-matches", http.StatusOK, ``)
	f.handle("GET /api/events/{id}/matches", http.StatusOK, `{"matches":[{"id":"m1","score":88,"matchedUser":{"id":"u2","name":"Bo"}}]}`)
	api := newAPI(t, f, "abc")
	ctx := context.Background()

	events, err := api.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Bearer abc", f.last(t).auth)

	e, err := api.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 12, e.UserCount)
	assert.True(t, e.IsMatching)

	e, err = api.UpdateEventFormURL(ctx, "e1", "https://forms.google.com/new")
	require.NoError(t, err)
	assert.Equal(t, "https://forms.google.com/new", e.FormURL)
	assert.Equal(t, map[string]any{"formUrl": "https://forms.google.com/new"}, f.last(t).body)

	require.NoError(t, api.StartMatching(ctx, "e1"))
	assert.Equal(t, "/api/events/e1/start-matching", f.last(t).path)
	require.NoError(t, api.SendMatches(ctx, "e1"))
	assert.Equal(t, "Bearer abc", f.last(t).auth)

	matches, err := api.ListEventMatches(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Bo", matches[0].MatchedUser.Name)
}

func TestAPI_CreateEvent(t *testing.T) {
	f := newFakeBackend()
	f.handle("POST /api/events", http.StatusCreated, `{"event":{"id":"e9","name":"Ball"}}`)
	api := newAPI(t, f, "abc")
	ctx := context.Background()

	_, err := api.CreateEvent(ctx, models.NewEvent{Name: "Ball"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.requests, "validation happens before I/O")

	date := time.Date(2030, 5, 1, 19, 0, 0, 0, time.UTC)
	e, err := api.CreateEvent(ctx, models.NewEvent{Name: "Ball", Date: date, FormURL: "https://forms.google.com/b"})
	require.NoError(t, err)
	assert.Equal(t, "e9", e.ID)

	req := f.last(t)
	assert.Empty(t, req.auth)
	assert.Equal(t, "2030-05-01T19:00:00Z", req.body["date"])
}

func TestAPI_PurchaseTicket(t *testing.T) {
	f := newFakeBackend()
	f.handle("POST /api/tickets", http.StatusConflict, `{"error":"Ticket already exists"}`)
	api := newAPI(t, f, "abc")

	_, err := api.PurchaseTicket(context.Background(), "u1", "e1")
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Ticket already exists", ServerMessage(err))
	assert.Empty(t, f.last(t).auth)
	assert.Equal(t, map[string]any{"userId": "u1", "eventId": "e1"}, f.last(t).body)

	_, err = api.PurchaseTicket(context.Background(), "", "e1")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAPI_UserEndpoints(t *testing.T) {
	f := newFakeBackend()
	f.handle("GET /api/user/events", http.StatusOK, `{"events":[{"id":"e1","name":"Gala","ticketId":"t1"}]}`)
	f.handle("GET /api/users/{id}/matches", http.StatusOK, `{"matches":[]}`)
	f.handle("POST /api/matches/{id}/reveal", http.StatusOK, `{}`)
	f.handle("POST /api/google-forms/check-completion", http.StatusOK, `{"hasCompletedForm":true}`)
	api := newAPI(t, f, "abc")
	ctx := context.Background()

	events, err := api.UserEvents(ctx, "u 1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "t1", events[0].TicketID)
	assert.Equal(t, "userId=u+1", f.last(t).query)

	matches, err := api.UserMatches(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, matches)

	require.NoError(t, api.RevealMatch(ctx, "m1"))
	assert.Equal(t, "/api/matches/m1/reveal", f.last(t).path)

	done, err := api.CheckFormCompletion(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, map[string]any{"email": "a@x.com"}, f.last(t).body)

	_, err = api.UserEvents(ctx, "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = api.CheckFormCompletion(ctx, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAPI_PingTreatsAnyResponseAsReachable(t *testing.T) {
	f := newFakeBackend()
	f.handle("GET /api/events", http.StatusUnauthorized, `{}`)
	api := newAPI(t, f, "")

	require.NoError(t, api.Ping(context.Background()))
}
