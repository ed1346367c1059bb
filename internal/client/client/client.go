package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/moonmatch/internal/client/models"
)

// Client is the backend surface used by the session store, the polling
// monitor and the CLI.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, email, password, name, eventID string) (*models.AuthResult, error)
	Ping(ctx context.Context) error

	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	CreateEvent(ctx context.Context, e models.NewEvent) (*models.Event, error)
	UpdateEventFormURL(ctx context.Context, eventID, formURL string) (*models.Event, error)
	StartMatching(ctx context.Context, eventID string) error
	SendMatches(ctx context.Context, eventID string) error
	ListEventMatches(ctx context.Context, eventID string) ([]models.Match, error)

	PurchaseTicket(ctx context.Context, userID, eventID string) (*models.Ticket, error)
	UserEvents(ctx context.Context, userID string) ([]models.Event, error)
	UserMatches(ctx context.Context, userID string) ([]models.Match, error)
	RevealMatch(ctx context.Context, matchID string) error
	CheckFormCompletion(ctx context.Context, email string) (bool, error)
}

// API implements Client over JSON/HTTP. Whether a call carries the bearer
// token follows what each backend endpoint expects.
type API struct {
	gw *Gateway
}

func NewAPI(gw *Gateway) *API {
	return &API{gw: gw}
}

var _ Client = (*API)(nil)

func eventPath(eventID string, suffix string) string {
	return "/api/events/" + url.PathEscape(eventID) + suffix
}

func (a *API) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return a.authenticate(ctx, "/api/auth/login", body)
}

func (a *API) Register(ctx context.Context, email, password, name, eventID string) (*models.AuthResult, error) {
	body := map[string]string{"email": email, "password": password, "name": name, "eventId": eventID}
	return a.authenticate(ctx, "/api/auth/register", body)
}

func (a *API) authenticate(ctx context.Context, path string, body any) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := a.gw.call(ctx, http.MethodPost, path, body, false, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("%w: no token in response", ErrMalformedResponse)
	}
	if res.User.ID == "" {
		return nil, fmt.Errorf("%w: no user in response", ErrMalformedResponse)
	}
	return &res, nil
}

// Ping succeeds whenever the backend answers at all.
func (a *API) Ping(ctx context.Context) error {
	resp, err := a.gw.Do(ctx, http.MethodGet, "/api/events", nil, false)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (a *API) ListEvents(ctx context.Context) ([]models.Event, error) {
	var res struct {
		Events []models.Event `json:"events"`
	}
	if err := a.gw.call(ctx, http.MethodGet, "/api/events", nil, true, &res); err != nil {
		return nil, err
	}
	return res.Events, nil
}

func (a *API) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var raw json.RawMessage
	if err := a.gw.call(ctx, http.MethodGet, eventPath(eventID, ""), nil, true, &raw); err != nil {
		return nil, err
	}
	return unwrap[models.Event](raw, "event")
}

// CreateEvent validates the payload before any I/O. The endpoint is called
// without a bearer token.
func (a *API) CreateEvent(ctx context.Context, e models.NewEvent) (*models.Event, error) {
	if strings.TrimSpace(e.Name) == "" || e.Date.IsZero() || strings.TrimSpace(e.FormURL) == "" {
		return nil, fmt.Errorf("%w: name, date and form url are required", ErrValidation)
	}
	var raw json.RawMessage
	if err := a.gw.call(ctx, http.MethodPost, "/api/events", e, false, &raw); err != nil {
		return nil, err
	}
	return unwrap[models.Event](raw, "event")
}

func (a *API) UpdateEventFormURL(ctx context.Context, eventID, formURL string) (*models.Event, error) {
	var raw json.RawMessage
	body := map[string]string{"formUrl": formURL}
	if err := a.gw.call(ctx, http.MethodPatch, eventPath(eventID, ""), body, true, &raw); err != nil {
		return nil, err
	}
	return unwrap[models.Event](raw, "event")
}

func (a *API) StartMatching(ctx context.Context, eventID string) error {
	return a.gw.call(ctx, http.MethodPost, eventPath(eventID, "/start-matching"), nil, true, nil)
}

func (a *API) SendMatches(ctx context.Context, eventID string) error {
	return a.gw.call(ctx, http.MethodPost, eventPath(eventID, "/send-matches"), nil, true, nil)
}

func (a *API) ListEventMatches(ctx context.Context, eventID string) ([]models.Match, error) {
	var res struct {
		Matches []models.Match `json:"matches"`
	}
	if err := a.gw.call(ctx, http.MethodGet, eventPath(eventID, "/matches"), nil, true, &res); err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// PurchaseTicket returns ErrConflict when the user already holds a ticket.
func (a *API) PurchaseTicket(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
	if userID == "" || eventID == "" {
		return nil, fmt.Errorf("%w: user id and event id are required", ErrValidation)
	}
	var raw json.RawMessage
	body := map[string]string{"userId": userID, "eventId": eventID}
	if err := a.gw.call(ctx, http.MethodPost, "/api/tickets", body, false, &raw); err != nil {
		return nil, err
	}
	return unwrap[models.Ticket](raw, "ticket")
}

func (a *API) UserEvents(ctx context.Context, userID string) ([]models.Event, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	var res struct {
		Events []models.Event `json:"events"`
	}
	path := "/api/user/events?" + url.Values{"userId": {userID}}.Encode()
	if err := a.gw.call(ctx, http.MethodGet, path, nil, true, &res); err != nil {
		return nil, err
	}
	return res.Events, nil
}

func (a *API) UserMatches(ctx context.Context, userID string) ([]models.Match, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	var res struct {
		Matches []models.Match `json:"matches"`
	}
	path := "/api/users/" + url.PathEscape(userID) + "/matches"
	if err := a.gw.call(ctx, http.MethodGet, path, nil, true, &res); err != nil {
		return nil, err
	}
	return res.Matches, nil
}

func (a *API) RevealMatch(ctx context.Context, matchID string) error {
	path := "/api/matches/" + url.PathEscape(matchID) + "/reveal"
	return a.gw.call(ctx, http.MethodPost, path, nil, true, nil)
}

func (a *API) CheckFormCompletion(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, fmt.Errorf("%w: missing email", ErrValidation)
	}
	var res struct {
		HasCompletedForm bool `json:"hasCompletedForm"`
	}
	body := map[string]string{"email": email}
	if err := a.gw.call(ctx, http.MethodPost, "/api/google-forms/check-completion", body, true, &res); err != nil {
		return false, err
	}
	return res.HasCompletedForm, nil
}

// unwrap decodes either {"<key>": {...}} or a bare object.
func unwrap[T any](raw json.RawMessage, key string) (*T, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if inner, ok := wrapped[key]; ok {
		raw = inner
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &v, nil
}
