package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/moonmatch/internal/logging"
	"github.com/google/uuid"
)

const (
	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-ID"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// TokenSource yields the bearer token to attach to a request. It is consulted
// on every authenticated call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Gateway performs HTTP calls against the backend and attaches the current
// bearer token. It does not retry, refresh tokens, or queue requests.
type Gateway struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

func NewGateway(baseURL string, httpClient *http.Client, tokens TokenSource, log logging.Logger) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}
}

// Do sends the request and returns the raw response for the caller to branch
// on. body, when non-nil, is encoded as JSON. With auth set the token is read
// fresh; an empty or unreadable token means the header is simply omitted.
// Transport failures are reported as ErrUnavailable.
func (g *Gateway) Do(ctx context.Context, method, path string, body any, auth bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	if auth {
		if token := g.token(ctx); token != "" {
			req.Header.Set(authorizationHeader, "Bearer "+token)
		}
	}

	g.log.Debug(ctx, "api request", "method", method, "path", path, "request_id", requestID, "auth", auth)

	resp, err := g.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrUnavailable, err)
	}

	g.log.Debug(ctx, "api response", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)
	return resp, nil
}

func (g *Gateway) token(ctx context.Context) string {
	if g.tokens == nil {
		return ""
	}
	token, err := g.tokens.Token(ctx)
	if err != nil {
		g.log.Warn(ctx, "reading bearer token failed; sending request without it", "error", err)
		return ""
	}
	return token
}

// call is Do followed by decode.
func (g *Gateway) call(ctx context.Context, method, path string, body any, auth bool, out any) error {
	resp, err := g.Do(ctx, method, path, body, auth)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// decode interprets resp and closes its body. 2xx responses are decoded into
// out (skipped when out is nil); anything else becomes a *StatusError.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(resp.StatusCode, errorMessage(b, resp.Status))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrMalformedResponse)
		}
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a failed
// response, falling back to the status text.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return status
}
