package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/moonmatch/internal/client/client"
	"github.com/dmitrijs2005/moonmatch/internal/client/config"
	"github.com/dmitrijs2005/moonmatch/internal/client/polling"
	"github.com/dmitrijs2005/moonmatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moonmatch/internal/client/session"
	"github.com/dmitrijs2005/moonmatch/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// statusMonitor is the admin matching view the CLI drives.
// *polling.Monitor satisfies it.
type statusMonitor interface {
	Open(ctx context.Context) error
	Refresh(ctx context.Context) error
	Close()
	StartMatching(ctx context.Context) error
	SendMatches(ctx context.Context) error
	UpdateFormURL(ctx context.Context, formURL string) error
	Snapshot() polling.View
	Subscribe(fn func(polling.View)) (cancel func())
}

type App struct {
	config     *config.Config
	session    session.Manager
	api        client.Client
	log        logging.Logger
	newMonitor func(eventID string) statusMonitor
	reader     *bufio.Reader
	out        io.Writer
	now        func() time.Time
	closer     io.Closer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local session database and wires the session store, the
// HTTP gateway and the API client.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	repo := metadata.NewSQLiteRepository(db)
	httpClient := &http.Client{Timeout: c.RequestTimeout}
	gw := client.NewGateway(c.APIBaseURL, httpClient, session.NewStoredToken(repo), log.With("component", "gateway"))
	api := client.NewAPI(gw)
	store := session.NewStore(repo, api, c.DefaultEventID, log.With("component", "session"))

	a := newApp(c, store, api, log)
	a.closer = db
	return a, nil
}

func newApp(c *config.Config, sess session.Manager, api client.Client, log logging.Logger) *App {
	a := &App{
		config:  c,
		session: sess,
		api:     api,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
	}
	a.newMonitor = func(eventID string) statusMonitor {
		return polling.NewMonitor(api, eventID, c.PollInterval, log.With("component", "polling"))
	}
	return a
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run restores the persisted session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.session.Initialize(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.printf("Welcome to Moonlight Match (type 'help' for commands)\n")
	if u := a.session.Current(); u != nil {
		a.printf("Signed in as %s\n", u.DisplayName())
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Warn(context.Background(), "closing database failed", "error", err)
		}
		a.closer = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	u := a.session.Current()
	return u != nil && u.IsAdmin
}

const defaultOnlineCheckInterval = 15 * time.Second

// StartOnlineStatusWatcher pings the backend right away and then every
// interval, switching between online and offline mode. A non-positive
// interval falls back to defaultOnlineCheckInterval.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultOnlineCheckInterval
	}
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}

func (a *App) getStatus() string {
	var parts []string
	if u := a.session.Current(); u != nil {
		parts = append(parts, u.DisplayName())
		if u.IsAdmin {
			parts = append(parts, "admin")
		}
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ") "
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
