package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/bcards/internal/client/client"
	"github.com/dmitrijs2005/bcards/internal/client/listing"
	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/nav"
	"github.com/dmitrijs2005/bcards/internal/client/services"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

// Options tunes the views.
type Options struct {
	PageSize  int
	FadeDelay time.Duration
}

// App is the interactive client. One App serves one terminal.
type App struct {
	session *session.Store
	auth    services.AuthService
	cards   services.CardService
	listing *listing.Controller
	mine    *listing.MyCards
	router  *nav.Router
	logger  logging.Logger

	reader *bufio.Reader
	out    io.Writer

	route nav.Route

	// signingOut is set while Logout runs so the observer stays quiet.
	signingOut atomic.Bool

	noticeMu sync.Mutex
	notices  []string
}

// NewApp wires the services and controllers around store and api.
func NewApp(store *session.Store, api client.Client, opts Options, logger logging.Logger, in io.Reader, out io.Writer) *App {
	cards := services.NewCardService(api, store, logger)

	return &App{
		session: store,
		auth:    services.NewAuthService(api, store, logger),
		cards:   cards,
		listing: listing.New(cards, store, logger, listing.Options{PageSize: opts.PageSize, FadeDelay: opts.FadeDelay}),
		mine:    listing.NewMyCards(cards, logger),
		router:  nav.NewRouter(),
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run shows the home view and serves commands until the input ends or the
// user quits.
func (a *App) Run(ctx context.Context) error {
	unsubscribe := a.session.Subscribe(a.onSessionChange(a.session.Snapshot()))
	defer unsubscribe()

	a.println("Welcome to bcards (type 'help' for commands)")
	if err := a.Open(ctx, "/"); err != nil {
		a.logger.Debug(ctx, "initial view failed", "error", err)
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// onSessionChange queues a notice when the session ends without the user
// asking for it, e.g. when the token expires.
func (a *App) onSessionChange(initial session.Snapshot) func(session.Snapshot) {
	var mu sync.Mutex
	prev := initial.LoggedIn

	return func(s session.Snapshot) {
		mu.Lock()
		was := prev
		prev = s.LoggedIn
		mu.Unlock()

		if was && !s.LoggedIn && !a.signingOut.Load() {
			a.notice("You have been signed out.")
		}
	}
}

func (a *App) notice(msg string) {
	a.noticeMu.Lock()
	defer a.noticeMu.Unlock()
	a.notices = append(a.notices, msg)
}

// flushNotices prints and clears queued notices.
func (a *App) flushNotices() {
	a.noticeMu.Lock()
	pending := a.notices
	a.notices = nil
	a.noticeMu.Unlock()

	for _, n := range pending {
		a.println("* " + n)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) currentUser() *models.User {
	if u, ok := a.session.User(); ok {
		return &u
	}
	return nil
}

// status is the prompt prefix: who is signed in and where they are.
func (a *App) status() string {
	a.flushNotices()

	who := "guest"
	if u := a.currentUser(); u != nil {
		who = u.Name.String()
		if who == "" {
			who = u.ID
		}
	}

	path := a.route.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("(%s %s)", who, path)
}

// Header prints the navigation links visible to the current user.
func (a *App) Header() {
	links := nav.Links(a.currentUser())
	labels := make([]string, len(links))
	for i, l := range links {
		labels[i] = l.Label
	}
	a.println("BCARD | " + strings.Join(labels, " | "))
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
