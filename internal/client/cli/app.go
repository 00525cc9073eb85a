package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/evote/internal/client/client"
	"github.com/dmitrijs2005/evote/internal/client/config"
	"github.com/dmitrijs2005/evote/internal/client/countdown"
	"github.com/dmitrijs2005/evote/internal/client/election"
	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/client/repositories/receipts"
	"github.com/dmitrijs2005/evote/internal/client/results"
	"github.com/dmitrijs2005/evote/internal/client/services"
	"github.com/dmitrijs2005/evote/internal/client/session"
	"github.com/dmitrijs2005/evote/internal/filex"
	"github.com/dmitrijs2005/evote/internal/logging"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	store       *session.Store
	api         *client.HTTPClient
	authService services.AuthService
	dashboard   *results.Dashboard
	receipts    receipts.Repository
	countdown   *countdown.Countdown
	reader      *bufio.Reader
	out         io.Writer

	mu        sync.Mutex
	workflow  *election.Workflow
	route     Route
	redirect  Route
	remaining countdown.Remaining
}

// NewApp opens the local database at c.DatabaseDSN, restores a stored
// session and wires the views to the backend at c.ServerBaseURL.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	if err := filex.EnsureParentDir(c.DatabaseDSN); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	a, err := newApp(ctx, c, db, logger, os.Stdin, os.Stdout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	logger = logging.OrNop(logger)

	store := session.NewStore(db)
	if err := store.Load(ctx); err != nil {
		logger.Warn(ctx, "discarding stored session", "error", err)
		if err := store.Clear(ctx); err != nil {
			return nil, err
		}
	}

	api := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, store, logger)

	a := &App{
		config:      c,
		logger:      logger,
		db:          db,
		store:       store,
		api:         api,
		authService: services.NewAuthService(api, store, logger),
		dashboard:   results.NewDashboard(api, logger),
		receipts:    receipts.NewSQLiteRepository(db),
		countdown:   countdown.New(c.ElectionDeadline),
		reader:      bufio.NewReader(in),
		out:         out,
		route:       RouteHome,
	}
	a.remaining = a.countdown.Remaining()
	a.workflow = a.newWorkflow()
	api.SetSessionExpiredHandler(a.sessionExpired)

	return a, nil
}

// Run shows the home page and serves commands until the user exits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to evote CLI (type 'help' for commands)")

	go a.StartCountdown(ctx)

	_ = a.Navigate(ctx, string(RouteHome))

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.status, a.reader)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		printlnFn("Bye!")
	}
}

func (a *App) Close() {
	a.currentWorkflow().Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "error closing database", "error", err)
	}
}

// StartCountdown keeps the prompt's time-to-deadline current until the
// deadline passes or ctx is done.
func (a *App) StartCountdown(ctx context.Context) {
	a.countdown.Run(ctx, a.config.CountdownInterval, func(r countdown.Remaining) {
		a.mu.Lock()
		a.remaining = r
		a.mu.Unlock()

		if r.IsZero() {
			a.logger.Info(ctx, "voting deadline reached", "deadline", a.countdown.Deadline())
		}
	})
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

func (a *App) newWorkflow() *election.Workflow {
	return election.NewWorkflow(a.api, election.Options{
		PageSize:      a.config.PageSize,
		MessageTTL:    a.config.MessageTTL,
		Logger:        a.logger,
		OnAuthFailure: a.sessionExpired,
		OnVoted:       a.recordReceipt,
	})
}

func (a *App) currentWorkflow() *election.Workflow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.workflow
}

// resetWorkflow drops the per-voter election state, e.g. votes committed in
// this run, when the signed-in voter changes.
func (a *App) resetWorkflow() {
	a.mu.Lock()
	old := a.workflow
	a.workflow = a.newWorkflow()
	a.mu.Unlock()

	old.Close()
}

// sessionExpired is called by the HTTP client and the election workflow when
// the backend refuses the session. The REPL picks the redirect up before
// the next prompt.
func (a *App) sessionExpired() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.redirect = RouteLogin
}

func (a *App) takeRedirect() (Route, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.redirect
	a.redirect = ""
	return r, r != ""
}

// followRedirect opens r. A redirect to the login page also ends the stored
// session.
func (a *App) followRedirect(ctx context.Context, r Route) error {
	if r == RouteLogin {
		printlnFn(election.NoticeSessionExpired)
		if a.isLoggedIn() {
			if err := a.authService.Logout(ctx); err != nil {
				a.logger.Warn(ctx, "stored session not cleared", "error", err)
			}
		}
		a.resetWorkflow()
	}
	return a.Navigate(ctx, string(r))
}

func (a *App) recordReceipt(ctx context.Context, t models.ElectionType, c models.Candidate, message string) {
	sess, ok := a.store.Current()
	if !ok {
		return
	}

	r := &models.Receipt{
		NationalID:    sess.User.NationalID,
		ElectionType:  t,
		CandidateID:   c.ID,
		CandidateName: c.Name,
		Party:         c.Party,
		Message:       message,
	}
	if err := a.receipts.Insert(ctx, r); err != nil {
		a.logger.Warn(ctx, "receipt not saved", "candidate", c.ID, "error", err)
	}
}

// status is shown in the prompt: route, voter and, on the election page,
// the time left to vote.
func (a *App) status() string {
	a.mu.Lock()
	route, remaining := a.route, a.remaining
	a.mu.Unlock()

	parts := []string{string(route)}
	if sess, ok := a.store.Current(); ok && a.isLoggedIn() {
		parts = append(parts, sess.User.FullName())
	}
	if route == RouteElection {
		if remaining.IsZero() {
			parts = append(parts, "voting closed")
		} else {
			parts = append(parts, "closes in "+remaining.String())
		}
	}
	return "(" + strings.Join(parts, " | ") + ")"
}
