package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/hiredesk/internal/client/client"
	"github.com/dmitrijs2005/hiredesk/internal/client/config"
	"github.com/dmitrijs2005/hiredesk/internal/client/services"
	"github.com/dmitrijs2005/hiredesk/internal/client/session"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
	"github.com/dmitrijs2005/hiredesk/internal/metrics"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	db      *sql.DB
	logger  logging.Logger
	metrics *metrics.Collector

	client      client.Client
	store       session.Store
	authService services.AuthService
	dashboard   *services.Dashboard

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := session.NewSQLiteStore(db, logger)
	collector := metrics.NewCollector()
	apiClient := client.NewHTTPClient(c.APIBaseURL, store, &http.Client{}, logger, collector, c.RequestTimeout)

	a := newApp(apiClient, store, logger, bufio.NewReader(os.Stdin), os.Stdout)
	a.config = c
	a.db = db
	a.metrics = collector
	return a, nil
}

func newApp(c client.Client, store session.Store, logger logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	return &App{
		client:      c,
		store:       store,
		logger:      logger,
		authService: services.NewAuthService(c, store, logger),
		reader:      reader,
		out:         out,
	}
}

// Run serves metrics when configured and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	if a.config != nil && a.config.MetricsAddr != "" {
		srv := a.startMetricsServer(ctx, a.config.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	a.println("Welcome to HireDesk (type 'help' for commands)")
	if a.isLoggedIn() {
		if u, ok := a.authService.CurrentUser(ctx); ok {
			a.println("Signed in as", u.DisplayName())
		}
	}
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) metricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", a.metrics.Handler())
	return r
}

func (a *App) startMetricsServer(ctx context.Context, addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: a.metricsRouter(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server stopped", "addr", addr, "error", err)
		}
	}()
	a.logger.Info(ctx, "serving metrics", "addr", addr)
	return srv
}

func (a *App) close() {
	if a.dashboard != nil {
		a.dashboard.Close()
		a.dashboard = nil
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.store.GetToken(context.Background())
	return ok
}

func (a *App) status() string {
	if u, ok := a.authService.CurrentUser(context.Background()); ok {
		if name := u.DisplayName(); name != "" {
			return name
		}
		return "operator"
	}
	return "guest"
}

// ToSignIn is called by the dashboard when the session is gone.
func (a *App) ToSignIn() {
	a.println("Your session has ended. Please sign in again (login).")
	if a.dashboard != nil {
		a.dashboard.Close()
		a.dashboard = nil
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
