package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"credhub/internal/caching"
	"credhub/internal/config"
	"credhub/internal/models"
	"credhub/internal/observability"
	"credhub/internal/repositories"
	"credhub/internal/services"
	"credhub/internal/session"
	"credhub/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in\n\nRun 'credctl signin --email <email>' first")

type Globals struct {
	Debug     bool
	Version   string
	TokenFile string

	// Out defaults to os.Stdout.
	Out io.Writer

	app *App
}

// App is the set of services a command works with, built once per run.
type App struct {
	Configured  bool
	Logger      *zap.Logger
	Auth        services.AuthService
	Orgs        services.OrganizationService
	Setup       services.SetupService
	Locations   services.LocationService
	Providers   services.ProviderService
	Workflows   services.WorkflowService
	Tasks       services.TaskService
	Dashboard   services.DashboardService
	Diagnostics services.DiagnosticsService

	close func()
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// Close releases the store connection, if one was opened.
func (g *Globals) Close() {
	if g.app != nil && g.app.close != nil {
		g.app.close()
	}
}

// open builds the App from the environment and the connection file. A
// missing connection leaves the App unconfigured rather than failing.
func (g *Globals) open(ctx context.Context) (*App, error) {
	if g.app != nil {
		return g.app, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if g.Debug {
		level = "debug"
	}
	logger, err := observability.NewLogger("console", level)
	if err != nil {
		return nil, err
	}

	db, err := database.NewClient(ctx, database.Options{URL: cfg.Database.URL, Schema: cfg.Database.Schema}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)

	auditLogs := services.NewAuditLogsService(repositories.NewAuditLogsRepo(db))
	effects := services.NewWriteEffects(auditLogs, cacheSvc, logger)
	orgs := services.NewOrganizationService(repositories.NewOrganizationRepo(db), repositories.NewMembershipRepo(db), services.NewOrgTx(db), logger)
	locations := services.NewLocationService(repositories.NewLocationRepo(db), orgs, effects)
	providers := services.NewProviderService(repositories.NewProviderRepo(db), orgs, effects)

	g.app = &App{
		Configured:  cfg.Database.Configured() && db.Configured(),
		Logger:      logger,
		Auth:        services.NewAuthService(repositories.NewUserRepo(db), cacheSvc, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.RedirectTo, logger),
		Orgs:        orgs,
		Setup:       services.NewSetupService(orgs, locations, providers),
		Locations:   locations,
		Providers:   providers,
		Workflows:   services.NewWorkflowService(repositories.NewWorkflowRepo(db), orgs, effects),
		Tasks:       services.NewTaskService(repositories.NewTaskRepo(db), effects),
		Dashboard:   services.NewDashboardService(repositories.NewStatsRepo(db), orgs, cacheSvc, logger),
		Diagnostics: services.NewDiagnosticsService(repositories.NewDiagnosticsRepo(db)),
		close: func() {
			db.Close()
			_ = logger.Sync()
		},
	}
	return g.app, nil
}

// gate starts a session gate from the stored token.
func (g *Globals) gate(ctx context.Context, app *App) (*session.Gate, session.Snapshot) {
	gate := session.NewGate(app.Configured, app.Auth, app.Orgs, app.Logger)
	return gate, gate.Start(ctx, g.loadToken())
}

// viewer returns the signed-in user, or ErrNotSignedIn.
func (g *Globals) viewer(ctx context.Context) (*App, *uuid.UUID, error) {
	app, err := g.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !app.Configured {
		return nil, nil, errDatabaseSetup
	}
	sess, err := app.Auth.GetSession(ctx, g.loadToken())
	if err != nil || sess == nil {
		return nil, nil, ErrNotSignedIn
	}
	id := sess.UserID
	return app, &id, nil
}

var errDatabaseSetup = errors.New("database connection is not configured\n\nRun 'credctl db-setup --database-url <url> --api-key <key>' first")

func (g *Globals) tokenPath() string {
	if g.TokenFile != "" {
		return g.TokenFile
	}
	return filepath.Join(filepath.Dir(config.DefaultConnectionFilePath()), "session")
}

func (g *Globals) loadToken() string {
	data, err := os.ReadFile(g.tokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (g *Globals) saveToken(s *models.Session) error {
	path := g.tokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s.AccessToken+"\n"), 0o600)
}

func (g *Globals) clearToken() error {
	err := os.Remove(g.tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// parseOrg accepts an empty string for "all my organizations".
func parseOrg(s string) (*uuid.UUID, error) {
	return parseOptionalID("org", s)
}

func parseOptionalID(flag, s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not a valid id", flag, s)
	}
	return &id, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalDate(flag, s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func dateOrDash(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
