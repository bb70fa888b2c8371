package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/client"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/roster"
	"github.com/noah-isme/staff-attendance/internal/tracker"
	"github.com/noah-isme/staff-attendance/pkg/config"
	"github.com/noah-isme/staff-attendance/pkg/database"
	"github.com/noah-isme/staff-attendance/pkg/logger"
)

const (
	sourceAPI     = "api"
	sourceFixture = "fixture"
	sourceSQLite  = "sqlite"
)

// Clock is the time source for every command. Tests pin it.
var Clock = time.Now

type summarizer interface {
	Summary(ctx context.Context, q tracker.Query) (*models.AttendanceSummary, error)
}

// env is the per-invocation wiring resolved from config and flags.
type env struct {
	cfg       *config.ClientConfig
	logger    *zap.Logger
	kind      string
	source    tracker.Source
	submitter tracker.Submitter
	api       *client.Client
	sqlite    *roster.SQLiteSource
	closers   []func() error
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if url, _ := flags.GetString("api-url"); url != "" {
		cfg.APIURL = url
	}
	if token, _ := flags.GetString("token"); token != "" {
		cfg.APIToken = token
	}
	if size, _ := flags.GetInt("page-size"); size > 0 {
		cfg.PageSize = size
	}

	logr, err := logger.NewCLI(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e := &env{cfg: cfg, logger: logr}
	e.kind, _ = flags.GetString("source")
	switch e.kind {
	case sourceAPI:
		e.api = client.New(cfg.APIURL,
			client.WithToken(cfg.APIToken),
			client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
			client.WithLogger(logr))
		e.source, e.submitter = e.api, e.api
	case sourceFixture:
		path, _ := flags.GetString("file")
		if path == "" {
			return nil, fmt.Errorf("--file is required with --source fixture")
		}
		file := roster.NewFileSource(path, Clock)
		e.source, e.submitter = file, file
	case sourceSQLite:
		path, _ := flags.GetString("db")
		db, err := openSQLite(path)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, db.Close)
		e.sqlite = roster.NewSQLiteSource(db, Clock)
		e.source, e.submitter = e.sqlite, e.sqlite
	default:
		return nil, fmt.Errorf("unknown source %q\nValid sources: api, fixture, sqlite", e.kind)
	}
	return e, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("--db is required with --source sqlite")
	}
	return database.NewSQLite(path)
}

func (e *env) session() *tracker.Session {
	return tracker.NewSession(tracker.SessionConfig{
		Source:      e.source,
		Submitter:   e.submitter,
		Logger:      e.logger,
		Clock:       Clock,
		PageSize:    e.cfg.PageSize,
		WindowDays:  e.cfg.WindowDays,
		SearchDelay: e.cfg.SearchDebounce,
	})
}

func (e *env) summarizer() summarizer {
	if e.api != nil {
		return e.api
	}
	return nil
}

func (e *env) Close() {
	_ = e.logger.Sync()
	for _, closeFn := range e.closers {
		_ = closeFn()
	}
}

// loadScope loads --date or --days into s; with neither it loads today.
func loadScope(ctx context.Context, cmd *cobra.Command, s *tracker.Session) error {
	date, _ := cmd.Flags().GetString("date")
	days, _ := cmd.Flags().GetInt("days")
	switch {
	case date != "" && days > 0:
		return fmt.Errorf("use either --date or --days, not both")
	case days > 0:
		return s.LoadWindow(ctx, days)
	case date == "":
		date = Clock().Format(models.DateLayout)
	}
	return s.LoadDate(ctx, date)
}

// applyFilters copies --search and the column filter flags onto s.
func applyFilters(cmd *cobra.Command, s *tracker.Session) error {
	if search, _ := cmd.Flags().GetString("search"); search != "" {
		s.SetSearch(search)
	}
	for _, field := range tracker.Fields {
		value, _ := cmd.Flags().GetString(string(field))
		if value == "" {
			continue
		}
		if err := s.SetFilter(field, value); err != nil {
			return err
		}
	}
	return nil
}

func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "Day to load (YYYY-MM-DD, default today)")
	cmd.Flags().Int("days", 0, "Load the last N days instead of one day")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "Filter by name or staff ID")
	cmd.Flags().String("department", "", "Filter by department")
	cmd.Flags().String("role", "", "Filter by role")
	cmd.Flags().String("shift", "", "Filter by shift")
	cmd.Flags().String("status", "", "Filter by status")
}
