package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fernwright/trackcopy/internal/api"
	"github.com/fernwright/trackcopy/internal/config"
	"github.com/fernwright/trackcopy/internal/engine"
	"github.com/fernwright/trackcopy/internal/history"
	"github.com/fernwright/trackcopy/internal/logger"
	"github.com/fernwright/trackcopy/internal/settings"
	"github.com/fernwright/trackcopy/internal/watcher"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the tracking session and its control API",
		Long: `Run the long-lived tracking session.

The session loads the saved settings (paths, format filter, naming
pattern, rules), serves the HTTP control API, and, once tracking is
started, watches the source directory and tracks every file that
appears there. Tracking can be started here with --start or later
through the API and the other commands.

Configuration is loaded from <trackcopy home>/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  trackcopy watch                      # Serve the API, tracking stopped
  trackcopy watch --start              # Begin tracking immediately
  trackcopy watch --listen :8080       # Serve on another address
  trackcopy watch --log-level debug    # Show discovery details
  trackcopy watch --config custom.yaml # Use custom config file`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().String("config", "", "Path to config file (default: <trackcopy home>/config.yaml)")
	cmd.Flags().String("listen", "", "Control API listen address")
	cmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-dir", "", "Directory for log files")
	cmd.Flags().Bool("start", false, "Start tracking immediately")

	return cmd
}

// runWatch implements the watch command logic
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return err
	}

	// Build flag pointers for merge (only explicitly set values)
	var listenPtr, logLevelPtr, logDirPtr *string
	if cmd.Flags().Changed("listen") {
		v, _ := cmd.Flags().GetString("listen")
		listenPtr = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &v
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(listenPtr, logLevelPtr, logDirPtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	settingsPath, err := config.SettingsPath()
	if err != nil {
		return fmt.Errorf("resolve settings path: %w", err)
	}
	st, err := settings.Load(settingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	session := engine.NewSession()
	if err := session.ApplySettings(st); err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}

	// Console logger for real-time progress, file logger for the session
	// record, fanned out through one multi-logger.
	consoleLog := logger.NewConsoleLogger(os.Stdout, cfg.LogLevel)
	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer fileLog.Close()

	log := &multiLogger{loggers: []logger.Logger{consoleLog, fileLog}}

	var store *history.Store
	if cfg.History.Enabled {
		dbPath, err := config.HistoryDBPath()
		if err != nil {
			return fmt.Errorf("resolve history path: %w", err)
		}
		store, err = history.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()

		if cfg.History.KeepDays > 0 {
			pruned, err := store.Prune(cmd.Context(), cfg.History.KeepDays)
			if err != nil {
				log.LogWarn(fmt.Sprintf("prune history: %v", err))
			} else if pruned > 0 {
				log.LogInfo(fmt.Sprintf("pruned %d copy passes older than %d days", pruned, cfg.History.KeepDays))
			}
		}
	}

	ws := &watchSession{
		session:      session,
		committer:    engine.NewCommitter(session, nil, log),
		store:        store,
		settingsPath: settingsPath,
		opts: watcher.Options{
			SettleDelay:  cfg.Watcher.SettleDelay,
			ReadyRetries: cfg.Watcher.ReadyRetries,
			ReadyDelay:   cfg.Watcher.ReadyDelay,
		},
		log: log,
	}

	srv := api.NewServer(cfg.ListenAddr, session, ws, log)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if startNow, _ := cmd.Flags().GetBool("start"); startNow {
		if err := ws.StartTracking(); err != nil {
			return fmt.Errorf("start tracking: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watch session running on http://%s\n", cfg.ListenAddr)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop...\n")

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		fmt.Fprintf(cmd.OutOrStdout(), "\nShutting down...\n")
	case err := <-serverErr:
		ws.StopTracking()
		return fmt.Errorf("control API: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogWarn(fmt.Sprintf("shutdown control API: %v", err))
	}

	ws.StopTracking()
	ws.saveSettings()

	fmt.Fprintf(cmd.OutOrStdout(), "Logs written to: %s\n", fileLog.Path())
	return nil
}

// watchSession owns the watcher lifecycle behind the control API and
// journals copy passes. It is the Controller the API server drives.
type watchSession struct {
	session      *engine.Session
	committer    *engine.Committer
	store        *history.Store // nil when history is disabled
	settingsPath string
	opts         watcher.Options
	log          logger.Logger

	mu   sync.Mutex
	w    *watcher.Watcher
	stop chan struct{}
	done chan struct{}
}

// StartTracking captures a fresh baseline and (re)creates the watcher on
// the current source directory. Starting while already active restarts
// the watcher, which picks up a source path changed through the API.
func (ws *watchSession) StartTracking() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	src := ws.session.SourcePath()
	if src == "" {
		return errors.New("source directory is not set")
	}

	w, err := watcher.New(src, ws.opts)
	if err != nil {
		return err
	}

	ws.closeWatcherLocked()

	ws.w = w
	ws.stop = make(chan struct{})
	ws.done = make(chan struct{})
	ws.session.StartTracking()
	go ws.feed(w, ws.stop, ws.done)

	ws.log.LogInfo(fmt.Sprintf("tracking started, watching %s", w.Dir()))
	return nil
}

// StopTracking stops accepting discoveries and tears the watcher down.
// Stopping an already stopped session is a no-op.
func (ws *watchSession) StopTracking() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.session.StopTracking()
	if ws.w != nil {
		ws.closeWatcherLocked()
		ws.log.LogInfo("tracking stopped")
	}
	return nil
}

func (ws *watchSession) closeWatcherLocked() {
	if ws.w == nil {
		return
	}
	close(ws.stop)
	ws.w.Close()
	<-ws.done
	ws.w = nil
}

// feed moves watcher discoveries into the session until stopped. The
// session applies the format filter and baseline; rejections are silent.
func (ws *watchSession) feed(w *watcher.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case d := <-w.Events():
			if ws.session.Discover(d.Path, d.ModTime) {
				ws.log.LogInfo(fmt.Sprintf("tracking %s", filepath.Base(d.Path)))
			}
		case err := <-w.Errors():
			ws.log.LogWarn(fmt.Sprintf("watch: %v", err))
		case <-stop:
			return
		}
	}
}

// Commit runs one synchronous copy pass, journals its outcome, and on
// success persists the rule state so batch counters survive restarts.
func (ws *watchSession) Commit(ctx context.Context, policy engine.Policy, allowMissingTags bool) (*engine.Result, error) {
	started := time.Now()
	res, err := ws.committer.Commit(ctx, engine.StaticPrompter{
		AllowMissingTags: allowMissingTags,
		Policy:           policy,
	})
	if res == nil {
		// The pass never started; nothing to journal.
		return nil, err
	}

	ws.recordPass(started, res, err)
	if err == nil {
		ws.saveSettings()
	}
	return res, err
}

// recordPass writes one pass to the journal, failed passes included. A
// journaling failure is logged, never surfaced, so it cannot fail a copy
// pass that already ran.
func (ws *watchSession) recordPass(started time.Time, res *engine.Result, commitErr error) {
	if ws.store == nil {
		return
	}

	b := &history.Batch{
		StartedAt:  started,
		FinishedAt: time.Now(),
		DestPath:   ws.session.DestPath(),
		Pattern:    ws.session.Pattern(),
		Policy:     string(res.Policy),
		Copied:     res.Copied,
		Ignored:    res.Ignored,
		Vanished:   res.Vanished,
	}
	if commitErr != nil {
		b.Error = commitErr.Error()
	}

	files := make([]history.File, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, history.File{
			SourcePath: f.SourcePath,
			FinalName:  f.FinalName,
			Outcome:    string(f.Outcome),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.store.RecordBatch(ctx, b, files); err != nil {
		ws.log.LogWarn(fmt.Sprintf("journal copy pass: %v", err))
	}
}

func (ws *watchSession) saveSettings() {
	if err := ws.session.SettingsSnapshot().Save(ws.settingsPath); err != nil {
		ws.log.LogWarn(fmt.Sprintf("save settings: %v", err))
	}
}

// multiLogger implements logger.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []logger.Logger
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}
