// Package app wires the quill editor together: configuration, logging,
// the file coordinator, the session runner, hooks and the terminal UI. It
// manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/fileio"
	"github.com/dshills/quill/internal/plugin/hook"
	"github.com/dshills/quill/internal/project/vfs"
	"github.com/dshills/quill/internal/session"
	"github.com/dshills/quill/internal/ui"
)

// ShutdownTimeout bounds how long Run waits for in-flight saves on exit.
const ShutdownTimeout = 10 * time.Second

// Application is the central coordinator for all quill components.
type Application struct {
	config  *config.Config
	home    string
	logger  *Logger
	logFile io.Closer
	metrics *Metrics

	files      *fileio.Coordinator
	dialog     *ui.Dialog
	controller *session.Controller
	runner     *session.Runner
	hooks      *hook.Engine

	started      atomic.Bool
	shutdownOnce sync.Once
	shutdownErr  error
}

// Options configures the application. The zero value is what the quill
// binary uses.
type Options struct {
	// Config is used instead of loading the configuration file.
	Config *config.Config

	// FS backs file operations. Defaults to the OS file system.
	FS vfs.VFS

	// Picker answers open and save prompts. Defaults to the UI dialog.
	Picker fileio.Picker

	// LogOutput receives log lines instead of the configured log file.
	LogOutput io.Writer
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{logger: NullLogger}
	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Start begins processing intents and loads the default file. A missing
// default file is not fatal: the failure shows in the session state and
// the editor starts empty.
func (app *Application) Start() error {
	if !app.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if err := app.runner.Start(); err != nil {
		return NewComponentError("session", "start", err)
	}

	app.logger.Info("session started")
	if path := app.config.Editor.DefaultFile; path != "" {
		if err := app.runner.Dispatch(session.OpenPath{Path: path}); err != nil {
			return NewComponentError("session", "open default file", err)
		}
	}
	return nil
}

// Dispatch sends an intent to the session.
func (app *Application) Dispatch(in session.Intent) error {
	if !app.started.Load() {
		return ErrNotRunning
	}
	return app.runner.Dispatch(in)
}

// Run starts the session and hosts it in the terminal until the user quits
// or ctx is cancelled, then shuts down.
func (app *Application) Run(ctx context.Context) error {
	if err := app.Start(); err != nil {
		return err
	}

	model := ui.New(app.runner, app.dialog, ui.WithHomeDir(app.home))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := program.Run()
	if runErr != nil && errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}
	if runErr != nil {
		runErr = NewComponentError("ui", "run", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, app.Shutdown(shutdownCtx))
}

// Shutdown stops the session, waiting for started saves, then closes hooks
// and the log. It is safe to call more than once.
func (app *Application) Shutdown(ctx context.Context) error {
	app.shutdownOnce.Do(func() {
		var errs ErrorList

		if err := app.runner.Close(ctx); err != nil {
			errs.Add(NewComponentError("session", "close", errors.Join(ErrShutdownTimeout, err)))
		}
		if app.hooks != nil {
			if err := app.hooks.Close(ctx); err != nil {
				errs.Add(NewComponentError("hooks", "close", err))
			}
		}

		app.logger.WithFields(app.metrics.Snapshot().Fields()).Info("session ended")
		if errs.Len() > 0 {
			app.logger.Error("shutdown: %v", &errs)
		}

		if app.logFile != nil {
			if err := app.logFile.Close(); err != nil {
				errs.Add(NewOperationError("close log", app.config.Logging.File, err))
			}
		}
		app.shutdownErr = errs.AsError()
	})
	return app.shutdownErr
}

// Config returns the configuration in use.
func (app *Application) Config() *config.Config {
	return app.config
}

// Runner returns the session runner.
func (app *Application) Runner() *session.Runner {
	return app.runner
}

// State returns the current session state.
func (app *Application) State() session.State {
	return app.runner.State()
}

// Dialog returns the prompt the UI serves, or nil when Options.Picker was
// set.
func (app *Application) Dialog() *ui.Dialog {
	return app.dialog
}

// Hooks returns the hook engine, or nil when no script is loaded.
func (app *Application) Hooks() *hook.Engine {
	return app.hooks
}

// Metrics returns the session metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.logger
}
