package app

import (
	"context"
	"os"
	"time"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/fileio"
	"github.com/dshills/quill/internal/plugin/hook"
	"github.com/dshills/quill/internal/project/vfs"
	"github.com/dshills/quill/internal/session"
	"github.com/dshills/quill/internal/ui"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 5),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogger,
		b.initFiles,
		b.initSession,
		b.initHooks,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

// initConfig loads the configuration file, or takes the one in Options.
func (b *bootstrapper) initConfig() error {
	cfg := b.opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return NewComponentError("config", "load", err)
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return NewComponentError("config", "validate", err)
	}

	home, _ := os.UserHomeDir()
	b.app.home = home
	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogger opens the log file named by the config.
func (b *bootstrapper) initLogger() error {
	cfg := b.app.config
	logger, closer, err := openLogger(cfg.Logging.File, cfg.Logging.Level, b.opts.LogOutput)
	if err != nil {
		return NewComponentError("logging", "open", err)
	}
	b.app.logger = logger
	b.app.logFile = closer
	b.initOrder = append(b.initOrder, "logger")

	if cfg.Path != "" {
		logger.WithField("path", cfg.Path).Info("config loaded")
	} else {
		logger.Debug("no config file, using defaults")
	}
	return nil
}

// initFiles creates the file coordinator and its prompt.
func (b *bootstrapper) initFiles() error {
	fsys := b.opts.FS
	if fsys == nil {
		fsys = vfs.NewOSFS()
	}

	picker := b.opts.Picker
	if picker == nil {
		b.app.dialog = ui.NewDialog()
		picker = b.app.dialog
	}

	b.app.files = fileio.NewCoordinator(fsys, picker)
	b.initOrder = append(b.initOrder, "files")
	return nil
}

// initSession creates the controller and the runner that hosts it.
func (b *bootstrapper) initSession() error {
	cfg := b.app.config

	b.app.controller = session.NewController(b.app.files,
		session.WithTheme(cfg.Editor.Theme),
		session.WithCoalesceWindow(cfg.CoalesceWindow()),
		session.WithHistoryLimit(cfg.Editor.HistoryLimit),
	)

	log := b.app.logger.WithComponent("runner")
	b.app.runner = session.NewRunner(b.app.controller,
		session.WithPanicHandler(func(source string, value any, stack []byte) {
			log.Error("%v", &RecoveredPanicError{Source: source, Value: value, Stack: string(stack)})
		}),
	)

	b.app.metrics = NewMetrics()
	b.app.runner.OnTransition(b.app.metrics.Observe)
	b.app.runner.OnTransition(transitionLogger(b.app.logger))
	b.initOrder = append(b.initOrder, "session")
	return nil
}

// initHooks loads the hook script. A broken script is logged and the
// editor runs without hooks.
func (b *bootstrapper) initHooks() error {
	cfg := b.app.config
	if cfg.Hooks.Script == "" {
		return nil
	}

	log := b.app.logger.WithComponent("hooks")
	engine := hook.NewEngine(
		hook.WithTimeout(cfg.HookTimeout()),
		hook.WithLogFunc(func(msg string) { log.Info("%s", msg) }),
		hook.WithErrorHandler(func(err error) { log.Warn("%v", err) }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HookTimeout()+time.Second)
	defer cancel()
	if err := engine.LoadFile(ctx, cfg.Hooks.Script); err != nil {
		log.Warn("%v", NewComponentError("hooks", "load", err))
		engine.Close(ctx)
		return nil
	}

	b.app.hooks = engine
	b.app.runner.OnTransition(hookObserver(engine, b.app.logger))
	b.initOrder = append(b.initOrder, "hooks")
	log.WithField("script", cfg.Hooks.Script).Info("hooks loaded")
	return nil
}

// cleanup performs cleanup in reverse initialization order.
// Called when bootstrap fails partway through.
func (b *bootstrapper) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(ctx, b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(ctx context.Context, component string) {
	switch component {
	case "hooks":
		if b.app.hooks != nil {
			b.app.hooks.Close(ctx)
			b.app.hooks = nil
		}
	case "session":
		if b.app.runner != nil {
			b.app.runner.Close(ctx)
			b.app.runner = nil
		}
		b.app.controller = nil
	case "files":
		b.app.files = nil
		b.app.dialog = nil
	case "logger":
		if b.app.logFile != nil {
			b.app.logFile.Close()
			b.app.logFile = nil
		}
		b.app.logger = NullLogger
	case "config":
		b.app.config = nil
	}
}
