package app

import (
	"github.com/dshills/quill/internal/fileio"
	"github.com/dshills/quill/internal/plugin/hook"
	"github.com/dshills/quill/internal/session"
)

// transitionLogger returns an observer that logs every intent at debug,
// and failures and stale results at warn. Cancelled prompts are info.
func transitionLogger(log *Logger) session.Observer {
	log = log.WithComponent("session")
	return func(t session.Transition) {
		if log.Enabled(LogLevelDebug) {
			log.WithFields(map[string]any{
				"intent":   t.Intent.Name(),
				"dirty":    t.After.Dirty,
				"effects":  len(t.Effects),
				"pending":  t.After.Pending,
				"revision": t.After.Revision,
			}).Debug("applied")
		}

		if t.Stale {
			log.WithField("intent", t.Intent.Name()).Warn("stale result arrived for a replaced document")
		}
		if t.Dropped {
			log.WithField("revision", t.After.Revision).Debug("edit dropped for an older revision")
		}

		switch {
		case t.Err == nil:
		case t.Err.Kind == fileio.KindDialogClosed:
			log.WithField("op", t.Err.Op).Info("prompt dismissed")
		default:
			log.WithFields(map[string]any{
				"op":       t.Err.Op,
				"path":     t.Err.Path,
				"category": t.Err.Category,
			}).Warn("%v", t.Err)
		}
	}
}

// hookEvents maps a transition to the hook events it should fire.
func hookEvents(t session.Transition) []hook.Event {
	var events []hook.Event

	switch in := t.Intent.(type) {
	case session.New:
		events = append(events, hook.Event{Name: hook.EventNew, Dirty: t.After.Dirty})
	case session.FileOpened:
		if in.Err == nil {
			events = append(events, hook.Event{Name: hook.EventOpen, Path: t.After.Path, Dirty: t.After.Dirty})
		}
	case session.FileSaved:
		if in.Err == nil {
			events = append(events, hook.Event{Name: hook.EventSave, Path: in.Path, Dirty: t.After.Dirty})
		}
	case session.SelectTheme:
		if t.Before.Theme != t.After.Theme {
			events = append(events, hook.Event{Name: hook.EventTheme, Theme: t.After.Theme})
		}
	}

	if t.Err != nil {
		ev := hook.Event{
			Name:    hook.EventError,
			Path:    t.Err.Path,
			Dirty:   t.After.Dirty,
			Kind:    t.Err.Kind.String(),
			Message: t.Err.Error(),
		}
		if t.Err.Kind == fileio.KindIOFailed {
			ev.Category = t.Err.Category.String()
		}
		events = append(events, ev)
	}
	return events
}

// hookObserver forwards transitions to the hook engine. Fire never blocks;
// dropped events are logged.
func hookObserver(engine *hook.Engine, log *Logger) session.Observer {
	log = log.WithComponent("hooks")
	return func(t session.Transition) {
		for _, ev := range hookEvents(t) {
			if !engine.Fire(ev) {
				log.WithField("event", ev.Name).Warn("hook queue full, event dropped")
			}
		}
	}
}
