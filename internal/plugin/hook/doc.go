// Package hook runs user Lua scripts in response to session events.
//
// A script registers handlers through the quill module:
//
//	quill.on("save", function(ev)
//	    quill.log("saved " .. ev.path)
//	end)
//
// Events are "new", "open", "save", "error" and "theme". Each handler
// receives a table with the fields event, path, dirty, kind, category,
// message and theme; fields that do not apply are empty strings.
//
// Scripts run in a sandbox: only the base, table, string and math libraries
// are available, and dofile, loadfile, load and require are removed. Hooks
// observe the session; they have no way to change the document.
//
// The Lua state is owned by one worker goroutine. Fire never blocks: events
// are queued, and when the queue is full they are dropped and counted. Each
// handler call is bounded by a timeout.
package hook
