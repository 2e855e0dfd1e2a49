// Package session implements the document session core.
//
// A Controller owns the editing session: the current path and content, the
// undo/redo history, the dirty flag and the last file error. It is driven by
// Intents and answers each one with the new State plus any Effects that must
// run to complete it. Effects perform file I/O; their outcome comes back as a
// result intent (FileOpened or FileSaved), so the Controller itself never
// blocks on a dialog or the filesystem.
//
// A Runner hosts a Controller: it applies intents one at a time on a single
// goroutine, runs each effect on its own goroutine, and feeds results back in
// completion order. Observers see every Transition; UIs read the latest State
// from Updates.
//
// Basic usage:
//
//	coord := fileio.NewCoordinator(vfs.NewOSFS(), picker)
//	runner := session.NewRunner(session.NewController(coord))
//	runner.Start()
//	defer runner.Close(context.Background())
//
//	runner.Dispatch(session.Edit{Content: content.New("hello")})
//	runner.Dispatch(session.Save{})
package session
