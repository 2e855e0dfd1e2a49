// Package ui is the terminal host for a quill session.
//
// Model is a bubbletea model: a text area bound to the document, a
// toolbar listing the key bindings and a status bar showing the path, the
// dirty marker, the last file error and a word count. Keystrokes become
// session intents; published states flow back through the runner's
// Updates channel and reload the text area whenever the session replaces
// the content.
//
// Dialog implements fileio.Picker. File operations run on effect
// goroutines, so a prompt is handed to the model as a Request and the
// effect waits until the user answers or dismisses it.
package ui
