// Package cli provides the interactive operator console of parentlink.
//
// It drives the mutation façade from plain text commands and runs a
// background connectivity watcher: when the remote comes back after an
// outage every collection is reconciled again.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
