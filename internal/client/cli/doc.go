// Package cli provides the interactive Moonlight Match command-line client.
//
// It wires configuration, the local session store, the HTTP API client and
// an interactive REPL. On start the persisted session is restored, a
// background connectivity watcher toggles online/offline mode, and commands
// are read until the user exits.
//
// Key features:
//   - Register / Login / Logout, whoami and profile editing
//   - Browse events, buy tickets, list own events and open the event form
//   - List and reveal matches
//   - Check a scanned QR code for a Google Form link
//   - Admin only: list and create events, watch live matching progress,
//     start matching, send matches and change an event's form link
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
