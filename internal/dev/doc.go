// Package dev provides development-time hot reload for templates.
//
// This package implements:
//   - Polling file watcher for template and config changes
//   - Cache flushing on change (resolver cache, template cache)
//   - WebSocket-based browser refresh
//   - Error overlay in browser
//
// # Architecture
//
//   - Watcher: Monitors the template tree for changes
//   - Runner: Flushes registered caches and triggers reloads
//   - ReloadServer: Notifies browsers of changes via WebSocket
//
// # Usage
//
//	runner := dev.NewRunner(cfg.Dev.Watch, cfg.Dev.Ignore, resolverCache, templateProvider)
//	mux.HandleFunc(dev.ReloadPath, runner.ReloadServer().HandleWebSocket)
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	go runner.Run(ctx)
//
// # Hot Reload Protocol
//
// The browser connects to /_routra/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
