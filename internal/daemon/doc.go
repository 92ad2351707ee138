// Package daemon wires input method events to the display worker.
// It owns the request queue, the input method tracker, the fcitx5 poller
// and signal watcher, configuration hot reload and internal notifications.
package daemon
