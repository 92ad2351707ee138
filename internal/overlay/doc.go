// Package overlay manages short-lived layer-shell surfaces over one long-lived
// connection to the compositor.
//
// A Session owns the connection for the lifetime of the process. Each display
// cycle creates exactly one Surface, waits for the compositor to configure it,
// uploads frames and destroys it again. The compositor itself is reached
// through the Backend interface; the production backend lives in gtkshell and
// tests use overlaytest.
package overlay
