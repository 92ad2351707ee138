// Package display runs the overlay display cycle.
// A single Worker goroutine takes texts off a request source one at a time,
// renders them through the render cache, places the surface over the active
// window, and drives the hold and fade-out animation on the overlay session.
package display
