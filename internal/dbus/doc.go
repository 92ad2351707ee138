// Package dbus talks to the session bus.
// It watches fcitx5 for input method changes, exports the imepop control
// service, and sends desktop notifications through org.freedesktop.Notifications.
package dbus
