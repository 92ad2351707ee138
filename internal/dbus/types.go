package dbus

import (
	"github.com/godbus/dbus/v5"
)

const (
	// DBusInterface is the imepop control interface name.
	DBusInterface = "io.github.jmylchreest.imepop"
	// DBusPath is the imepop control object path.
	DBusPath = "/io/github/jmylchreest/imepop"
	// DBusBusName is the bus name claimed by imepopd.
	DBusBusName = "io.github.jmylchreest.imepop"
)

const (
	// FcitxBusName is the well-known name of the fcitx5 daemon.
	FcitxBusName = "org.fcitx.Fcitx5"
	// FcitxControllerPath is the fcitx5 controller object.
	FcitxControllerPath = "/controller"
	// FcitxControllerInterface exposes CurrentInputMethod.
	FcitxControllerInterface = "org.fcitx.Fcitx.Controller1"
	// FcitxInputMethodInterface emits CurrentIMChanged.
	FcitxInputMethodInterface = "org.fcitx.Fcitx.InputMethod1"

	propertiesInterface = "org.freedesktop.DBus.Properties"
)

const (
	notificationsBusName   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"
)

// ServerInfo is returned by GetServerInformation.
type ServerInfo struct {
	Name    string
	Vendor  string
	Version string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:    "imepopd",
		Vendor:  "imepop",
		Version: "dev",
	}
}

// Urgency is the freedesktop notification urgency level.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Notification is an outgoing org.freedesktop.Notifications.Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Urgency       Urgency
	Category      string
	DesktopEntry  string
	Transient     bool
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Hints builds the hints dictionary for the notification.
func (n *Notification) Hints() map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(n.Urgency)),
	}
	if n.Category != "" {
		hints["category"] = dbus.MakeVariant(n.Category)
	}
	if n.DesktopEntry != "" {
		hints["desktop-entry"] = dbus.MakeVariant(n.DesktopEntry)
	}
	if n.Transient {
		hints["transient"] = dbus.MakeVariant(true)
	}
	return hints
}

// args returns the Notify call arguments in wire order.
func (n *Notification) args() []any {
	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	return []any{
		n.AppName,
		n.ReplacesID,
		n.AppIcon,
		n.Summary,
		n.Body,
		actions,
		n.Hints(),
		n.ExpireTimeout,
	}
}
