package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls a running imepopd over the session bus.
type Client struct {
	conn *dbus.Conn
}

// NewClient creates a client on conn.
func NewClient(conn *dbus.Conn) *Client {
	return &Client{conn: conn}
}

// Connect opens a client on the shared session bus.
func Connect() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewClient(conn), nil
}

func (c *Client) object() dbus.BusObject {
	return c.conn.Object(DBusBusName, DBusPath)
}

// Show asks the daemon to display text.
func (c *Client) Show(ctx context.Context, text string) error {
	if err := c.object().CallWithContext(ctx, DBusInterface+".Show", 0, text).Err; err != nil {
		return fmt.Errorf("failed to call Show: %w", err)
	}
	return nil
}

// ShowInputMethod asks the daemon to display the text configured for name.
func (c *Client) ShowInputMethod(ctx context.Context, name string) error {
	if err := c.object().CallWithContext(ctx, DBusInterface+".ShowInputMethod", 0, name).Err; err != nil {
		return fmt.Errorf("failed to call ShowInputMethod: %w", err)
	}
	return nil
}

// ServerInformation returns the daemon's name, vendor and version.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.object().CallWithContext(ctx, DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("failed to query daemon: %w", err)
	}
	return info, nil
}

// DaemonRunning reports whether imepopd owns its bus name.
func (c *Client) DaemonRunning(ctx context.Context) (bool, error) {
	var has bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, DBusBusName).Store(&has)
	if err != nil {
		return false, fmt.Errorf("failed to query bus name owner: %w", err)
	}
	return has, nil
}
