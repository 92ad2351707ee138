package dbus

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// ShowHandler is called when Show requests literal overlay text.
type ShowHandler func(text string)

// InputMethodHandler is called when ShowInputMethod names an input method.
type InputMethodHandler func(name string)

// ControlServer exports the imepop control interface.
type ControlServer struct {
	conn   *dbus.Conn
	logger *slog.Logger

	showHandler ShowHandler
	imHandler   InputMethodHandler

	mu         sync.Mutex
	serverInfo ServerInfo
	running    bool
}

// NewControlServer creates a new ControlServer.
func NewControlServer(logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlServer{
		logger:     logger,
		serverInfo: DefaultServerInfo(),
	}
}

// SetShowHandler sets the handler called for Show.
func (s *ControlServer) SetShowHandler(handler ShowHandler) {
	s.showHandler = handler
}

// SetInputMethodHandler sets the handler called for ShowInputMethod.
func (s *ControlServer) SetInputMethodHandler(handler InputMethodHandler) {
	s.imHandler = handler
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *ControlServer) SetServerInfo(info ServerInfo) {
	s.serverInfo = info
}

// Start exports the control service on conn and claims the bus name.
// conn is shared with the rest of the daemon and is not closed by Stop.
func (s *ControlServer) Start(conn *dbus.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	s.conn = conn

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: controlMethods(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken, is another imepopd running?", DBusBusName)
	}

	s.running = true
	s.logger.Info("D-Bus control server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name and unexports the object.
func (s *ControlServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, DBusPath, DBusInterface)
	_ = s.conn.Export(nil, DBusPath, "org.freedesktop.DBus.Introspectable")

	s.logger.Info("D-Bus control server stopped")
	return nil
}

// Running reports whether the service is exported.
func (s *ControlServer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Show displays text on the overlay as-is.
// D-Bus method: Show(s) -> nothing
func (s *ControlServer) Show(text string) *dbus.Error {
	s.logger.Debug("Show called", "text", text)

	if strings.TrimSpace(text) == "" {
		return dbus.MakeFailedError(fmt.Errorf("text must not be empty"))
	}
	if s.showHandler != nil {
		s.showHandler(text)
	}
	return nil
}

// ShowInputMethod displays the configured text for an input method name.
// D-Bus method: ShowInputMethod(s) -> nothing
func (s *ControlServer) ShowInputMethod(name string) *dbus.Error {
	s.logger.Debug("ShowInputMethod called", "name", name)

	if name == "" {
		return dbus.MakeFailedError(fmt.Errorf("input method name must not be empty"))
	}
	if s.imHandler != nil {
		s.imHandler(name)
	}
	return nil
}

// GetServerInformation returns information about the daemon.
// D-Bus method: GetServerInformation() -> (sss)
func (s *ControlServer) GetServerInformation() (string, string, string, *dbus.Error) {
	s.logger.Debug("GetServerInformation called")
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, nil
}

// controlMethods returns the D-Bus method introspection data.
func controlMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Show",
			Args: []introspect.Arg{
				{Name: "text", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "ShowInputMethod",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
			},
		},
	}
}
