package dbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

// Fcitx5 reads and watches the active fcitx5 input method.
type Fcitx5 struct {
	conn    *dbus.Conn
	timeout time.Duration
	logger  *slog.Logger
}

// NewFcitx5 creates a client on conn. timeout bounds each method call.
func NewFcitx5(conn *dbus.Conn, timeout time.Duration, logger *slog.Logger) *Fcitx5 {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fcitx5{
		conn:    conn,
		timeout: timeout,
		logger:  logger,
	}
}

// CurrentInputMethod returns the name of the active input method,
// e.g. "mozc" or "keyboard-us".
func (f *Fcitx5) CurrentInputMethod(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	obj := f.conn.Object(FcitxBusName, FcitxControllerPath)
	var name string
	err := obj.CallWithContext(ctx, FcitxControllerInterface+".CurrentInputMethod", 0).Store(&name)
	if err != nil {
		return "", fmt.Errorf("failed to query fcitx5 input method: %w", err)
	}
	return name, nil
}

// matchRules returns the signal subscriptions that indicate an input
// method change.
func matchRules() [][]dbus.MatchOption {
	return [][]dbus.MatchOption{
		{
			dbus.WithMatchSender(FcitxBusName),
			dbus.WithMatchInterface(propertiesInterface),
			dbus.WithMatchMember("PropertiesChanged"),
		},
		{
			dbus.WithMatchInterface(FcitxInputMethodInterface),
			dbus.WithMatchMember("CurrentIMChanged"),
		},
	}
}

// Watch calls fn for every signal that may indicate an input method change,
// until ctx is done. fn runs on the watching goroutine.
func (f *Fcitx5) Watch(ctx context.Context, fn func()) error {
	rules := matchRules()
	for _, rule := range rules {
		if err := f.conn.AddMatchSignalContext(ctx, rule...); err != nil {
			return fmt.Errorf("failed to add fcitx5 match rule: %w", err)
		}
	}
	defer func() {
		for _, rule := range rules {
			if err := f.conn.RemoveMatchSignal(rule...); err != nil {
				f.logger.Debug("failed to remove fcitx5 match rule", "error", err)
			}
		}
	}()

	ch := make(chan *dbus.Signal, 16)
	f.conn.Signal(ch)
	defer f.conn.RemoveSignal(ch)

	f.logger.Debug("watching fcitx5 signals")

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return errors.New("session bus connection closed")
			}
			if IsInputMethodSignal(sig) {
				fn()
			}
		}
	}
}

// IsInputMethodSignal reports whether sig is an fcitx5 input method change.
// The session bus connection is shared, so unrelated PropertiesChanged
// signals are filtered by the interface they describe.
func IsInputMethodSignal(sig *dbus.Signal) bool {
	if sig == nil {
		return false
	}

	switch sig.Name {
	case FcitxInputMethodInterface + ".CurrentIMChanged":
		return true
	case propertiesInterface + ".PropertiesChanged":
		if len(sig.Body) == 0 {
			return false
		}
		iface, ok := sig.Body[0].(string)
		return ok && strings.HasPrefix(iface, "org.fcitx.")
	default:
		return false
	}
}
