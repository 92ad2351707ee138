package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// SendNotification shows n through the desktop notification daemon and
// returns the notification ID it assigned.
func SendNotification(ctx context.Context, conn *dbus.Conn, n *Notification) (uint32, error) {
	if conn == nil {
		return 0, fmt.Errorf("not connected to D-Bus")
	}

	obj := conn.Object(notificationsBusName, notificationsPath)
	var id uint32
	err := obj.CallWithContext(ctx, notificationsInterface+".Notify", 0, n.args()...).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return id, nil
}
