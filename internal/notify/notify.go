// Package notify tells an operator about applied IP changes.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Notifier delivers one text message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// ChangeMessage formats the per-record change notice, e.g.
//
//	[mysite] home.example.com changed on October 15, 2026 at 08:30. New IP == 203.0.113.7
func ChangeMessage(site, fqdn, ip string, at time.Time) string {
	return fmt.Sprintf("[%s] %s changed on %s. New IP == %s",
		site, fqdn, at.Format("January 02, 2006 at 15:04"), ip)
}
