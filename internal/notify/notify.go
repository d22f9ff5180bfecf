// Package notify defines the out-of-band notification capability used to keep
// the bot owner informed. It is injected where needed rather than resolved
// from ambient state.
package notify

import "context"

// Notifier delivers a short diagnostic text somewhere out of band. Delivery is
// best effort; implementations must not block the caller on failure paths.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Noop discards all notifications.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, string) {}
