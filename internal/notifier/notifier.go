package notifier

import "context"

// Notifier delivers a rendered message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// NoopNotifier drops every message. Used when no bot token is configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(context.Context, string) error { return nil }
