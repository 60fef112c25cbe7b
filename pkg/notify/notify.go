// Package notify delivers portal events and transactional messages to the
// customer-messaging service. Callers go through a Dispatcher, which never
// blocks or fails the request that triggered a send.
package notify

import (
	"context"
)

// Notifier is a synchronous backend.
type Notifier interface {
	SendEvent(ctx context.Context, identity, name string, data map[string]any) error
	SendTransactional(ctx context.Context, identity, templateID string, data map[string]any) error
	Identify(ctx context.Context, identity string, attrs map[string]any) error
}
