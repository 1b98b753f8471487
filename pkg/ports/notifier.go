package ports

import (
	"context"

	"github.com/aretw0/onboard/pkg/domain"
)

// Notifier is the external notification sink.
// Delivery failures are the sink's concern; the wizard never blocks on them.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n domain.Notification)

// Notify calls f(ctx, n).
func (f NotifierFunc) Notify(ctx context.Context, n domain.Notification) {
	f(ctx, n)
}
