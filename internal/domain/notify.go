package domain

import "context"

// Notifier delivers a reminder to a profile owner.
type Notifier interface {
	Notify(ctx context.Context, p UserProfile, title, body string) error
}
