package notify

import (
	"context"
	"errors"

	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
)

// Multi delivers to every sink and joins their errors.
type Multi []guard.NotificationSink

func (m Multi) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
