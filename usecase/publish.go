package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/Logitar/Identity-sub002/core/domain"
	"github.com/Logitar/Identity-sub002/core/port"
)

// publish hands committed events downstream. The save already succeeded, so a
// publication failure is logged, never returned.
func publish(ctx context.Context, publisher port.EventPublisher, logger *zap.Logger, events []domain.Event) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("publish committed events", zap.Int("count", len(events)), zap.Error(err))
	}
}
