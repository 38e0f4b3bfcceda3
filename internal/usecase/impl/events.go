package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "devconnect/internal/delivery/context"
	"devconnect/internal/domain/entity"
	"devconnect/internal/domain/service"

	"github.com/google/uuid"
)

const publishTimeout = 2 * time.Second

// eventEmitter publishes identity events on a best-effort basis. A failed
// publish is logged and never fails the operation that triggered it.
type eventEmitter struct {
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func newEventEmitter(publisher service.EventPublisher, logger *slog.Logger) *eventEmitter {
	return &eventEmitter{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (e *eventEmitter) emit(ctx context.Context, eventType string, identity *entity.Identity, fields []string) {
	if e.publisher == nil {
		return
	}

	event := &service.IdentityEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		IdentityID: identity.ID.String(),
		Role:       identity.Role.String(),
		Fields:     fields,
		OccurredAt: e.now().UTC(),
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.publisher.PublishIdentityEvent(publishCtx, event); err != nil {
		requestLogger(ctx, e.logger).Warn("Failed to publish identity event",
			slog.String("type", eventType),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}

func requestLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, fallback)
}
