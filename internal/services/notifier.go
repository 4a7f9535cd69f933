package services

import (
	"context"

	"github.com/Edjery/budget-trackr/internal/amqp"
	"github.com/Edjery/budget-trackr/internal/log"
)

// Notifier receives an event after each committed mutation. *amqp.Client implements it.
type Notifier interface {
	PublishChange(ctx context.Context, event amqp.ChangeEvent) error
}

// notify publishes without failing the caller; the mutation is already persisted.
func notify(ctx context.Context, n Notifier, logger *log.Logger, event amqp.ChangeEvent) {
	if n == nil {
		return
	}
	if err := n.PublishChange(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldOperation, log.OpPublish,
			log.FieldEntity, event.Entity,
			log.FieldError, err)
	}
}
