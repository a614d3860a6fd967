package event

import (
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/service"
)

// logDispatcher records domain events in the structured log. A broker-backed
// dispatcher can replace it behind the same interface.
type logDispatcher struct {
	logger *log.Logger
}

func NewLogDispatcher(logger *log.Logger) service.EventDispatcher {
	return &logDispatcher{logger: logger}
}

func (d *logDispatcher) Dispatch(event service.Event) error {
	d.logger.WithFields(log.Fields{
		"event":   event.Type(),
		"payload": event,
	}).Info("domain event")
	return nil
}
