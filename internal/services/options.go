package services

import (
	"github.com/Edjery/budget-trackr/internal/log"
	"github.com/Edjery/budget-trackr/internal/metrics"
)

// Options carries the collaborators shared by the services. Every field is optional.
type Options struct {
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *log.Logger
}

func (o Options) logger(component string) *log.Logger {
	if o.Logger == nil {
		return log.Default().WithComponent(component)
	}
	return o.Logger.WithComponent(component)
}
