package cmd

import (
	"time"

	"textops/config"
	"textops/dispatcher"
	"textops/logging"
)

// logObserver reports dispatcher activity through the process logger.
type logObserver struct{}

func (logObserver) OnApplied(id string, elapsed time.Duration) {
	logging.L().Debug("transformation applied", "id", id, "elapsed", elapsed)
}

func (logObserver) OnFailed(id string, elapsed time.Duration, err error) {
	logging.L().Warn("transformation failed", "id", id, "elapsed", elapsed, "err", err)
}

func (logObserver) OnUnknown(id string) {
	logging.L().Warn("unknown transformation", "id", id)
}

func newDispatcher(c config.Config, observers ...dispatcher.Observer) *dispatcher.Dispatcher {
	opts := []dispatcher.Option{
		dispatcher.WithPolicy(c.Policy()),
		dispatcher.WithObserver(logObserver{}),
	}
	for _, o := range observers {
		opts = append(opts, dispatcher.WithObserver(o))
	}
	return dispatcher.New(opts...)
}
