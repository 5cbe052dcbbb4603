package bootstrap

import (
	"context"

	"github.com/kbukum/webhost/component"
	"github.com/kbukum/webhost/logger"
)

// sinkComponent runs a log sink under the component lifecycle so pending
// batches are flushed on shutdown.
type sinkComponent struct {
	sink logger.Sink
}

var (
	_ component.Component   = (*sinkComponent)(nil)
	_ component.Describable = (*sinkComponent)(nil)
)

func (s *sinkComponent) Name() string { return "log-sink-" + s.sink.Name() }

func (s *sinkComponent) Start(ctx context.Context) error { return s.sink.Start(ctx) }

func (s *sinkComponent) Stop(ctx context.Context) error { return s.sink.Stop(ctx) }

// Health degrades while the last delivery failed.
func (s *sinkComponent) Health(ctx context.Context) component.Health {
	h := component.Health{Name: s.Name(), Status: component.StatusHealthy}
	if le, ok := s.sink.(interface{ LastError() error }); ok {
		if err := le.LastError(); err != nil {
			h.Status = component.StatusDegraded
			h.Message = err.Error()
		}
	}
	return h
}

func (s *sinkComponent) Describe() component.Description {
	return component.Description{Name: "Log sink " + s.sink.Name(), Type: "log-sink", Details: s.sink.Name()}
}
