// Package location provides the bundled LocationSource implementation: a
// push source fed by the device over HTTP.
package location

import (
	"context"
	"sync"

	"checkin/internal/domain/service"
)

// PushSource is a LocationSource whose samples are pushed in from outside
// (the HTTP delivery). Publishing never blocks: when the consumer lags, the
// oldest buffered sample is dropped, since only the latest position matters.
type PushSource struct {
	mu      sync.Mutex
	updates chan service.LocationUpdate
}

// NewPushSource creates a push-based location source.
func NewPushSource() *PushSource {
	return &PushSource{
		updates: make(chan service.LocationUpdate, 16),
	}
}

// Watch returns the update stream. The channel is closed when ctx ends.
func (s *PushSource) Watch(ctx context.Context) <-chan service.LocationUpdate {
	out := make(chan service.LocationUpdate)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-s.updates:
				select {
				case out <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Publish pushes one sample into the stream.
func (s *PushSource) Publish(update service.LocationUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case s.updates <- update:
			return
		default:
			// Buffer full: drop the oldest sample.
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
