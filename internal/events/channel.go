package events

import (
	"context"
	"errors"
)

// ErrBufferFull is returned when the in-process event buffer is saturated.
// Callers treat it like any other publish failure: log and continue.
var ErrBufferFull = errors.New("event buffer full")

// ChannelPublisher fans events into an in-process buffered channel consumed
// by the notification dispatcher. Publish never blocks the caller.
type ChannelPublisher struct {
	ch chan CheckRecorded
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan CheckRecorded, buffer)}
}

func (p *ChannelPublisher) Publish(_ context.Context, event CheckRecorded) error {
	select {
	case p.ch <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Events exposes the consuming side of the buffer.
func (p *ChannelPublisher) Events() <-chan CheckRecorded {
	return p.ch
}

// Close closes the event channel. Publish must not be called afterwards.
func (p *ChannelPublisher) Close() {
	close(p.ch)
}
