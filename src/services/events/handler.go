package events

import "context"

// EventHandler defines the interface for handling messages from a queue.
type EventHandler interface {
	Handle(ctx context.Context, msgBody []byte)
}

// EventHandlerFunc adapts a plain function to EventHandler.
type EventHandlerFunc func(ctx context.Context, msgBody []byte)

func (f EventHandlerFunc) Handle(ctx context.Context, msgBody []byte) {
	f(ctx, msgBody)
}
