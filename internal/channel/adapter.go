// Package channel defines the boundary between the media bot and messaging
// transports: message types, adapter contracts and the inbound dispatcher.
package channel

import (
	"context"
	"errors"
	"sync/atomic"
)

var ErrStopNotSupported = errors.New("channel connection stop not supported")

type InboundHandler func(ctx context.Context, msg InboundMessage) error

// ReplySender sends messages back to the conversation an inbound message came from.
type ReplySender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

type Adapter interface {
	Type() Type
}

type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

type Receiver interface {
	Connect(ctx context.Context, handler InboundHandler) (Connection, error)
}

type Connection interface {
	ChannelType() Type
	Stop(ctx context.Context) error
	Running() bool
}

type BaseConnection struct {
	channelType Type
	stop        func(ctx context.Context) error
	running     atomic.Bool
}

func NewConnection(channelType Type, stop func(ctx context.Context) error) *BaseConnection {
	conn := &BaseConnection{
		channelType: channelType,
		stop:        stop,
	}
	conn.running.Store(true)
	return conn
}

func (c *BaseConnection) ChannelType() Type {
	return c.channelType
}

func (c *BaseConnection) Stop(ctx context.Context) error {
	if c.stop == nil {
		return ErrStopNotSupported
	}
	err := c.stop(ctx)
	if err == nil {
		c.running.Store(false)
	}
	return err
}

func (c *BaseConnection) Running() bool {
	return c.running.Load()
}
