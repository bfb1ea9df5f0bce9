package control

import (
	"context"
	"fmt"

	"github.com/nerrad567/switchboard/internal/infrastructure/mqtt"
)

// Broker is the transport a Publisher writes to. Satisfied by *mqtt.Client.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Publisher sends control commands to the broker on per-user, per-device
// topics. It holds no mutable state and is safe for concurrent use.
//
// Success means the broker accepted the message. Whether the RF bridge
// received or executed it is not observed.
type Publisher struct {
	broker Broker
	topics mqtt.Topics
	codec  Codec
	qos    byte
}

// NewPublisher creates a Publisher. Commands are published at qos and never
// retained.
func NewPublisher(broker Broker, topics mqtt.Topics, codec Codec, qos byte) *Publisher {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Publisher{
		broker: broker,
		topics: topics,
		codec:  codec,
		qos:    qos,
	}
}

// Publish sends action for deviceID on behalf of userID. The action is
// treated as an opaque string; callers validate it.
//
// Errors: ErrTransport.
func (p *Publisher) Publish(ctx context.Context, userID int64, action string, deviceID int64) error {
	return p.Send(ctx, NewCommand(userID, action, deviceID))
}

// Send publishes a prepared command. A cancelled ctx fails before anything
// is sent; once handed to the broker the mqtt publish timeout applies.
func (p *Publisher) Send(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	payload, err := p.codec.Encode(cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	topic := p.topics.DeviceCommand(cmd.UserID, cmd.DeviceID, cmd.Action)
	if err := p.broker.Publish(topic, payload, p.qos, false); err != nil {
		return fmt.Errorf("%w: publishing to %s: %w", ErrTransport, topic, err)
	}
	return nil
}
