package gateway

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelTransport is an in-process transport over watermill's gochannel
// pubsub. Used for tests and single-binary deployments without Redis.
type ChannelTransport struct {
	pubSub        *gochannel.GoChannel
	askTopic      string
	responseTopic string
	messages      <-chan *message.Message
}

func NewChannelTransport(pubSub *gochannel.GoChannel, askTopic, responseTopic string) (*ChannelTransport, error) {
	messages, err := pubSub.Subscribe(context.Background(), askTopic)
	if err != nil {
		return nil, err
	}
	return &ChannelTransport{
		pubSub:        pubSub,
		askTopic:      askTopic,
		responseTopic: responseTopic,
		messages:      messages,
	}, nil
}

func (t *ChannelTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-t.messages:
		if !ok {
			return nil, context.Canceled
		}
		msg.Ack()
		return msg.Payload, nil
	}
}

func (t *ChannelTransport) Respond(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return t.pubSub.Publish(t.responseTopic, msg)
}

func (t *ChannelTransport) Close() error {
	return t.pubSub.Close()
}
