package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
)

type PubSubManager struct {
	client *redis.Client
	log    logrus.FieldLogger
}

func NewPubSubManager(client *redis.Client, log logrus.FieldLogger) *PubSubManager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PubSubManager{client: client, log: log}
}

// SubscribeSnapshots calls handler for every snapshot announcement until ctx
// is cancelled. ready, when non-nil, is closed once the subscription is live.
func (p *PubSubManager) SubscribeSnapshots(ctx context.Context, ready chan<- struct{}, handler storage.SnapshotUpdateHandler) error {
	return subscribe(ctx, p, constants.PubSubChannelSnapshots, ready, func(payload string) error {
		var u models.SnapshotUpdate
		if err := json.Unmarshal([]byte(payload), &u); err != nil {
			return err
		}
		handler(u)
		return nil
	})
}

// SubscribeQuotes streams the live quote journal until ctx is cancelled.
func (p *PubSubManager) SubscribeQuotes(ctx context.Context, ready chan<- struct{}, handler func(*models.QuoteRecord)) error {
	return subscribe(ctx, p, constants.PubSubChannelQuotes, ready, func(payload string) error {
		var q models.QuoteRecord
		if err := json.Unmarshal([]byte(payload), &q); err != nil {
			return err
		}
		handler(&q)
		return nil
	})
}

func subscribe(ctx context.Context, p *PubSubManager, channel string, ready chan<- struct{}, decode func(string) error) error {
	sub := p.client.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no message published after
	// ready is missed.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}
	p.log.WithField("channel", channel).Info("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := decode(msg.Payload); err != nil {
				p.log.WithError(err).WithField("channel", channel).Warn("dropping malformed message")
			}
		}
	}
}
