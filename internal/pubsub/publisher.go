package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"svacron-metals/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// MetalUpdate is the message sent to subscribers after a refresh
type MetalUpdate struct {
	Metal       models.MetalType  `json:"metal"`
	PublishedAt time.Time         `json:"publishedAt"`
	Data        *models.MetalData `json:"data"`
}

type Publisher struct {
	client  *redis.Client
	channel string
	logger  *logrus.Logger
}

// NewPublisher publishes on "{channel}:{metal}". A nil client disables
// publishing.
func NewPublisher(client *redis.Client, channel string, logger *logrus.Logger) *Publisher {
	return &Publisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Channel returns the channel updates for a metal are published on
func (p *Publisher) Channel(metal models.MetalType) string {
	return p.channel + ":" + string(metal)
}

// PublishMetal publishes refreshed metal data to Redis
func (p *Publisher) PublishMetal(ctx context.Context, metal models.MetalType, data *models.MetalData) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(MetalUpdate{
		Metal:       metal,
		PublishedAt: time.Now().UTC(),
		Data:        data,
	})
	if err != nil {
		return err
	}

	channel := p.Channel(metal)
	p.logger.WithField("channel", channel).Debug("Publishing metal update")
	return p.client.Publish(ctx, channel, payload).Err()
}
