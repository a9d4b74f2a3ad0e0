package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

func (s *Store) FindSubscription(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.col(colSubscriptions).FindOne(ctx, bson.M{"subscriber": subscriberID, "channel": channelID}).Decode(&sub)
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	newID(&sub.ID)
	stamp(&sub.CreatedAt, nil)
	return s.insert(ctx, colSubscriptions, sub)
}

func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colSubscriptions, id)
}

func (s *Store) ListChannelSubscribers(ctx context.Context, channelID string, p query.Params) (*query.Page[models.SubscriptionView], error) {
	pipeline := subscriptionsPipeline("channel", channelID, "subscriber", p)
	return aggregatePage[models.SubscriptionView](ctx, s.col(colSubscriptions), pipeline, p)
}

func (s *Store) ListSubscribedChannels(ctx context.Context, subscriberID string, p query.Params) (*query.Page[models.SubscriptionView], error) {
	pipeline := subscriptionsPipeline("subscriber", subscriberID, "channel", p)
	return aggregatePage[models.SubscriptionView](ctx, s.col(colSubscriptions), pipeline, p)
}
