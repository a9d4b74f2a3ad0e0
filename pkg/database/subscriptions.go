package database

import (
	"context"
	"fmt"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) FindSubscription(_ context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).First(&sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (s *Store) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	newID(&sub.ID)
	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("create subscription: %w", translate(err))
	}
	return nil
}

func (s *Store) DeleteSubscription(_ context.Context, id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListChannelSubscribers(_ context.Context, channelID string, p query.Params) (*query.Page[models.SubscriptionView], error) {
	return s.listSubscriptions("channel_id", channelID, p, func(sub models.Subscription) string {
		return sub.SubscriberID
	})
}

func (s *Store) ListSubscribedChannels(_ context.Context, subscriberID string, p query.Params) (*query.Page[models.SubscriptionView], error) {
	return s.listSubscriptions("subscriber_id", subscriberID, p, func(sub models.Subscription) string {
		return sub.ChannelID
	})
}

// listSubscriptions filters on column and joins the other side of each pair.
func (s *Store) listSubscriptions(column, id string, p query.Params, other func(models.Subscription) string) (*query.Page[models.SubscriptionView], error) {
	q := s.db.Model(&models.Subscription{}).Where(column+" = ?", id)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}

	var subs []models.Subscription
	if err := window(q, p).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, other(sub))
	}
	users, err := s.ownerSummaries(ids)
	if err != nil {
		return nil, err
	}

	docs := make([]models.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		view := models.SubscriptionView{SubscribedAt: sub.CreatedAt}
		if u := users[other(sub)]; u != nil {
			view.User = *u
		}
		docs = append(docs, view)
	}
	return query.NewPage(docs, total, p), nil
}
