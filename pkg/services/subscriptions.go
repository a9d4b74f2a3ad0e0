package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"videotube/pkg/apierror"
	"videotube/pkg/metrics"
	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

type SubscriptionStore interface {
	store.SubscriptionStore
	UserReader
}

type SubscriptionService struct {
	subs SubscriptionStore
}

func NewSubscriptionService(subs SubscriptionStore) *SubscriptionService {
	return &SubscriptionService{subs: subs}
}

// Toggle subscribes userID to channelID, or unsubscribes when already
// subscribed, and reports the new state.
func (s *SubscriptionService) Toggle(ctx context.Context, channelID, userID string) (bool, error) {
	if channelID == userID {
		return false, apierror.BadRequest("You cannot subscribe to yourself")
	}
	if _, err := getUser(ctx, s.subs, channelID, "Channel not found"); err != nil {
		return false, err
	}

	existing, err := s.subs.FindSubscription(ctx, userID, channelID)
	switch {
	case err == nil:
		if err := s.subs.DeleteSubscription(ctx, existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, wrap("unsubscribe", err)
		}
		s.toggled(channelID, userID, false)
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, wrap("find subscription", err)
	}

	sub := &models.Subscription{SubscriberID: userID, ChannelID: channelID}
	if err := s.subs.CreateSubscription(ctx, sub); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return false, wrap("subscribe", err)
	}
	s.toggled(channelID, userID, true)
	return true, nil
}

func (s *SubscriptionService) toggled(channelID, userID string, subscribed bool) {
	metrics.SubscriptionsToggled.WithLabelValues(metrics.State(subscribed)).Inc()
	log.Debug().Str("channel", channelID).Str("user", userID).Bool("subscribed", subscribed).Msg("Subscription toggled")
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelID string, p query.Params) (*query.Page[models.SubscriptionView], error) {
	if _, err := getUser(ctx, s.subs, channelID, "Channel not found"); err != nil {
		return nil, err
	}
	page, err := s.subs.ListChannelSubscribers(ctx, channelID, p)
	return page, wrap("list subscribers", err)
}

func (s *SubscriptionService) Channels(ctx context.Context, subscriberID string, p query.Params) (*query.Page[models.SubscriptionView], error) {
	if _, err := getUser(ctx, s.subs, subscriberID, "User not found"); err != nil {
		return nil, err
	}
	page, err := s.subs.ListSubscribedChannels(ctx, subscriberID, p)
	return page, wrap("list subscribed channels", err)
}
