package services

import (
	"context"

	"videotube/pkg/auth"
	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

type TweetStore interface {
	store.TweetStore
	UserReader
	LikeCleaner
}

type TweetService struct {
	tweets TweetStore
}

func NewTweetService(tweets TweetStore) *TweetService {
	return &TweetService{tweets: tweets}
}

func (s *TweetService) Create(ctx context.Context, userID, raw string) (*models.Tweet, error) {
	text, err := content(raw)
	if err != nil {
		return nil, err
	}
	tweet := &models.Tweet{Content: text, OwnerID: userID}
	if err := s.tweets.CreateTweet(ctx, tweet); err != nil {
		return nil, wrap("create tweet", err)
	}
	return tweet, nil
}

// ListUser pages the tweets of userID; p.Search filters on content.
func (s *TweetService) ListUser(ctx context.Context, userID string, p query.Params) (*query.Page[models.TweetView], error) {
	if _, err := getUser(ctx, s.tweets, userID, "User not found"); err != nil {
		return nil, err
	}
	p.OwnerID = userID
	page, err := s.tweets.ListTweets(ctx, p)
	return page, wrap("list tweets", err)
}

func (s *TweetService) owned(ctx context.Context, id, userID, action string) error {
	tweet, err := s.tweets.GetTweetByID(ctx, id)
	if err != nil {
		return lookup(err, "Tweet not found")
	}
	return auth.RequireOwner(tweet.OwnerID, userID, "You are not allowed to "+action+" this tweet")
}

func (s *TweetService) Update(ctx context.Context, id, userID, raw string) (*models.Tweet, error) {
	text, err := content(raw)
	if err != nil {
		return nil, err
	}
	if err := s.owned(ctx, id, userID, "update"); err != nil {
		return nil, err
	}
	tweet, err := s.tweets.UpdateTweet(ctx, id, text)
	if err != nil {
		return nil, lookup(err, "Tweet not found")
	}
	return tweet, nil
}

func (s *TweetService) Delete(ctx context.Context, id, userID string) error {
	if err := s.owned(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := s.tweets.DeleteTweet(ctx, id); err != nil {
		return lookup(err, "Tweet not found")
	}
	return wrap("delete tweet likes", s.tweets.DeleteTargetLikes(ctx, models.LikeTweet, id))
}
