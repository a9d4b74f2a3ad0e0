package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

func (s *Store) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	newID(&tweet.ID)
	stamp(&tweet.CreatedAt, &tweet.UpdatedAt)
	return s.insert(ctx, colTweets, tweet)
}

func (s *Store) GetTweetByID(ctx context.Context, id string) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := s.findByID(ctx, colTweets, id, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (s *Store) ListTweets(ctx context.Context, p query.Params) (*query.Page[models.TweetView], error) {
	if p.OwnerID == "" {
		return nil, errors.New("list tweets: owner is required")
	}
	return aggregatePage[models.TweetView](ctx, s.col(colTweets), tweetsPipeline(p), p)
}

func (s *Store) UpdateTweet(ctx context.Context, id, content string) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := s.findAndSet(ctx, colTweets, id, bson.M{"content": content}, &tweet); err != nil {
		return nil, fmt.Errorf("update tweet: %w", err)
	}
	return &tweet, nil
}

func (s *Store) DeleteTweet(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colTweets, id)
}
