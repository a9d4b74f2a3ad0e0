package database

import (
	"context"
	"errors"
	"fmt"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) CreateTweet(_ context.Context, tweet *models.Tweet) error {
	newID(&tweet.ID)
	if err := s.db.Create(tweet).Error; err != nil {
		return fmt.Errorf("create tweet: %w", translate(err))
	}
	return nil
}

func (s *Store) GetTweetByID(_ context.Context, id string) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := s.db.Where("id = ?", id).First(&tweet).Error; err != nil {
		return nil, translate(err)
	}
	return &tweet, nil
}

func (s *Store) ListTweets(_ context.Context, p query.Params) (*query.Page[models.TweetView], error) {
	if p.OwnerID == "" {
		return nil, errors.New("list tweets: owner is required")
	}
	q := s.db.Model(&models.Tweet{}).Where("owner_id = ?", p.OwnerID)
	if p.Search != "" {
		q = q.Where(`LOWER(content) LIKE ? ESCAPE '\'`, query.LikePattern(p.Search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count tweets: %w", err)
	}

	var tweets []models.Tweet
	if err := window(q, p).Find(&tweets).Error; err != nil {
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	owners, err := s.ownerSummaries([]string{p.OwnerID})
	if err != nil {
		return nil, err
	}

	docs := make([]models.TweetView, 0, len(tweets))
	for _, t := range tweets {
		docs = append(docs, models.TweetView{Tweet: t, OwnerDetails: owners[t.OwnerID]})
	}
	return query.NewPage(docs, total, p), nil
}

func (s *Store) UpdateTweet(ctx context.Context, id, content string) (*models.Tweet, error) {
	res := s.db.Model(&models.Tweet{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, fmt.Errorf("update tweet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetTweetByID(ctx, id)
}

func (s *Store) DeleteTweet(_ context.Context, id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Tweet{})
	if res.Error != nil {
		return fmt.Errorf("delete tweet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
