package database

import (
	"context"
	"fmt"
	"time"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) FindLike(_ context.Context, target models.LikeTarget, targetID, userID string) (*models.Like, error) {
	var like models.Like
	err := s.db.Where("target_type = ? AND target_id = ? AND liked_by = ?", target, targetID, userID).
		First(&like).Error
	if err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (s *Store) CreateLike(_ context.Context, like *models.Like) error {
	newID(&like.ID)
	if err := s.db.Create(like).Error; err != nil {
		return fmt.Errorf("create like: %w", translate(err))
	}
	return nil
}

func (s *Store) DeleteLike(_ context.Context, id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Like{})
	if res.Error != nil {
		return fmt.Errorf("delete like: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTargetLikes(_ context.Context, target models.LikeTarget, targetID string) error {
	err := s.db.Where("target_type = ? AND target_id = ?", target, targetID).Delete(&models.Like{}).Error
	if err != nil {
		return fmt.Errorf("delete %s likes: %w", target, err)
	}
	return nil
}

type likedRow struct {
	TargetID  string
	CreatedAt time.Time
}

// ListLikedVideos pages the user's liked videos, newest like first. Videos
// that were deleted, or unpublished by someone else, are left out.
func (s *Store) ListLikedVideos(_ context.Context, userID string, p query.Params) (*query.Page[models.LikedVideo], error) {
	q := s.db.Table("likes").
		Joins("JOIN videos ON videos.id = likes.target_id").
		Where("likes.liked_by = ? AND likes.target_type = ?", userID, models.LikeVideo).
		Where("videos.is_published = ? OR videos.owner_id = ?", true, userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count liked videos: %w", err)
	}

	var rows []likedRow
	err := q.Select("likes.target_id, likes.created_at").
		Order("likes.created_at desc").
		Order("likes.id asc").
		Offset(p.Skip()).
		Limit(p.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list liked videos: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.TargetID)
	}
	byID, err := s.videosByID(ids)
	if err != nil {
		return nil, err
	}
	videos := make([]models.Video, 0, len(rows))
	for _, id := range ids {
		videos = append(videos, byID[id])
	}
	withOwners, err := s.withOwners(videos)
	if err != nil {
		return nil, err
	}

	docs := make([]models.LikedVideo, 0, len(rows))
	for i, r := range rows {
		docs = append(docs, models.LikedVideo{Video: withOwners[i], LikedAt: r.CreatedAt})
	}
	return query.NewPage(docs, total, p), nil
}
