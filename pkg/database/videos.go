package database

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) CreateVideo(_ context.Context, video *models.Video) error {
	newID(&video.ID)
	if err := s.db.Create(video).Error; err != nil {
		return fmt.Errorf("create video: %w", translate(err))
	}
	return nil
}

func (s *Store) GetVideoByID(_ context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := s.db.Where("id = ?", id).First(&video).Error; err != nil {
		return nil, translate(err)
	}
	return &video, nil
}

func (s *Store) GetVideoDetail(ctx context.Context, id, viewerID string) (*models.VideoDetail, error) {
	video, err := s.GetVideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owners, err := s.ownerSummaries([]string{video.OwnerID})
	if err != nil {
		return nil, err
	}

	detail := &models.VideoDetail{
		VideoWithOwner: models.VideoWithOwner{Video: *video, OwnerDetails: owners[video.OwnerID]},
	}

	likes := s.db.Model(&models.Like{}).Where("target_type = ? AND target_id = ?", models.LikeVideo, id)
	if err := likes.Count(&detail.LikesCount).Error; err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	if viewerID != "" {
		var n int64
		if err := likes.Where("liked_by = ?", viewerID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		detail.IsLiked = n > 0
	}
	return detail, nil
}

func (s *Store) ListVideos(_ context.Context, p query.Params) (*query.Page[models.VideoWithOwner], error) {
	q := s.db.Model(&models.Video{}).Where("is_published = ?", true)
	if p.OwnerID != "" {
		q = q.Where("owner_id = ?", p.OwnerID)
	}
	if p.Search != "" {
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, query.LikePattern(p.Search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}

	var videos []models.Video
	if err := window(q, p).Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	docs, err := s.withOwners(videos)
	if err != nil {
		return nil, err
	}
	return query.NewPage(docs, total, p), nil
}

func (s *Store) UpdateVideo(ctx context.Context, id string, update store.VideoUpdate) (*models.Video, error) {
	fields := map[string]interface{}{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Thumbnail != nil {
		fields["thumbnail"] = *update.Thumbnail
	}
	if update.IsPublished != nil {
		fields["is_published"] = *update.IsPublished
	}
	if len(fields) == 0 {
		return s.GetVideoByID(ctx, id)
	}

	res := s.db.Model(&models.Video{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update video: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetVideoByID(ctx, id)
}

func (s *Store) DeleteVideo(_ context.Context, id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Video{})
	if res.Error != nil {
		return fmt.Errorf("delete video: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementViews(_ context.Context, id string) error {
	res := s.db.Model(&models.Video{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
