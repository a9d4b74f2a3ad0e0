package database

import (
	"context"
	"fmt"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

func (s *Store) GetChannelStats(_ context.Context, channelID string) (*models.ChannelStats, error) {
	stats := &models.ChannelStats{}

	videos := s.db.Model(&models.Video{}).Where("owner_id = ?", channelID)
	if err := videos.Count(&stats.TotalVideos).Error; err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}
	if err := videos.Select("COALESCE(SUM(views), 0)").Row().Scan(&stats.TotalViews); err != nil {
		return nil, fmt.Errorf("sum views: %w", err)
	}

	err := s.db.Model(&models.Subscription{}).Where("channel_id = ?", channelID).Count(&stats.TotalSubscribers).Error
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}

	err = s.db.Table("likes").
		Joins("JOIN videos ON videos.id = likes.target_id").
		Where("likes.target_type = ? AND videos.owner_id = ?", models.LikeVideo, channelID).
		Count(&stats.TotalLikes).Error
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	return stats, nil
}

type likeCount struct {
	TargetID string
	Count    int64
}

// ListChannelVideos pages every video the channel owns, published or not.
func (s *Store) ListChannelVideos(_ context.Context, channelID string, p query.Params) (*query.Page[models.DashboardVideo], error) {
	q := s.db.Model(&models.Video{}).Where("owner_id = ?", channelID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}

	var videos []models.Video
	if err := window(q, p).Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	counts := map[string]int64{}
	if len(videos) > 0 {
		ids := make([]string, 0, len(videos))
		for _, v := range videos {
			ids = append(ids, v.ID)
		}
		var rows []likeCount
		err := s.db.Table("likes").
			Select("target_id, COUNT(*) AS count").
			Where("target_type = ? AND target_id IN (?)", models.LikeVideo, ids).
			Group("target_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("count likes: %w", err)
		}
		for _, r := range rows {
			counts[r.TargetID] = r.Count
		}
	}

	docs := make([]models.DashboardVideo, 0, len(videos))
	for _, v := range videos {
		docs = append(docs, models.DashboardVideo{Video: v, LikesCount: counts[v.ID]})
	}
	return query.NewPage(docs, total, p), nil
}
