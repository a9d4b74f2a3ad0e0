package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) GetChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	stats, err := aggregateOne[models.ChannelStats](ctx, s.col(colVideos), channelTotalsPipeline(channelID))
	if errors.Is(err, store.ErrNotFound) {
		stats, err = &models.ChannelStats{}, nil
	}
	if err != nil {
		return nil, err
	}

	stats.TotalSubscribers, err = s.col(colSubscriptions).CountDocuments(ctx, bson.M{"channel": channelID})
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}

	ids, err := s.col(colVideos).Distinct(ctx, "_id", bson.M{"owner": channelID})
	if err != nil {
		return nil, fmt.Errorf("list channel videos: %w", err)
	}
	if len(ids) > 0 {
		stats.TotalLikes, err = s.col(colLikes).CountDocuments(ctx, bson.M{
			"targetType": models.LikeVideo,
			"target":     bson.M{"$in": ids},
		})
		if err != nil {
			return nil, fmt.Errorf("count likes: %w", err)
		}
	}
	return stats, nil
}

func (s *Store) ListChannelVideos(ctx context.Context, channelID string, p query.Params) (*query.Page[models.DashboardVideo], error) {
	return aggregatePage[models.DashboardVideo](ctx, s.col(colVideos), channelVideosPipeline(channelID, p), p)
}
