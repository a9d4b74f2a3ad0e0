package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) CreateVideo(ctx context.Context, video *models.Video) error {
	newID(&video.ID)
	stamp(&video.CreatedAt, &video.UpdatedAt)
	return s.insert(ctx, colVideos, video)
}

func (s *Store) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := s.findByID(ctx, colVideos, id, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func (s *Store) GetVideoDetail(ctx context.Context, id, viewerID string) (*models.VideoDetail, error) {
	return aggregateOne[models.VideoDetail](ctx, s.col(colVideos), videoDetailPipeline(id, viewerID))
}

func (s *Store) ListVideos(ctx context.Context, p query.Params) (*query.Page[models.VideoWithOwner], error) {
	return aggregatePage[models.VideoWithOwner](ctx, s.col(colVideos), videoListPipeline(p), p)
}

func (s *Store) UpdateVideo(ctx context.Context, id string, update store.VideoUpdate) (*models.Video, error) {
	set := bson.M{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Thumbnail != nil {
		set["thumbnail"] = *update.Thumbnail
	}
	if update.IsPublished != nil {
		set["isPublished"] = *update.IsPublished
	}

	var video models.Video
	if err := s.findAndSet(ctx, colVideos, id, set, &video); err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}
	return &video, nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colVideos, id)
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res, err := s.col(colVideos).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
