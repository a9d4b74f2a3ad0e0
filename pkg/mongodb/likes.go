package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

func (s *Store) FindLike(ctx context.Context, target models.LikeTarget, targetID, userID string) (*models.Like, error) {
	var like models.Like
	err := s.col(colLikes).FindOne(ctx, bson.M{
		"targetType": target,
		"target":     targetID,
		"likedBy":    userID,
	}).Decode(&like)
	if err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (s *Store) CreateLike(ctx context.Context, like *models.Like) error {
	newID(&like.ID)
	stamp(&like.CreatedAt, nil)
	return s.insert(ctx, colLikes, like)
}

func (s *Store) DeleteLike(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colLikes, id)
}

func (s *Store) DeleteTargetLikes(ctx context.Context, target models.LikeTarget, targetID string) error {
	if _, err := s.col(colLikes).DeleteMany(ctx, bson.M{"targetType": target, "target": targetID}); err != nil {
		return fmt.Errorf("delete %s likes: %w", target, err)
	}
	return nil
}

func (s *Store) ListLikedVideos(ctx context.Context, userID string, p query.Params) (*query.Page[models.LikedVideo], error) {
	return aggregatePage[models.LikedVideo](ctx, s.col(colLikes), likedVideosPipeline(userID, p), p)
}
