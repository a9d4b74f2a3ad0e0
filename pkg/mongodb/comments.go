package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	newID(&comment.ID)
	stamp(&comment.CreatedAt, &comment.UpdatedAt)
	return s.insert(ctx, colComments, comment)
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.findByID(ctx, colComments, id, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Store) ListVideoComments(ctx context.Context, videoID string, p query.Params) (*query.Page[models.CommentView], error) {
	return aggregatePage[models.CommentView](ctx, s.col(colComments), commentsPipeline(videoID, p), p)
}

func (s *Store) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.findAndSet(ctx, colComments, id, bson.M{"content": content}, &comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colComments, id)
}

// DeleteVideoComments removes every comment on videoID and the likes on
// those comments.
func (s *Store) DeleteVideoComments(ctx context.Context, videoID string) error {
	ids, err := s.col(colComments).Distinct(ctx, "_id", bson.M{"video": videoID})
	if err != nil {
		return fmt.Errorf("find video comments: %w", err)
	}
	if len(ids) > 0 {
		_, err := s.col(colLikes).DeleteMany(ctx, bson.M{
			"targetType": models.LikeComment,
			"target":     bson.M{"$in": ids},
		})
		if err != nil {
			return fmt.Errorf("delete comment likes: %w", err)
		}
	}
	if _, err := s.col(colComments).DeleteMany(ctx, bson.M{"video": videoID}); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}
	return nil
}
