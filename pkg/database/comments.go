package database

import (
	"context"
	"fmt"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	newID(&comment.ID)
	if err := s.db.Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", translate(err))
	}
	return nil
}

func (s *Store) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) ListVideoComments(_ context.Context, videoID string, p query.Params) (*query.Page[models.CommentView], error) {
	q := s.db.Model(&models.Comment{}).Where("video_id = ?", videoID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	var comments []models.Comment
	if err := window(q, p).Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.OwnerID)
	}
	owners, err := s.ownerSummaries(ids)
	if err != nil {
		return nil, err
	}

	docs := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		docs = append(docs, models.CommentView{Comment: c, OwnerDetails: owners[c.OwnerID]})
	}
	return query.NewPage(docs, total, p), nil
}

func (s *Store) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	res := s.db.Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, fmt.Errorf("update comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetCommentByID(ctx, id)
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return fmt.Errorf("delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteVideoComments removes every comment on videoID and the likes on
// those comments.
func (s *Store) DeleteVideoComments(ctx context.Context, videoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin: %w", tx.Error)
	}

	var ids []string
	if err := tx.Model(&models.Comment{}).Where("video_id = ?", videoID).Pluck("id", &ids).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("find video comments: %w", err)
	}
	if len(ids) > 0 {
		err := tx.Where("target_type = ? AND target_id IN (?)", models.LikeComment, ids).Delete(&models.Like{}).Error
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("delete comment likes: %w", err)
		}
	}
	if err := tx.Where("video_id = ?", videoID).Delete(&models.Comment{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("delete video comments: %w", err)
	}
	return tx.Commit().Error
}
