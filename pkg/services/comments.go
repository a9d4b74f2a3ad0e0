package services

import (
	"context"
	"strings"

	"videotube/pkg/apierror"
	"videotube/pkg/auth"
	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

type CommentStore interface {
	store.CommentStore
	VideoReader
	LikeCleaner
}

type CommentService struct {
	comments CommentStore
}

func NewCommentService(comments CommentStore) *CommentService {
	return &CommentService{comments: comments}
}

func content(raw string) (string, error) {
	c := strings.TrimSpace(raw)
	if c == "" {
		return "", apierror.BadRequest("Content is required")
	}
	return c, nil
}

func (s *CommentService) List(ctx context.Context, videoID, viewerID string, p query.Params) (*query.Page[models.CommentView], error) {
	if _, err := visibleVideo(ctx, s.comments, videoID, viewerID); err != nil {
		return nil, err
	}
	page, err := s.comments.ListVideoComments(ctx, videoID, p)
	return page, wrap("list comments", err)
}

func (s *CommentService) Add(ctx context.Context, videoID, userID, raw string) (*models.Comment, error) {
	text, err := content(raw)
	if err != nil {
		return nil, err
	}
	if _, err := visibleVideo(ctx, s.comments, videoID, userID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: text, VideoID: videoID, OwnerID: userID}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, wrap("add comment", err)
	}
	return comment, nil
}

func (s *CommentService) owned(ctx context.Context, id, userID, action string) error {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return lookup(err, "Comment not found")
	}
	return auth.RequireOwner(comment.OwnerID, userID, "You are not allowed to "+action+" this comment")
}

func (s *CommentService) Update(ctx context.Context, id, userID, raw string) (*models.Comment, error) {
	text, err := content(raw)
	if err != nil {
		return nil, err
	}
	if err := s.owned(ctx, id, userID, "update"); err != nil {
		return nil, err
	}

	comment, err := s.comments.UpdateComment(ctx, id, text)
	if err != nil {
		return nil, lookup(err, "Comment not found")
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, id, userID string) error {
	if err := s.owned(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return lookup(err, "Comment not found")
	}
	return wrap("delete comment likes", s.comments.DeleteTargetLikes(ctx, models.LikeComment, id))
}
