package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"videotube/pkg/metrics"
	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

type LikeStore interface {
	store.LikeStore
	VideoReader
	CommentReader
	TweetReader
}

type LikeService struct {
	likes LikeStore
}

func NewLikeService(likes LikeStore) *LikeService {
	return &LikeService{likes: likes}
}

// target checks that the liked entity exists and that userID can see it.
func (s *LikeService) target(ctx context.Context, target models.LikeTarget, id, userID string) error {
	switch target {
	case models.LikeVideo:
		_, err := visibleVideo(ctx, s.likes, id, userID)
		return err
	case models.LikeComment:
		comment, err := s.likes.GetCommentByID(ctx, id)
		if err != nil {
			return lookup(err, "Comment not found")
		}
		_, err = visibleVideo(ctx, s.likes, comment.VideoID, userID)
		return err
	case models.LikeTweet:
		_, err := s.likes.GetTweetByID(ctx, id)
		return lookup(err, "Tweet not found")
	}
	return errors.New("unknown like target " + string(target))
}

// Toggle flips the like of userID on the target and reports the new state.
// A racing insert that hits the unique index counts as already liked.
func (s *LikeService) Toggle(ctx context.Context, target models.LikeTarget, id, userID string) (bool, error) {
	if err := s.target(ctx, target, id, userID); err != nil {
		return false, err
	}

	existing, err := s.likes.FindLike(ctx, target, id, userID)
	switch {
	case err == nil:
		if err := s.likes.DeleteLike(ctx, existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, wrap("unlike", err)
		}
		s.toggled(target, id, userID, false)
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, wrap("find like", err)
	}

	like := &models.Like{TargetType: target, TargetID: id, LikedBy: userID}
	if err := s.likes.CreateLike(ctx, like); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return false, wrap("like", err)
	}
	s.toggled(target, id, userID, true)
	return true, nil
}

func (s *LikeService) toggled(target models.LikeTarget, id, userID string, liked bool) {
	metrics.LikesToggled.WithLabelValues(string(target), metrics.State(liked)).Inc()
	log.Debug().Str("target", string(target)).Str("id", id).Str("user", userID).Bool("liked", liked).Msg("Like toggled")
}

func (s *LikeService) LikedVideos(ctx context.Context, userID string, p query.Params) (*query.Page[models.LikedVideo], error) {
	page, err := s.likes.ListLikedVideos(ctx, userID, p)
	return page, wrap("list liked videos", err)
}
