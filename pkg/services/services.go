// Package services holds the per-resource business rules: validation that
// needs the store, ownership and visibility checks, cascades and toggles.
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"videotube/pkg/apierror"
	"videotube/pkg/auth"
	"videotube/pkg/media"
	"videotube/pkg/models"
	"videotube/pkg/store"
)

// Media is the upload side of media.Host.
type Media interface {
	Store(ctx context.Context, kind media.Kind, fh *multipart.FileHeader) (media.Uploaded, error)
	Discard(ctx context.Context, uploads ...media.Uploaded)
}

// TokenIssuer is the session side of auth.Tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, user *models.User) (auth.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.User, auth.Pair, error)
	Revoke(ctx context.Context, userID string) error
}

type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type VideoReader interface {
	GetVideoByID(ctx context.Context, id string) (*models.Video, error)
}

type CommentReader interface {
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
}

type TweetReader interface {
	GetTweetByID(ctx context.Context, id string) (*models.Tweet, error)
}

type LikeCleaner interface {
	DeleteTargetLikes(ctx context.Context, target models.LikeTarget, targetID string) error
}

// lookup turns store.ErrNotFound into a 404 with message.
func lookup(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apierror.NotFound(message)
	}
	return err
}

func getVideo(ctx context.Context, videos VideoReader, id string) (*models.Video, error) {
	video, err := videos.GetVideoByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Video not found")
	}
	return video, nil
}

// visibleVideo loads a video that viewerID is allowed to see.
func visibleVideo(ctx context.Context, videos VideoReader, id, viewerID string) (*models.Video, error) {
	video, err := getVideo(ctx, videos, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanView(video, viewerID); err != nil {
		return nil, err
	}
	return video, nil
}

func getUser(ctx context.Context, users UserReader, id, message string) (*models.User, error) {
	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		return nil, lookup(err, message)
	}
	return user, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
