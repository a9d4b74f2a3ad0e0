package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog/log"

	"videotube/pkg/apierror"
	"videotube/pkg/auth"
	"videotube/pkg/media"
	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

// VideoStore is what the video service needs: videos plus the collections
// that reference them.
type VideoStore interface {
	store.VideoStore
	DeleteVideoComments(ctx context.Context, videoID string) error
	DeleteTargetLikes(ctx context.Context, target models.LikeTarget, targetID string) error
	RemoveVideoFromPlaylists(ctx context.Context, videoID string) error
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
}

type PublishInput struct {
	Title       string
	Description string
	VideoFile   *multipart.FileHeader
	Thumbnail   *multipart.FileHeader
}

type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *multipart.FileHeader
}

type VideoService struct {
	videos VideoStore
	media  Media
}

func NewVideoService(videos VideoStore, host Media) *VideoService {
	return &VideoService{videos: videos, media: host}
}

func (s *VideoService) List(ctx context.Context, p query.Params) (*query.Page[models.VideoWithOwner], error) {
	page, err := s.videos.ListVideos(ctx, p)
	return page, wrap("list videos", err)
}

func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishInput) (_ *models.Video, err error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierror.BadRequest("Title is required")
	}
	if in.VideoFile == nil {
		return nil, apierror.BadRequest("Video file is required")
	}
	if in.Thumbnail == nil {
		return nil, apierror.BadRequest("Thumbnail is required")
	}

	videoFile, err := s.media.Store(ctx, media.KindVideo, in.VideoFile)
	if err != nil {
		return nil, err
	}
	uploads := []media.Uploaded{videoFile}
	defer func() {
		if err != nil {
			s.media.Discard(ctx, uploads...)
		}
	}()

	thumbnail, err := s.media.Store(ctx, media.KindThumbnail, in.Thumbnail)
	if err != nil {
		return nil, err
	}
	uploads = append(uploads, thumbnail)

	video := &models.Video{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		VideoFile:   videoFile.URL,
		Thumbnail:   thumbnail.URL,
		Duration:    videoFile.Duration,
		IsPublished: true,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		return nil, wrap("publish video", err)
	}

	log.Info().
		Str("video", video.ID).
		Str("owner", ownerID).
		Str("duration", models.FormatDuration(video.Duration)).
		Msg("Video published")
	return video, nil
}

// Get returns the video if viewerID may see it, counting the view and
// recording it in the viewer's watch history.
func (s *VideoService) Get(ctx context.Context, id, viewerID string) (*models.VideoDetail, error) {
	if _, err := visibleVideo(ctx, s.videos, id, viewerID); err != nil {
		return nil, err
	}

	if err := s.videos.IncrementViews(ctx, id); err != nil {
		return nil, lookup(err, "Video not found")
	}
	if viewerID != "" {
		if err := s.videos.AddToWatchHistory(ctx, viewerID, id); err != nil {
			log.Warn().Err(err).Str("video", id).Str("user", viewerID).Msg("Failed to record watch history")
		}
	}

	detail, err := s.videos.GetVideoDetail(ctx, id, viewerID)
	if err != nil {
		return nil, lookup(err, "Video not found")
	}
	return detail, nil
}

func (s *VideoService) owned(ctx context.Context, id, userID, action string) (*models.Video, error) {
	video, err := getVideo(ctx, s.videos, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(video.OwnerID, userID, "You are not allowed to "+action+" this video"); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) Update(ctx context.Context, id, userID string, in UpdateVideoInput) (*models.Video, error) {
	if _, err := s.owned(ctx, id, userID, "update"); err != nil {
		return nil, err
	}

	update := store.VideoUpdate{Description: in.Description}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apierror.BadRequest("Title cannot be empty")
		}
		update.Title = &title
	}
	if in.Thumbnail != nil {
		thumbnail, err := s.media.Store(ctx, media.KindThumbnail, in.Thumbnail)
		if err != nil {
			return nil, err
		}
		update.Thumbnail = &thumbnail.URL
	}
	if update.Title == nil && update.Description == nil && update.Thumbnail == nil {
		return nil, apierror.BadRequest("Nothing to update")
	}

	video, err := s.videos.UpdateVideo(ctx, id, update)
	if err != nil {
		return nil, lookup(err, "Video not found")
	}
	return video, nil
}

// Delete removes the video with its comments, likes and playlist entries.
func (s *VideoService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID, "delete"); err != nil {
		return err
	}

	if err := s.videos.DeleteVideo(ctx, id); err != nil {
		return lookup(err, "Video not found")
	}
	if err := s.videos.DeleteVideoComments(ctx, id); err != nil {
		return wrap("delete video comments", err)
	}
	if err := s.videos.DeleteTargetLikes(ctx, models.LikeVideo, id); err != nil {
		return wrap("delete video likes", err)
	}
	if err := s.videos.RemoveVideoFromPlaylists(ctx, id); err != nil {
		return wrap("remove video from playlists", err)
	}

	log.Info().Str("video", id).Str("owner", userID).Msg("Video deleted")
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, id, userID string) (*models.Video, error) {
	video, err := s.owned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	published := !video.IsPublished
	updated, err := s.videos.UpdateVideo(ctx, id, store.VideoUpdate{IsPublished: &published})
	if err != nil {
		return nil, lookup(err, "Video not found")
	}
	return updated, nil
}
