// Package store defines the persistence contract shared by the document and
// relational backends. Every list method returns the full match count
// alongside the requested window.
package store

import (
	"context"
	"errors"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// WatchHistoryLimit caps the number of entries kept per user.
const WatchHistoryLimit = 100

type AccountUpdate struct {
	FullName string
	Email    string
}

type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *string
	IsPublished *bool
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// FindUserByLogin matches either username or email.
	FindUserByLogin(ctx context.Context, username, email string) (*models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	UpdateUserAccount(ctx context.Context, id string, update AccountUpdate) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	// UpdateUserImage sets the avatar or coverImage field.
	UpdateUserImage(ctx context.Context, id, field, url string) (*models.User, error)

	// SetRefreshToken stores token; an empty token clears the session.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces presented with next only if presented is
	// still the stored value. It reports whether the swap happened.
	RotateRefreshToken(ctx context.Context, id, presented, next string) (bool, error)

	GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
	// GetWatchHistory skips videos that became drafts of other users.
	GetWatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
}

type VideoStore interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id string) (*models.Video, error)
	GetVideoDetail(ctx context.Context, id, viewerID string) (*models.VideoDetail, error)
	// ListVideos returns published videos only.
	ListVideos(ctx context.Context, p query.Params) (*query.Page[models.VideoWithOwner], error)
	UpdateVideo(ctx context.Context, id string, update VideoUpdate) (*models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListVideoComments(ctx context.Context, videoID string, p query.Params) (*query.Page[models.CommentView], error)
	UpdateComment(ctx context.Context, id, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteVideoComments(ctx context.Context, videoID string) error
}

type TweetStore interface {
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweetByID(ctx context.Context, id string) (*models.Tweet, error)
	// ListTweets requires p.OwnerID.
	ListTweets(ctx context.Context, p query.Params) (*query.Page[models.TweetView], error)
	UpdateTweet(ctx context.Context, id, content string) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, id string) error
}

type LikeStore interface {
	FindLike(ctx context.Context, target models.LikeTarget, targetID, userID string) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id string) error
	DeleteTargetLikes(ctx context.Context, target models.LikeTarget, targetID string) error
	ListLikedVideos(ctx context.Context, userID string, p query.Params) (*query.Page[models.LikedVideo], error)
}

type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error)
	// GetPlaylistView and ListUserPlaylists drop videos viewerID may not see.
	GetPlaylistView(ctx context.Context, id, viewerID string) (*models.PlaylistView, error)
	ListUserPlaylists(ctx context.Context, ownerID, viewerID string, p query.Params) (*query.Page[models.PlaylistView], error)
	UpdatePlaylist(ctx context.Context, id, name, description string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	// AddPlaylistVideo reports false when the video was already present.
	AddPlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error)
	// RemovePlaylistVideo reports false when the video was not present.
	RemovePlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error)
	RemoveVideoFromPlaylists(ctx context.Context, videoID string) error
}

type SubscriptionStore interface {
	FindSubscription(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	DeleteSubscription(ctx context.Context, id string) error
	ListChannelSubscribers(ctx context.Context, channelID string, p query.Params) (*query.Page[models.SubscriptionView], error)
	ListSubscribedChannels(ctx context.Context, subscriberID string, p query.Params) (*query.Page[models.SubscriptionView], error)
}

type DashboardStore interface {
	GetChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error)
	ListChannelVideos(ctx context.Context, channelID string, p query.Params) (*query.Page[models.DashboardVideo], error)
}

type Store interface {
	UserStore
	VideoStore
	CommentStore
	TweetStore
	LikeStore
	PlaylistStore
	SubscriptionStore
	DashboardStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
