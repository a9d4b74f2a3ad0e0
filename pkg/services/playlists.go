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

type PlaylistStore interface {
	store.PlaylistStore
	UserReader
	VideoReader
}

type PlaylistService struct {
	playlists PlaylistStore
}

func NewPlaylistService(playlists PlaylistStore) *PlaylistService {
	return &PlaylistService{playlists: playlists}
}

func (s *PlaylistService) Create(ctx context.Context, userID, name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierror.BadRequest("Playlist name is required")
	}
	playlist := &models.Playlist{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     userID,
		Videos:      []string{},
	}
	if err := s.playlists.CreatePlaylist(ctx, playlist); err != nil {
		return nil, wrap("create playlist", err)
	}
	return playlist, nil
}

// Get returns the playlist with only the videos viewerID may see.
func (s *PlaylistService) Get(ctx context.Context, id, viewerID string) (*models.PlaylistView, error) {
	view, err := s.playlists.GetPlaylistView(ctx, id, viewerID)
	if err != nil {
		return nil, lookup(err, "Playlist not found")
	}
	return view, nil
}

func (s *PlaylistService) ListUser(ctx context.Context, userID, viewerID string, p query.Params) (*query.Page[models.PlaylistView], error) {
	if _, err := getUser(ctx, s.playlists, userID, "User not found"); err != nil {
		return nil, err
	}
	page, err := s.playlists.ListUserPlaylists(ctx, userID, viewerID, p)
	return page, wrap("list playlists", err)
}

func (s *PlaylistService) owned(ctx context.Context, id, userID string) (*models.Playlist, error) {
	playlist, err := s.playlists.GetPlaylistByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Playlist not found")
	}
	if err := auth.RequireOwner(playlist.OwnerID, userID, "You are not allowed to modify this playlist"); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Update keeps the current name or description when the new one is blank.
func (s *PlaylistService) Update(ctx context.Context, id, userID, name, description string) (*models.Playlist, error) {
	playlist, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if name == "" && description == "" {
		return nil, apierror.BadRequest("Name or description is required")
	}
	if name == "" {
		name = playlist.Name
	}
	if description == "" {
		description = playlist.Description
	}

	updated, err := s.playlists.UpdatePlaylist(ctx, id, name, description)
	if err != nil {
		return nil, lookup(err, "Playlist not found")
	}
	return updated, nil
}

func (s *PlaylistService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return lookup(s.playlists.DeletePlaylist(ctx, id), "Playlist not found")
}

func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID, userID string) (*models.PlaylistView, error) {
	if _, err := s.owned(ctx, playlistID, userID); err != nil {
		return nil, err
	}
	if _, err := visibleVideo(ctx, s.playlists, videoID, userID); err != nil {
		return nil, err
	}

	added, err := s.playlists.AddPlaylistVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, lookup(err, "Playlist not found")
	}
	if !added {
		return nil, apierror.BadRequest("Video already in playlist")
	}
	return s.Get(ctx, playlistID, userID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, userID string) (*models.PlaylistView, error) {
	if _, err := s.owned(ctx, playlistID, userID); err != nil {
		return nil, err
	}

	removed, err := s.playlists.RemovePlaylistVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, lookup(err, "Playlist not found")
	}
	if !removed {
		return nil, apierror.BadRequest("Video is not in the playlist")
	}
	return s.Get(ctx, playlistID, userID)
}
