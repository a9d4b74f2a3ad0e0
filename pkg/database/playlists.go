package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

func (s *Store) CreatePlaylist(_ context.Context, playlist *models.Playlist) error {
	newID(&playlist.ID)
	if playlist.Videos == nil {
		playlist.Videos = []string{}
	}
	if err := s.db.Create(playlist).Error; err != nil {
		return fmt.Errorf("create playlist: %w", translate(err))
	}
	return nil
}

// playlistVideoIDs returns each playlist's video ids in insertion order.
func (s *Store) playlistVideoIDs(playlistIDs []string) (map[string][]string, error) {
	out := map[string][]string{}
	if len(playlistIDs) == 0 {
		return out, nil
	}

	var rows []models.PlaylistVideo
	err := s.db.Where("playlist_id IN (?)", playlistIDs).
		Order("created_at asc").
		Order("video_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load playlist videos: %w", err)
	}
	for _, r := range rows {
		out[r.PlaylistID] = append(out[r.PlaylistID], r.VideoID)
	}
	return out, nil
}

func (s *Store) GetPlaylistByID(_ context.Context, id string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := s.db.Where("id = ?", id).First(&playlist).Error; err != nil {
		return nil, translate(err)
	}
	videoIDs, err := s.playlistVideoIDs([]string{id})
	if err != nil {
		return nil, err
	}
	playlist.Videos = videoIDs[id]
	if playlist.Videos == nil {
		playlist.Videos = []string{}
	}
	return &playlist, nil
}

// views expands playlists with their video documents and owner, keeping
// only the videos viewerID may see.
func (s *Store) views(playlists []models.Playlist, viewerID string) ([]models.PlaylistView, error) {
	ids := make([]string, 0, len(playlists))
	owners := make([]string, 0, len(playlists))
	for _, pl := range playlists {
		ids = append(ids, pl.ID)
		owners = append(owners, pl.OwnerID)
	}

	videoIDs, err := s.playlistVideoIDs(ids)
	if err != nil {
		return nil, err
	}
	var all []string
	for _, vids := range videoIDs {
		all = append(all, vids...)
	}
	videos, err := s.videosByID(all)
	if err != nil {
		return nil, err
	}
	summaries, err := s.ownerSummaries(owners)
	if err != nil {
		return nil, err
	}

	out := make([]models.PlaylistView, 0, len(playlists))
	for _, pl := range playlists {
		view := models.PlaylistView{
			VideoDetails: []models.Video{},
			OwnerDetails: summaries[pl.OwnerID],
		}
		pl.Videos = []string{}
		for _, vid := range videoIDs[pl.ID] {
			if v, ok := videos[vid]; ok && v.VisibleTo(viewerID) {
				pl.Videos = append(pl.Videos, vid)
				view.VideoDetails = append(view.VideoDetails, v)
			}
		}
		view.Playlist = pl
		view.VideoCount = int64(len(pl.Videos))
		out = append(out, view)
	}
	return out, nil
}

func (s *Store) GetPlaylistView(_ context.Context, id, viewerID string) (*models.PlaylistView, error) {
	var playlist models.Playlist
	if err := s.db.Where("id = ?", id).First(&playlist).Error; err != nil {
		return nil, translate(err)
	}
	views, err := s.views([]models.Playlist{playlist}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Store) ListUserPlaylists(_ context.Context, ownerID, viewerID string, p query.Params) (*query.Page[models.PlaylistView], error) {
	q := s.db.Model(&models.Playlist{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count playlists: %w", err)
	}

	var playlists []models.Playlist
	if err := window(q, p).Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	docs, err := s.views(playlists, viewerID)
	if err != nil {
		return nil, err
	}
	return query.NewPage(docs, total, p), nil
}

func (s *Store) UpdatePlaylist(ctx context.Context, id, name, description string) (*models.Playlist, error) {
	res := s.db.Model(&models.Playlist{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        name,
		"description": description,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("update playlist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetPlaylistByID(ctx, id)
}

func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin: %w", tx.Error)
	}
	if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("delete playlist videos: %w", err)
	}
	res := tx.Where("id = ?", id).Delete(&models.Playlist{})
	if res.Error != nil {
		tx.Rollback()
		return fmt.Errorf("delete playlist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return store.ErrNotFound
	}
	return tx.Commit().Error
}

func (s *Store) touchPlaylist(id string) error {
	return s.db.Model(&models.Playlist{}).Where("id = ?", id).UpdateColumn("updated_at", time.Now()).Error
}

func (s *Store) AddPlaylistVideo(_ context.Context, playlistID, videoID string) (bool, error) {
	err := s.db.Create(&models.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID}).Error
	if err != nil {
		if errors.Is(translate(err), store.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("add playlist video: %w", err)
	}
	return true, s.touchPlaylist(playlistID)
}

func (s *Store) RemovePlaylistVideo(_ context.Context, playlistID, videoID string) (bool, error) {
	res := s.db.Where("playlist_id = ? AND video_id = ?", playlistID, videoID).Delete(&models.PlaylistVideo{})
	if res.Error != nil {
		return false, fmt.Errorf("remove playlist video: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, s.touchPlaylist(playlistID)
}

func (s *Store) RemoveVideoFromPlaylists(_ context.Context, videoID string) error {
	if err := s.db.Where("video_id = ?", videoID).Delete(&models.PlaylistVideo{}).Error; err != nil {
		return fmt.Errorf("remove video from playlists: %w", err)
	}
	return nil
}
