package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

func (s *Store) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	newID(&playlist.ID)
	stamp(&playlist.CreatedAt, &playlist.UpdatedAt)
	if playlist.Videos == nil {
		playlist.Videos = []string{}
	}
	return s.insert(ctx, colPlaylists, playlist)
}

func (s *Store) GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := s.findByID(ctx, colPlaylists, id, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// ordered puts videoDetails back into playlist order; $lookup on an array
// field does not keep it.
func ordered(view *models.PlaylistView) {
	byID := make(map[string]models.Video, len(view.VideoDetails))
	for _, v := range view.VideoDetails {
		byID[v.ID] = v
	}
	details := make([]models.Video, 0, len(view.VideoDetails))
	for _, id := range view.Videos {
		if v, ok := byID[id]; ok {
			details = append(details, v)
		}
	}
	view.VideoDetails = details
	if view.Videos == nil {
		view.Videos = []string{}
	}
}

func (s *Store) GetPlaylistView(ctx context.Context, id, viewerID string) (*models.PlaylistView, error) {
	view, err := aggregateOne[models.PlaylistView](ctx, s.col(colPlaylists), playlistDetailPipeline(id, viewerID))
	if err != nil {
		return nil, err
	}
	ordered(view)
	return view, nil
}

func (s *Store) ListUserPlaylists(ctx context.Context, ownerID, viewerID string, p query.Params) (*query.Page[models.PlaylistView], error) {
	page, err := aggregatePage[models.PlaylistView](ctx, s.col(colPlaylists), userPlaylistsPipeline(ownerID, viewerID, p), p)
	if err != nil {
		return nil, err
	}
	for i := range page.Docs {
		ordered(&page.Docs[i])
	}
	return page, nil
}

func (s *Store) UpdatePlaylist(ctx context.Context, id, name, description string) (*models.Playlist, error) {
	var playlist models.Playlist
	err := s.findAndSet(ctx, colPlaylists, id, bson.M{"name": name, "description": description}, &playlist)
	if err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return &playlist, nil
}

func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colPlaylists, id)
}

func (s *Store) AddPlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error) {
	res, err := s.col(colPlaylists).UpdateOne(ctx,
		bson.M{"_id": playlistID, "videos": bson.M{"$ne": videoID}},
		bson.M{
			"$push": bson.M{"videos": videoID},
			"$set":  bson.M{"updatedAt": now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("add playlist video: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) RemovePlaylistVideo(ctx context.Context, playlistID, videoID string) (bool, error) {
	res, err := s.col(colPlaylists).UpdateOne(ctx,
		bson.M{"_id": playlistID, "videos": videoID},
		bson.M{
			"$pull": bson.M{"videos": videoID},
			"$set":  bson.M{"updatedAt": now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("remove playlist video: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) RemoveVideoFromPlaylists(ctx context.Context, videoID string) error {
	_, err := s.col(colPlaylists).UpdateMany(ctx,
		bson.M{"videos": videoID},
		bson.M{"$pull": bson.M{"videos": videoID}},
	)
	if err != nil {
		return fmt.Errorf("remove video from playlists: %w", err)
	}
	return nil
}
