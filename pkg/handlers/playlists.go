package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createPlaylistRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=100"`
	Description string `json:"description" form:"description" binding:"max=1000"`
}

type updatePlaylistRequest struct {
	Name        string `json:"name" form:"name" binding:"max=100"`
	Description string `json:"description" form:"description" binding:"max=1000"`
}

func (h *Handler) CreatePlaylist(c *gin.Context) {
	var req createPlaylistRequest
	if !bind(c, &req) {
		return
	}
	playlist, err := h.svc.Playlists.Create(c.Request.Context(), currentUser(c).ID, req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, playlist, "Playlist created successfully")
}

func (h *Handler) GetPlaylist(c *gin.Context) {
	id, ok := idParam(c, "playlistId", "playlist")
	if !ok {
		return
	}
	playlist, err := h.svc.Playlists.Get(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Playlist fetched successfully")
}

func (h *Handler) UserPlaylists(c *gin.Context) {
	userID, ok := idParam(c, "userId", "user")
	if !ok {
		return
	}
	p, ok := windowParams(c)
	if !ok {
		return
	}
	page, err := h.svc.Playlists.ListUser(c.Request.Context(), userID, currentUser(c).ID, p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "User playlists fetched successfully")
}

func (h *Handler) UpdatePlaylist(c *gin.Context) {
	id, ok := idParam(c, "playlistId", "playlist")
	if !ok {
		return
	}
	var req updatePlaylistRequest
	if !bind(c, &req) {
		return
	}
	playlist, err := h.svc.Playlists.Update(c.Request.Context(), id, currentUser(c).ID, req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Playlist updated successfully")
}

func (h *Handler) DeletePlaylist(c *gin.Context) {
	id, ok := idParam(c, "playlistId", "playlist")
	if !ok {
		return
	}
	if err := h.svc.Playlists.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Playlist deleted successfully")
}

// playlistVideo reads the videoId and playlistId path params.
func playlistVideo(c *gin.Context) (playlistID, videoID string, ok bool) {
	if videoID, ok = idParam(c, "videoId", "video"); !ok {
		return "", "", false
	}
	if playlistID, ok = idParam(c, "playlistId", "playlist"); !ok {
		return "", "", false
	}
	return playlistID, videoID, true
}

func (h *Handler) AddVideoToPlaylist(c *gin.Context) {
	playlistID, videoID, ok := playlistVideo(c)
	if !ok {
		return
	}
	playlist, err := h.svc.Playlists.AddVideo(c.Request.Context(), playlistID, videoID, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Video added to playlist")
}

func (h *Handler) RemoveVideoFromPlaylist(c *gin.Context) {
	playlistID, videoID, ok := playlistVideo(c)
	if !ok {
		return
	}
	playlist, err := h.svc.Playlists.RemoveVideo(c.Request.Context(), playlistID, videoID, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Video removed from playlist")
}
