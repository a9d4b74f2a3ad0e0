package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube/pkg/query"
	"videotube/pkg/services"
)

type publishRequest struct {
	Title       string `json:"title" form:"title" binding:"required,max=200"`
	Description string `json:"description" form:"description" binding:"max=5000"`
}

type updateVideoRequest struct {
	Title       *string `json:"title" form:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=5000"`
}

func (h *Handler) ListVideos(c *gin.Context) {
	p, ok := listParams(c, query.VideoSorts)
	if !ok {
		return
	}
	page, err := h.svc.Videos.List(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "Videos fetched successfully")
}

func (h *Handler) PublishVideo(c *gin.Context) {
	var req publishRequest
	if !bind(c, &req) {
		return
	}
	videoFile, err := optionalFile(c, "videoFile")
	if err != nil {
		fail(c, err)
		return
	}
	thumbnail, err := optionalFile(c, "thumbnail")
	if err != nil {
		fail(c, err)
		return
	}

	video, err := h.svc.Videos.Publish(c.Request.Context(), currentUser(c).ID, services.PublishInput{
		Title:       req.Title,
		Description: req.Description,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, video, "Video published successfully")
}

func (h *Handler) GetVideo(c *gin.Context) {
	id, ok := idParam(c, "videoId", "video")
	if !ok {
		return
	}
	video, err := h.svc.Videos.Get(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video fetched successfully")
}

func (h *Handler) UpdateVideo(c *gin.Context) {
	id, ok := idParam(c, "videoId", "video")
	if !ok {
		return
	}
	var req updateVideoRequest
	if !bind(c, &req) {
		return
	}
	thumbnail, err := optionalFile(c, "thumbnail")
	if err != nil {
		fail(c, err)
		return
	}

	video, err := h.svc.Videos.Update(c.Request.Context(), id, currentUser(c).ID, services.UpdateVideoInput{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video updated successfully")
}

func (h *Handler) DeleteVideo(c *gin.Context) {
	id, ok := idParam(c, "videoId", "video")
	if !ok {
		return
	}
	if err := h.svc.Videos.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Video deleted successfully")
}

func (h *Handler) TogglePublish(c *gin.Context) {
	id, ok := idParam(c, "videoId", "video")
	if !ok {
		return
	}
	video, err := h.svc.Videos.TogglePublish(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"isPublished": video.IsPublished}, "Video publish status toggled")
}
