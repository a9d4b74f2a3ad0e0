package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type contentRequest struct {
	Content string `json:"content" form:"content" binding:"required,max=1000"`
}

func (h *Handler) ListComments(c *gin.Context) {
	videoID, ok := idParam(c, "videoId", "video")
	if !ok {
		return
	}
	p, ok := windowParams(c)
	if !ok {
		return
	}
	page, err := h.svc.Comments.List(c.Request.Context(), videoID, currentUser(c).ID, p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "Comments fetched successfully")
}

func (h *Handler) AddComment(c *gin.Context) {
	videoID, ok := idParam(c, "videoId", "video")
	if !ok {
		return
	}
	var req contentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := h.svc.Comments.Add(c.Request.Context(), videoID, currentUser(c).ID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, comment, "Comment added successfully")
}

func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := idParam(c, "commentId", "comment")
	if !ok {
		return
	}
	var req contentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := h.svc.Comments.Update(c.Request.Context(), id, currentUser(c).ID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comment, "Comment updated successfully")
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := idParam(c, "commentId", "comment")
	if !ok {
		return
	}
	if err := h.svc.Comments.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Comment deleted successfully")
}
