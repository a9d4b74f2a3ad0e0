package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube/pkg/query"
)

func (h *Handler) ChannelStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "Channel stats fetched successfully")
}

func (h *Handler) ChannelVideos(c *gin.Context) {
	p, ok := listParams(c, query.VideoSorts)
	if !ok {
		return
	}
	page, err := h.svc.Dashboard.Videos(c.Request.Context(), currentUser(c).ID, p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "Channel videos fetched successfully")
}
