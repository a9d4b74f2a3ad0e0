package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube/pkg/models"
)

// toggleLike answers 201 when the like was created and 200 when removed.
func (h *Handler) toggleLike(target models.LikeTarget, param, label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, param, label)
		if !ok {
			return
		}
		liked, err := h.svc.Likes.Toggle(c.Request.Context(), target, id, currentUser(c).ID)
		if err != nil {
			fail(c, err)
			return
		}
		if liked {
			respond(c, http.StatusCreated, gin.H{"isLiked": true}, "Liked successfully")
			return
		}
		respond(c, http.StatusOK, gin.H{"isLiked": false}, "Unliked successfully")
	}
}

func (h *Handler) LikedVideos(c *gin.Context) {
	p, ok := windowParams(c)
	if !ok {
		return
	}
	page, err := h.svc.Likes.LikedVideos(c.Request.Context(), currentUser(c).ID, p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "Liked videos fetched successfully")
}
