package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube/pkg/query"
)

func (h *Handler) CreateTweet(c *gin.Context) {
	var req contentRequest
	if !bind(c, &req) {
		return
	}
	tweet, err := h.svc.Tweets.Create(c.Request.Context(), currentUser(c).ID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, tweet, "Tweet created successfully")
}

func (h *Handler) UserTweets(c *gin.Context) {
	userID, ok := idParam(c, "userId", "user")
	if !ok {
		return
	}
	p, ok := listParams(c, query.TweetSorts)
	if !ok {
		return
	}
	page, err := h.svc.Tweets.ListUser(c.Request.Context(), userID, p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "Tweets fetched successfully")
}

func (h *Handler) UpdateTweet(c *gin.Context) {
	id, ok := idParam(c, "tweetId", "tweet")
	if !ok {
		return
	}
	var req contentRequest
	if !bind(c, &req) {
		return
	}
	tweet, err := h.svc.Tweets.Update(c.Request.Context(), id, currentUser(c).ID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tweet, "Tweet updated successfully")
}

func (h *Handler) DeleteTweet(c *gin.Context) {
	id, ok := idParam(c, "tweetId", "tweet")
	if !ok {
		return
	}
	if err := h.svc.Tweets.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Tweet deleted successfully")
}
