package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ToggleSubscription(c *gin.Context) {
	channelID, ok := idParam(c, "channelId", "channel")
	if !ok {
		return
	}
	subscribed, err := h.svc.Subscriptions.Toggle(c.Request.Context(), channelID, currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	if subscribed {
		respond(c, http.StatusCreated, gin.H{"isSubscribed": true}, "Subscribed successfully")
		return
	}
	respond(c, http.StatusOK, gin.H{"isSubscribed": false}, "Unsubscribed successfully")
}

func (h *Handler) ChannelSubscribers(c *gin.Context) {
	channelID, ok := idParam(c, "channelId", "channel")
	if !ok {
		return
	}
	p, ok := windowParams(c)
	if !ok {
		return
	}
	page, err := h.svc.Subscriptions.Subscribers(c.Request.Context(), channelID, p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "Subscribers fetched successfully")
}

func (h *Handler) SubscribedChannels(c *gin.Context) {
	subscriberID, ok := idParam(c, "subscriberId", "subscriber")
	if !ok {
		return
	}
	p, ok := windowParams(c)
	if !ok {
		return
	}
	page, err := h.svc.Subscriptions.Channels(c.Request.Context(), subscriberID, p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, page, "Subscribed channels fetched successfully")
}
