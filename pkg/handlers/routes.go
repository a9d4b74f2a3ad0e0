package handlers

import (
	"github.com/gin-gonic/gin"

	"videotube/pkg/metrics"
	"videotube/pkg/models"
)

// Routes mounts the API under /api/v1 plus /healthcheck and /metrics.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/healthcheck", h.Healthcheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	api.GET("/healthcheck", h.Healthcheck)

	users := api.Group("/users")
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refresh-token", h.RefreshToken)

	secured := api.Group("", h.RequireAuth())

	me := secured.Group("/users")
	me.POST("/logout", h.Logout)
	me.POST("/change-password", h.ChangePassword)
	me.GET("/current-user", h.CurrentUser)
	me.PATCH("/update-account", h.UpdateAccount)
	me.PATCH("/avatar", h.UpdateAvatar)
	me.PATCH("/cover-image", h.UpdateCoverImage)
	me.GET("/c/:username", h.ChannelProfile)
	me.GET("/history", h.WatchHistory)

	videos := secured.Group("/videos")
	videos.GET("", h.ListVideos)
	videos.POST("", h.PublishVideo)
	videos.GET("/:videoId", h.GetVideo)
	videos.PATCH("/:videoId", h.UpdateVideo)
	videos.DELETE("/:videoId", h.DeleteVideo)
	videos.PATCH("/toggle/publish/:videoId", h.TogglePublish)

	comments := secured.Group("/comments")
	comments.GET("/:videoId", h.ListComments)
	comments.POST("/:videoId", h.AddComment)
	comments.PATCH("/c/:commentId", h.UpdateComment)
	comments.DELETE("/c/:commentId", h.DeleteComment)

	tweets := secured.Group("/tweets")
	tweets.POST("", h.CreateTweet)
	tweets.GET("/user/:userId", h.UserTweets)
	tweets.PATCH("/:tweetId", h.UpdateTweet)
	tweets.DELETE("/:tweetId", h.DeleteTweet)

	likes := secured.Group("/likes")
	likes.POST("/toggle/v/:videoId", h.toggleLike(models.LikeVideo, "videoId", "video"))
	likes.POST("/toggle/c/:commentId", h.toggleLike(models.LikeComment, "commentId", "comment"))
	likes.POST("/toggle/t/:tweetId", h.toggleLike(models.LikeTweet, "tweetId", "tweet"))
	likes.GET("/videos", h.LikedVideos)

	subs := secured.Group("/subscriptions")
	subs.POST("/c/:channelId", h.ToggleSubscription)
	subs.GET("/c/:channelId", h.ChannelSubscribers)
	subs.GET("/u/:subscriberId", h.SubscribedChannels)

	playlists := secured.Group("/playlist")
	playlists.POST("", h.CreatePlaylist)
	playlists.GET("/:playlistId", h.GetPlaylist)
	playlists.PATCH("/:playlistId", h.UpdatePlaylist)
	playlists.DELETE("/:playlistId", h.DeletePlaylist)
	playlists.PATCH("/add/:videoId/:playlistId", h.AddVideoToPlaylist)
	playlists.PATCH("/remove/:videoId/:playlistId", h.RemoveVideoFromPlaylist)
	playlists.GET("/user/:userId", h.UserPlaylists)

	dashboard := secured.Group("/dashboard")
	dashboard.GET("/stats", h.ChannelStats)
	dashboard.GET("/videos", h.ChannelVideos)
}
