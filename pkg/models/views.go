package models

import (
	"fmt"
	"time"
)

// OwnerSummary is the only user projection that joined documents carry.
type OwnerSummary struct {
	ID       string `bson:"_id" json:"_id"`
	Username string `bson:"username" json:"username"`
	FullName string `bson:"fullName" json:"fullName"`
	Avatar   string `bson:"avatar" json:"avatar"`
}

type VideoWithOwner struct {
	Video        `bson:",inline"`
	OwnerDetails *OwnerSummary `bson:"ownerDetails" json:"ownerDetails"`
}

type VideoDetail struct {
	VideoWithOwner `bson:",inline"`
	LikesCount     int64 `bson:"likesCount" json:"likesCount"`
	IsLiked        bool  `bson:"isLiked" json:"isLiked"`
}

type CommentView struct {
	Comment      `bson:",inline"`
	OwnerDetails *OwnerSummary `bson:"ownerDetails" json:"ownerDetails"`
}

type TweetView struct {
	Tweet        `bson:",inline"`
	OwnerDetails *OwnerSummary `bson:"ownerDetails" json:"ownerDetails"`
}

type PlaylistView struct {
	Playlist     `bson:",inline"`
	VideoCount   int64         `bson:"videoCount" json:"videoCount"`
	VideoDetails []Video       `bson:"videoDetails" json:"videoDetails"`
	OwnerDetails *OwnerSummary `bson:"ownerDetails" json:"ownerDetails"`
}

type LikedVideo struct {
	Video   VideoWithOwner `bson:"video" json:"video"`
	LikedAt time.Time      `bson:"likedAt" json:"likedAt"`
}

// SubscriptionView is one row of a subscriber or subscribed-channel listing.
type SubscriptionView struct {
	User         OwnerSummary `bson:"user" json:"user"`
	SubscribedAt time.Time    `bson:"subscribedAt" json:"subscribedAt"`
}

type ChannelProfile struct {
	ID                        string    `bson:"_id" json:"_id"`
	Username                  string    `bson:"username" json:"username"`
	Email                     string    `bson:"email" json:"email"`
	FullName                  string    `bson:"fullName" json:"fullName"`
	Avatar                    string    `bson:"avatar" json:"avatar"`
	CoverImage                string    `bson:"coverImage" json:"coverImage"`
	SubscribersCount          int64     `bson:"subscribersCount" json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `bson:"channelsSubscribedToCount" json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `bson:"isSubscribed" json:"isSubscribed"`
	CreatedAt                 time.Time `bson:"createdAt" json:"createdAt"`
}

type ChannelStats struct {
	TotalVideos      int64 `bson:"totalVideos" json:"totalVideos"`
	TotalViews       int64 `bson:"totalViews" json:"totalViews"`
	TotalSubscribers int64 `bson:"totalSubscribers" json:"totalSubscribers"`
	TotalLikes       int64 `bson:"totalLikes" json:"totalLikes"`
}

type DashboardVideo struct {
	Video      `bson:",inline"`
	LikesCount int64 `bson:"likesCount" json:"likesCount"`
}

// Summary strips everything but the public profile fields.
func (u *User) Summary() OwnerSummary {
	return OwnerSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// FormatDuration renders seconds as "3 min 7 sec" or "42 sec".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0 sec"
	}
	total := int64(seconds)
	minutes := total / 60
	secs := total % 60
	if minutes > 0 {
		return fmt.Sprintf("%d min %d sec", minutes, secs)
	}
	return fmt.Sprintf("%d sec", secs)
}
