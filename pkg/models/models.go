package models

import (
	"time"
)

type User struct {
	ID           string    `gorm:"primary_key" bson:"_id" json:"_id"`
	Username     string    `gorm:"unique_index;not null" bson:"username" json:"username"`
	Email        string    `gorm:"unique_index;not null" bson:"email" json:"email"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Avatar       string    `bson:"avatar" json:"avatar"`
	CoverImage   string    `bson:"coverImage" json:"coverImage"`
	Password     string    `bson:"password" json:"-"`
	RefreshToken string    `bson:"refreshToken,omitempty" json:"-"`
	WatchHistory []string  `gorm:"-" bson:"watchHistory,omitempty" json:"watchHistory,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Video struct {
	ID          string    `gorm:"primary_key" bson:"_id" json:"_id"`
	VideoFile   string    `bson:"videoFile" json:"videoFile"`
	Thumbnail   string    `bson:"thumbnail" json:"thumbnail"`
	OwnerID     string    `gorm:"index" bson:"owner" json:"owner"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Duration    float64   `bson:"duration" json:"duration"`
	Views       int64     `bson:"views" json:"views"`
	IsPublished bool      `gorm:"index" bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo reports whether viewerID may see the video: published videos
// are public, drafts belong to their owner.
func (v *Video) VisibleTo(viewerID string) bool {
	return v.IsPublished || v.OwnerID == viewerID
}

type Comment struct {
	ID        string    `gorm:"primary_key" bson:"_id" json:"_id"`
	Content   string    `bson:"content" json:"content"`
	VideoID   string    `gorm:"index" bson:"video" json:"video"`
	OwnerID   string    `gorm:"index" bson:"owner" json:"owner"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Tweet struct {
	ID        string    `gorm:"primary_key" bson:"_id" json:"_id"`
	Content   string    `bson:"content" json:"content"`
	OwnerID   string    `gorm:"index" bson:"owner" json:"owner"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LikeTarget names the kind of entity a Like points at.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeComment LikeTarget = "comment"
	LikeTweet   LikeTarget = "tweet"
)

type Like struct {
	ID         string     `gorm:"primary_key" bson:"_id" json:"_id"`
	TargetType LikeTarget `gorm:"unique_index:idx_like_target" bson:"targetType" json:"targetType"`
	TargetID   string     `gorm:"unique_index:idx_like_target" bson:"target" json:"target"`
	LikedBy    string     `gorm:"unique_index:idx_like_target" bson:"likedBy" json:"likedBy"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
}

type Playlist struct {
	ID          string    `gorm:"primary_key" bson:"_id" json:"_id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	OwnerID     string    `gorm:"index" bson:"owner" json:"owner"`
	Videos      []string  `gorm:"-" bson:"videos" json:"videos"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PlaylistVideo is the join row used by the relational backend.
type PlaylistVideo struct {
	PlaylistID string `gorm:"primary_key"`
	VideoID    string `gorm:"primary_key"`
	CreatedAt  time.Time
}

type Subscription struct {
	ID           string    `gorm:"primary_key" bson:"_id" json:"_id"`
	SubscriberID string    `gorm:"unique_index:idx_subscription_pair" bson:"subscriber" json:"subscriber"`
	ChannelID    string    `gorm:"unique_index:idx_subscription_pair" bson:"channel" json:"channel"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// WatchEntry is the relational form of User.WatchHistory.
type WatchEntry struct {
	UserID    string `gorm:"primary_key"`
	VideoID   string `gorm:"primary_key"`
	WatchedAt time.Time
}
