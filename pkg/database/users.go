package database

import (
	"context"
	"fmt"
	"time"

	"videotube/pkg/models"
	"videotube/pkg/store"
)

var imageColumns = map[string]string{
	"avatar":     "avatar",
	"coverImage": "cover_image",
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	newID(&user.ID)
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) FindUserByLogin(_ context.Context, username, email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("(username = ? AND username <> '') OR (email = ? AND email <> '')", username, email).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UsernameOrEmailTaken(_ context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

func (s *Store) updateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update user: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) UpdateUserAccount(ctx context.Context, id string, update store.AccountUpdate) (*models.User, error) {
	return s.updateUser(ctx, id, map[string]interface{}{
		"full_name": update.FullName,
		"email":     update.Email,
	})
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	_, err := s.updateUser(ctx, id, map[string]interface{}{"password": passwordHash})
	return err
}

func (s *Store) UpdateUserImage(ctx context.Context, id, field, url string) (*models.User, error) {
	column, ok := imageColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown image field %q", field)
	}
	return s.updateUser(ctx, id, map[string]interface{}{column: url})
}

func (s *Store) SetRefreshToken(_ context.Context, id, token string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("refresh_token", token)
	if res.Error != nil {
		return fmt.Errorf("set refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) RotateRefreshToken(_ context.Context, id, presented, next string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	res := s.db.Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, presented).
		UpdateColumn("refresh_token", next)
	if res.Error != nil {
		return false, fmt.Errorf("rotate refresh token: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &models.ChannelProfile{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FullName:   user.FullName,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
	}

	subs := s.db.Model(&models.Subscription{})
	if err := subs.Where("channel_id = ?", user.ID).Count(&profile.SubscribersCount).Error; err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	if err := subs.Where("subscriber_id = ?", user.ID).Count(&profile.ChannelsSubscribedToCount).Error; err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}
	if viewerID != "" {
		var n int64
		if err := subs.Where("subscriber_id = ? AND channel_id = ?", viewerID, user.ID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check subscription: %w", err)
		}
		profile.IsSubscribed = n > 0
	}
	return profile, nil
}

// AddToWatchHistory moves videoID to the front and trims to the newest
// store.WatchHistoryLimit entries.
func (s *Store) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin: %w", tx.Error)
	}

	if err := tx.Where("user_id = ? AND video_id = ?", userID, videoID).Delete(&models.WatchEntry{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("drop watch entry: %w", err)
	}
	entry := &models.WatchEntry{UserID: userID, VideoID: videoID, WatchedAt: time.Now()}
	if err := tx.Create(entry).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("add watch entry: %w", err)
	}

	var entries []models.WatchEntry
	if err := tx.Where("user_id = ?", userID).Order("watched_at desc").Find(&entries).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("load watch entries: %w", err)
	}
	if len(entries) > store.WatchHistoryLimit {
		ids := make([]string, 0, len(entries)-store.WatchHistoryLimit)
		for _, e := range entries[store.WatchHistoryLimit:] {
			ids = append(ids, e.VideoID)
		}
		if err := tx.Where("user_id = ? AND video_id IN (?)", userID, ids).Delete(&models.WatchEntry{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("trim watch history: %w", err)
		}
	}

	return tx.Commit().Error
}

func (s *Store) GetWatchHistory(_ context.Context, userID string) ([]models.VideoWithOwner, error) {
	var entries []models.WatchEntry
	err := s.db.Where("user_id = ?", userID).
		Order("watched_at desc").
		Limit(store.WatchHistoryLimit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load watch history: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	byID, err := s.videosByID(ids)
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(entries))
	for _, id := range ids {
		if v, ok := byID[id]; ok && v.VisibleTo(userID) {
			videos = append(videos, v)
		}
	}
	return s.withOwners(videos)
}
