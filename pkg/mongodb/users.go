package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"videotube/pkg/models"
	"videotube/pkg/store"
)

var imageFields = map[string]bool{"avatar": true, "coverImage": true}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	newID(&user.ID)
	stamp(&user.CreatedAt, &user.UpdatedAt)
	return s.insert(ctx, colUsers, user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.findByID(ctx, colUsers, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.col(colUsers).FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) FindUserByLogin(ctx context.Context, username, email string) (*models.User, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, store.ErrNotFound
	}

	var user models.User
	if err := s.col(colUsers).FindOne(ctx, bson.M{"$or": or}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	n, err := s.col(colUsers).CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (s *Store) UpdateUserAccount(ctx context.Context, id string, update store.AccountUpdate) (*models.User, error) {
	var user models.User
	err := s.findAndSet(ctx, colUsers, id, bson.M{"fullName": update.FullName, "email": update.Email}, &user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	var user models.User
	if err := s.findAndSet(ctx, colUsers, id, bson.M{"password": passwordHash}, &user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *Store) UpdateUserImage(ctx context.Context, id, field, url string) (*models.User, error) {
	if !imageFields[field] {
		return nil, fmt.Errorf("unknown image field %q", field)
	}
	var user models.User
	if err := s.findAndSet(ctx, colUsers, id, bson.M{field: url}, &user); err != nil {
		return nil, fmt.Errorf("update %s: %w", field, err)
	}
	return &user, nil
}

func (s *Store) SetRefreshToken(ctx context.Context, id, token string) error {
	res, err := s.col(colUsers).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"refreshToken": token}})
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// RotateRefreshToken only matches while the stored token is still presented.
func (s *Store) RotateRefreshToken(ctx context.Context, id, presented, next string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	res, err := s.col(colUsers).UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": presented},
		bson.M{"$set": bson.M{"refreshToken": next}},
	)
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	return aggregateOne[models.ChannelProfile](ctx, s.col(colUsers), channelProfilePipeline(username, viewerID))
}

func (s *Store) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	res, err := s.col(colUsers).UpdateOne(ctx, bson.M{"_id": userID}, watchHistoryUpdate(videoID, store.WatchHistoryLimit))
	if err != nil {
		return fmt.Errorf("add to watch history: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetWatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.WatchHistory) == 0 {
		return []models.VideoWithOwner{}, nil
	}

	videos, err := aggregateAll[models.VideoWithOwner](ctx, s.col(colVideos), videosWithOwnersPipeline(user.WatchHistory, userID))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.VideoWithOwner, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	out := make([]models.VideoWithOwner, 0, len(user.WatchHistory))
	for _, id := range user.WatchHistory {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}
