package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog/log"

	"videotube/pkg/apierror"
	"videotube/pkg/auth"
	"videotube/pkg/media"
	"videotube/pkg/models"
	"videotube/pkg/store"
)

type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *multipart.FileHeader
	CoverImage *multipart.FileHeader
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type UserService struct {
	users  store.UserStore
	tokens TokenIssuer
	media  Media
}

func NewUserService(users store.UserStore, tokens TokenIssuer, host Media) *UserService {
	return &UserService{users: users, tokens: tokens, media: host}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register uploads the images before saving the user and discards them
// again if the user is not created.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *models.User, err error) {
	user := &models.User{
		Username: normalize(in.Username),
		Email:    normalize(in.Email),
		FullName: strings.TrimSpace(in.FullName),
	}

	taken, err := s.users.UsernameOrEmailTaken(ctx, user.Username, user.Email)
	if err != nil {
		return nil, wrap("register", err)
	}
	if taken {
		return nil, apierror.Conflict("User with email or username already exists")
	}

	var uploads []media.Uploaded
	defer func() {
		if err != nil && len(uploads) > 0 {
			s.media.Discard(ctx, uploads...)
		}
	}()

	if in.Avatar != nil {
		uploaded, err := s.media.Store(ctx, media.KindAvatar, in.Avatar)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, uploaded)
		user.Avatar = uploaded.URL
	}
	if in.CoverImage != nil {
		uploaded, err := s.media.Store(ctx, media.KindCover, in.CoverImage)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, uploaded)
		user.CoverImage = uploaded.URL
	}

	user.Password, err = auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apierror.Conflict("User with email or username already exists")
		}
		return nil, wrap("register", err)
	}

	log.Info().Str("user", user.ID).Str("username", user.Username).Msg("User registered")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, auth.Pair, error) {
	username, email := normalize(in.Username), normalize(in.Email)
	if username == "" && email == "" {
		return nil, auth.Pair{}, apierror.BadRequest("username or email is required")
	}

	user, err := s.users.FindUserByLogin(ctx, username, email)
	if err != nil {
		return nil, auth.Pair{}, lookup(err, "User does not exist")
	}

	ok, err := auth.CheckPassword(user.Password, in.Password)
	if err != nil {
		return nil, auth.Pair{}, wrap("login", err)
	}
	if !ok {
		return nil, auth.Pair{}, apierror.Unauthorized("Invalid user credentials")
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, auth.Pair{}, wrap("login", err)
	}
	user.RefreshToken = pair.RefreshToken
	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.tokens.Revoke(ctx, userID)
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.User, auth.Pair, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := getUser(ctx, s.users, userID, "User not found")
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(user.Password, oldPassword)
	if err != nil {
		return wrap("change password", err)
	}
	if !ok {
		return apierror.BadRequest("Invalid old password")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return wrap("change password", s.users.UpdateUserPassword(ctx, userID, hash))
}

func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return getUser(ctx, s.users, userID, "User not found")
}

func (s *UserService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	user, err := s.users.UpdateUserAccount(ctx, userID, store.AccountUpdate{
		FullName: strings.TrimSpace(fullName),
		Email:    normalize(email),
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apierror.Conflict("Email is already in use")
	case err != nil:
		return nil, lookup(err, "User not found")
	}
	return user, nil
}

// UpdateImage replaces the avatar or coverImage of the user.
func (s *UserService) UpdateImage(ctx context.Context, userID, field string, fh *multipart.FileHeader) (*models.User, error) {
	kind := media.KindAvatar
	if field == "coverImage" {
		kind = media.KindCover
	}
	if fh == nil {
		return nil, apierror.BadRequest(field + " file is missing")
	}

	uploaded, err := s.media.Store(ctx, kind, fh)
	if err != nil {
		return nil, err
	}
	user, err := s.users.UpdateUserImage(ctx, userID, field, uploaded.URL)
	if err != nil {
		return nil, lookup(err, "User not found")
	}
	return user, nil
}

func (s *UserService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = normalize(username)
	if username == "" {
		return nil, apierror.BadRequest("username is missing")
	}
	profile, err := s.users.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, lookup(err, "Channel does not exist")
	}
	return profile, nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	history, err := s.users.GetWatchHistory(ctx, userID)
	if err != nil {
		return nil, lookup(err, "User not found")
	}
	return history, nil
}
