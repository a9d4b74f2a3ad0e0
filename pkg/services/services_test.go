package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"videotube/pkg/apierror"
	"videotube/pkg/auth"
	"videotube/pkg/database"
	"videotube/pkg/media"
	"videotube/pkg/models"
	"videotube/pkg/store"
)

type mockMedia struct {
	mock.Mock
}

func (m *mockMedia) Store(ctx context.Context, kind media.Kind, fh *multipart.FileHeader) (media.Uploaded, error) {
	args := m.Called(ctx, kind, fh)
	return args.Get(0).(media.Uploaded), args.Error(1)
}

func (m *mockMedia) Discard(ctx context.Context, uploads ...media.Uploaded) {
	m.Called(ctx, uploads)
}

func newStore(t *testing.T) *database.Store {
	t.Helper()
	s, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func newTokens(s *database.Store) *auth.Tokens {
	return auth.NewTokens(auth.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}, s)
}

func seedUser(t *testing.T, s *database.Store, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test User",
		Password: "hash",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedVideo(t *testing.T, s *database.Store, owner *models.User, title string, published bool) *models.Video {
	t.Helper()
	v := &models.Video{
		OwnerID:     owner.ID,
		Title:       title,
		VideoFile:   "https://cdn.example.com/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/" + title + ".png",
		Duration:    90,
		IsPublished: published,
	}
	require.NoError(t, s.CreateVideo(context.Background(), v))
	return v
}

func assertStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	apiErr := apierror.From(err)
	assert.Equal(t, status, apiErr.StatusCode)
	if message != "" {
		assert.Equal(t, message, apiErr.Message)
	}
}

func TestLookup(t *testing.T) {
	assert.NoError(t, lookup(nil, "Video not found"))
	assertStatus(t, lookup(fmt.Errorf("get: %w", store.ErrNotFound), "Video not found"), http.StatusNotFound, "Video not found")

	cause := errors.New("connection reset")
	assert.Same(t, cause, lookup(cause, "Video not found"))
}
