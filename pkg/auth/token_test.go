package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videotube/pkg/apierror"
	"videotube/pkg/models"
	"videotube/pkg/store"
)

type memoryTokenStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryTokenStore(users ...*models.User) *memoryTokenStore {
	s := &memoryTokenStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryTokenStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memoryTokenStore) SetRefreshToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (s *memoryTokenStore) RotateRefreshToken(_ context.Context, id, presented, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.RefreshToken != presented {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (s *memoryTokenStore) stored(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].RefreshToken
}

var testConfig = Config{
	AccessSecret:  "access-secret",
	RefreshSecret: "refresh-secret",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    24 * time.Hour,
}

func testUser() *models.User {
	return &models.User{
		ID:       "5d0b7a8e-3f5e-4c55-8f4f-0fe1f0a6c001",
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Liddell",
	}
}

func TestIssue_StoresRefreshAndSignsClaims(t *testing.T) {
	user := testUser()
	ts := newMemoryTokenStore(user)
	tokens := NewTokens(testConfig, ts)

	pair, err := tokens.Issue(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, pair.RefreshToken, ts.stored(user.ID))

	claims, err := tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.Id)
}

func TestIssue_NewLoginInvalidatesPriorRefresh(t *testing.T) {
	user := testUser()
	ts := newMemoryTokenStore(user)
	tokens := NewTokens(testConfig, ts)
	ctx := context.Background()

	first, err := tokens.Issue(ctx, user)
	require.NoError(t, err)
	second, err := tokens.Issue(ctx, user)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, err = tokens.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)
}

func TestVerifyAccess_Rejects(t *testing.T) {
	user := testUser()
	ts := newMemoryTokenStore(user)

	t.Run("expired", func(t *testing.T) {
		cfg := testConfig
		cfg.AccessTTL = -time.Minute
		pair, err := NewTokens(cfg, ts).Issue(context.Background(), user)
		require.NoError(t, err)

		_, err = NewTokens(cfg, ts).VerifyAccess(pair.AccessToken)
		assert.ErrorIs(t, err, ErrAccessTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := testConfig
		other.AccessSecret = "someone-else"
		pair, err := NewTokens(other, ts).Issue(context.Background(), user)
		require.NoError(t, err)

		_, err = NewTokens(testConfig, ts).VerifyAccess(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidAccessToken)
	})

	t.Run("refresh token used as access", func(t *testing.T) {
		pair, err := NewTokens(testConfig, ts).Issue(context.Background(), user)
		require.NoError(t, err)

		_, err = NewTokens(testConfig, ts).VerifyAccess(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidAccessToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
			StandardClaims: jwt.StandardClaims{Subject: user.ID},
		})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = NewTokens(testConfig, ts).VerifyAccess(raw)
		assert.ErrorIs(t, err, ErrInvalidAccessToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewTokens(testConfig, ts).VerifyAccess("not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err))
	})
}

func TestRefresh_RotatesAndRejectsReuse(t *testing.T) {
	user := testUser()
	ts := newMemoryTokenStore(user)
	tokens := NewTokens(testConfig, ts)
	ctx := context.Background()

	issued, err := tokens.Issue(ctx, user)
	require.NoError(t, err)

	refreshed, rotated, err := tokens.Refresh(ctx, issued.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEqual(t, issued.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, rotated.RefreshToken, ts.stored(user.ID))

	_, _, err = tokens.Refresh(ctx, issued.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenReused)

	// the replay revoked the whole session, including the rotated token
	assert.Empty(t, ts.stored(user.ID))
	_, _, err = tokens.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)
}

func TestRefresh_ConcurrentRotationHasOneWinner(t *testing.T) {
	user := testUser()
	ts := newMemoryTokenStore(user)
	tokens := NewTokens(testConfig, ts)
	ctx := context.Background()

	issued, err := tokens.Issue(ctx, user)
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := tokens.Refresh(ctx, issued.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrRefreshTokenReused)
	}
	assert.Equal(t, 1, wins)
}

func TestRefresh_InvalidInputs(t *testing.T) {
	user := testUser()
	ts := newMemoryTokenStore(user)
	tokens := NewTokens(testConfig, ts)
	ctx := context.Background()

	_, _, err := tokens.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	pair, err := tokens.Issue(ctx, user)
	require.NoError(t, err)
	_, _, err = tokens.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	stranger := &models.User{ID: "7f1f1e40-1111-4c2d-9a9a-2b2b2b2b2b2b"}
	strangerPair, err := NewTokens(testConfig, newMemoryTokenStore(stranger)).Issue(ctx, stranger)
	require.NoError(t, err)
	_, _, err = tokens.Refresh(ctx, strangerPair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	expiredCfg := testConfig
	expiredCfg.RefreshTTL = -time.Minute
	expiredPair, err := NewTokens(expiredCfg, ts).Issue(ctx, user)
	require.NoError(t, err)
	_, _, err = tokens.Refresh(ctx, expiredPair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)
}

func TestRevoke(t *testing.T) {
	user := testUser()
	ts := newMemoryTokenStore(user)
	tokens := NewTokens(testConfig, ts)
	ctx := context.Background()

	pair, err := tokens.Issue(ctx, user)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(ctx, user.ID))

	_, _, err = tokens.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)
}
