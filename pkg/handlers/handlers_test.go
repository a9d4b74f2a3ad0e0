package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videotube/pkg/auth"
	"videotube/pkg/database"
	"videotube/pkg/media"
	"videotube/pkg/models"
	"videotube/pkg/services"
)

type testAPI struct {
	router *gin.Engine
	store  *database.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	s, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })

	tokens := auth.NewTokens(auth.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}, s)
	host := media.NewHost(nil, nil, t.TempDir())

	h := New(Services{
		Users:         services.NewUserService(s, tokens, host),
		Videos:        services.NewVideoService(s, host),
		Comments:      services.NewCommentService(s),
		Tweets:        services.NewTweetService(s),
		Likes:         services.NewLikeService(s),
		Subscriptions: services.NewSubscriptionService(s),
		Playlists:     services.NewPlaylistService(s),
		Dashboard:     services.NewDashboardService(s),
	}, tokens, s, s, CookieConfig{AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour})

	r := gin.New()
	r.Use(RequestID())
	h.Routes(r)
	return &testAPI{router: r, store: s}
}

type result struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Errors     []string        `json:"errors"`
	Success    bool            `json:"success"`
}

func (a *testAPI) do(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, result) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var res result
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	}
	return w, res
}

func (a *testAPI) json(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, result) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req, token)
}

// signup registers and logs in, returning the user and its access token.
func (a *testAPI) signup(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	w, _ := a.json(t, http.MethodPost, "/api/v1/users/register", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"fullName": "Test User",
		"password": "Passw0rd!",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, res := a.json(t, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": username,
		"password": "Passw0rd!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		User         models.User `json:"user"`
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &data))
	return &data.User, data.AccessToken
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t)

	w, res := api.json(t, http.MethodPost, "/api/v1/users/register", gin.H{
		"username": "a!",
		"email":    "not-an-email",
		"fullName": "R2D2",
		"password": "short",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, res.Success)
	assert.Equal(t, "Validation failed", res.Message)
	assert.Len(t, res.Errors, 4)
	assert.Contains(t, res.Errors, "username must be 3-20 letters, digits or underscores")
}

func TestRegister_DuplicateAndLogin(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.signup(t, "alice")

	w, res := api.json(t, http.MethodPost, "/api/v1/users/register", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"fullName": "Alice Again",
		"password": "Passw0rd!",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with email or username already exists", res.Message)

	w, res = api.json(t, http.MethodPost, "/api/v1/users/login", gin.H{"username": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid user credentials", res.Message)

	w, _ = api.json(t, http.MethodPost, "/api/v1/users/login", gin.H{"email": "alice@example.com", "password": "Passw0rd!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	for _, cookie := range w.Result().Cookies() {
		names = append(names, cookie.Name)
		assert.True(t, cookie.HttpOnly)
	}
	assert.ElementsMatch(t, []string{"accessToken", "refreshToken"}, names)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotEmpty(t, user.ID)
}

func TestRequireAuth(t *testing.T) {
	api := newTestAPI(t)
	user, token := api.signup(t, "bob")

	w, res := api.json(t, http.MethodGet, "/api/v1/users/current-user", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized request", res.Message)
	assert.NotNil(t, res.Errors)

	w, res = api.json(t, http.MethodGet, "/api/v1/users/current-user", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid access token", res.Message)

	w, res = api.json(t, http.MethodGet, "/api/v1/users/current-user", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, res.Success)
	assert.Contains(t, string(res.Data), user.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	w, _ = api.do(t, req, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRefreshToken_RotationAndReuse(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "carol")

	w, res := api.json(t, http.MethodPost, "/api/v1/users/login", gin.H{"username": "carol", "password": "Passw0rd!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &login))

	w, res = api.json(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{"refreshToken": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair auth.Pair
	require.NoError(t, json.Unmarshal(res.Data, &pair))
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	w, res = api.json(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{"refreshToken": login.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Refresh token is expired or used", res.Message)

	w, _ = api.json(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{"refreshToken": pair.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshToken_BodyErrors(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader(`{"refreshToken":`))
	req.Header.Set("Content-Type", "application/json")
	w, res := api.do(t, req, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", res.Message)

	w, _ = api.json(t, http.MethodPost, "/api/v1/users/refresh-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.json(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshToken_CookiesClearedOnlyOnRejection(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "gwen")

	w, res := api.json(t, http.MethodPost, "/api/v1/users/login", gin.H{"username": "gwen", "password": "Passw0rd!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &login))

	w, _ = api.json(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{"refreshToken": "not-a-jwt"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	require.NoError(t, api.store.Close(context.Background()))
	w, _ = api.json(t, http.MethodPost, "/api/v1/users/refresh-token", gin.H{"refreshToken": login.RefreshToken}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestVideoRoutes(t *testing.T) {
	api := newTestAPI(t)
	owner, ownerToken := api.signup(t, "dave")
	_, otherToken := api.signup(t, "erin")

	video := &models.Video{OwnerID: owner.ID, Title: "draft", IsPublished: false}
	require.NoError(t, api.store.CreateVideo(context.Background(), video))

	w, res := api.json(t, http.MethodGet, "/api/v1/videos/not-a-uuid", nil, ownerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid video ID", res.Message)

	w, res = api.json(t, http.MethodGet, "/api/v1/videos/"+video.ID, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, res.Data)
	assert.NotContains(t, w.Body.String(), `"title"`)

	w, _ = api.json(t, http.MethodGet, "/api/v1/videos/"+video.ID, nil, ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.json(t, http.MethodDelete, "/api/v1/videos/"+video.ID, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, res = api.json(t, http.MethodGet, "/api/v1/videos?sortBy=password", nil, ownerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Message, "cannot sort by")

	w, res = api.json(t, http.MethodGet, "/api/v1/videos?page=1&limit=5", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		TotalDocs int64 `json:"totalDocs"`
		Limit     int64 `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &page))
	assert.Equal(t, int64(0), page.TotalDocs)
	assert.Equal(t, int64(5), page.Limit)
}

func TestPublishVideo_MediaDisabled(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signup(t, "frank")

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "clip"))
	for field, name := range map[string]string{"videoFile": "clip.mp4", "thumbnail": "clip.png"} {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, res := api.do(t, req, token)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Media uploads are not configured", res.Message)
}

func TestLikeAndSubscriptionToggles(t *testing.T) {
	api := newTestAPI(t)
	channel, channelToken := api.signup(t, "grace")
	_, fanToken := api.signup(t, "heidi")

	video := &models.Video{OwnerID: channel.ID, Title: "song", IsPublished: true}
	require.NoError(t, api.store.CreateVideo(context.Background(), video))

	path := "/api/v1/likes/toggle/v/" + video.ID
	w, res := api.json(t, http.MethodPost, path, nil, fanToken)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"isLiked":true}`, string(res.Data))

	w, res = api.json(t, http.MethodPost, path, nil, fanToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isLiked":false}`, string(res.Data))

	w, res = api.json(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, nil, channelToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot subscribe to yourself", res.Message)

	w, _ = api.json(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, nil, fanToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, res = api.json(t, http.MethodGet, "/api/v1/users/c/grace", nil, fanToken)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.ChannelProfile
	require.NoError(t, json.Unmarshal(res.Data, &profile))
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)
}

func TestHealthcheck(t *testing.T) {
	api := newTestAPI(t)

	w, res := api.json(t, http.MethodGet, "/healthcheck", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, res.Success)
}

func TestStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Passw0rd!": true,
		"password":  false,
		"PASSW0RD!": false,
		"Password!": false,
		"Passw0rd":  false,
		"Pa0!":      false,
	}
	for password, want := range cases {
		assert.Equal(t, want, isStrongPassword(password), password)
	}
}
