// Package handlers binds HTTP requests to the services and renders the JSON
// envelopes.
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"videotube/pkg/apierror"
	"videotube/pkg/auth"
	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/services"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
	userKey       = "user"
)

// Verifier checks an access token.
type Verifier interface {
	VerifyAccess(token string) (*auth.AccessClaims, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Users         *services.UserService
	Videos        *services.VideoService
	Comments      *services.CommentService
	Tweets        *services.TweetService
	Likes         *services.LikeService
	Subscriptions *services.SubscriptionService
	Playlists     *services.PlaylistService
	Dashboard     *services.DashboardService
}

type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Handler struct {
	svc      Services
	verifier Verifier
	users    services.UserReader
	health   Pinger
	cookies  CookieConfig
}

func New(svc Services, verifier Verifier, users services.UserReader, health Pinger, cookies CookieConfig) *Handler {
	return &Handler{
		svc:      svc,
		verifier: verifier,
		users:    users,
		health:   health,
		cookies:  cookies,
	}
}

type envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

type errorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// fail renders err as the error envelope. Anything that is not an
// apierror.Error is logged and hidden behind a 500.
func fail(c *gin.Context, err error) {
	apiErr := apierror.From(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("route", c.FullPath()).
			Msg("Request failed")
	}

	errs := apiErr.Errors
	if errs == nil {
		errs = []string{}
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, errorEnvelope{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Errors:     errs,
		Success:    false,
	})
}

// currentUser is set by RequireAuth.
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// idParam reads a path id and rejects anything that is not a UUID.
func idParam(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		fail(c, apierror.BadRequest("Invalid "+label+" ID"))
		return "", false
	}
	return id, true
}

func listParams(c *gin.Context, sorts query.Sortable) (query.Params, bool) {
	var raw query.Raw
	if err := c.ShouldBindQuery(&raw); err != nil {
		fail(c, apierror.BadRequest("Invalid query parameters"))
		return query.Params{}, false
	}
	p, err := query.Parse(raw, sorts)
	if err != nil {
		fail(c, err)
		return query.Params{}, false
	}
	return p, true
}

func windowParams(c *gin.Context) (query.Params, bool) {
	var raw query.Raw
	if err := c.ShouldBindQuery(&raw); err != nil {
		fail(c, apierror.BadRequest("Invalid query parameters"))
		return query.Params{}, false
	}
	p, err := query.Window(raw)
	if err != nil {
		fail(c, err)
		return query.Params{}, false
	}
	return p, true
}

// optionalFile returns nil when the field is absent or the request is not
// multipart.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	switch {
	case err == nil:
		return fh, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	}
	return nil, apierror.BadRequest("Could not read " + field + " upload")
}

func (h *Handler) setSessionCookies(c *gin.Context, pair auth.Pair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, pair.AccessToken, int(h.cookies.AccessTTL.Seconds()), "/", "", h.cookies.Secure, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), "/", "", h.cookies.Secure, true)
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", h.cookies.Secure, true)
}

func (h *Handler) Healthcheck(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		fail(c, apierror.Wrap(http.StatusServiceUnavailable, "Database is unreachable", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"status": "OK"}, "Server is healthy")
}
