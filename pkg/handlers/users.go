package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube/pkg/apierror"
	"videotube/pkg/auth"
	"videotube/pkg/services"
)

type registerRequest struct {
	Username string `json:"username" form:"username" binding:"required,username"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	FullName string `json:"fullName" form:"fullName" binding:"required,fullname"`
	Password string `json:"password" form:"password" binding:"required,strongpassword"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" binding:"required,strongpassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" form:"fullName" binding:"required,fullname"`
	Email    string `json:"email" form:"email" binding:"required,email"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	avatar, err := optionalFile(c, "avatar")
	if err != nil {
		fail(c, err)
		return
	}
	cover, err := optionalFile(c, "coverImage")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.svc.Users.Register(c.Request.Context(), services.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user, "User registered successfully")
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	user, pair, err := h.svc.Users.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.setSessionCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "User logged in successfully")
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Users.Logout(c.Request.Context(), currentUser(c).ID); err != nil {
		fail(c, err)
		return
	}
	h.clearSessionCookies(c)
	respond(c, http.StatusOK, gin.H{}, "User logged out")
}

// RefreshToken takes the refresh token from the cookie or the body. A
// missing body is a 401, a malformed one a 400.
func (h *Handler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if token == "" && c.Request.ContentLength != 0 {
		var req refreshRequest
		if !bind(c, &req) {
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		fail(c, auth.ErrUnauthorized)
		return
	}

	_, pair, err := h.svc.Users.Refresh(c.Request.Context(), token)
	if err != nil {
		// Only a rejected token ends the session; a store outage keeps it.
		if apierror.StatusOf(err) == http.StatusUnauthorized {
			h.clearSessionCookies(c)
		}
		fail(c, err)
		return
	}

	h.setSessionCookies(c, pair)
	respond(c, http.StatusOK, pair, "Access token refreshed")
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.svc.Users.ChangePassword(c.Request.Context(), currentUser(c).ID, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

func (h *Handler) CurrentUser(c *gin.Context) {
	respond(c, http.StatusOK, currentUser(c), "Current user fetched successfully")
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.svc.Users.UpdateAccount(c.Request.Context(), currentUser(c).ID, req.FullName, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, "Account details updated successfully")
}

func (h *Handler) updateImage(c *gin.Context, field, message string) {
	fh, err := optionalFile(c, field)
	if err != nil {
		fail(c, err)
		return
	}
	user, err := h.svc.Users.UpdateImage(c.Request.Context(), currentUser(c).ID, field, fh)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, message)
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", "Avatar updated successfully")
}

func (h *Handler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", "Cover image updated successfully")
}

func (h *Handler) ChannelProfile(c *gin.Context) {
	profile, err := h.svc.Users.ChannelProfile(c.Request.Context(), c.Param("username"), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile, "User channel fetched successfully")
}

func (h *Handler) WatchHistory(c *gin.Context) {
	history, err := h.svc.Users.WatchHistory(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, history, "Watch history fetched successfully")
}
