package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voyago/backend/internal/auth"
)

type registerInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required"`
}

// Register creates a traveler account in the unconfirmed state. The account
// cannot sign in until the emailed token is redeemed via ConfirmEmail.
func (h *Handler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.Auth.Register(c.Request.Context(), input.Email, input.Password, input.DisplayName)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": h.notice(c, "auth.email_taken")})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}

	// TODO: send the token through a real mailer once one is provisioned;
	// until then ops get it from Telegram or the logs.
	h.Notifier.RegistrationPending(reg.User.Email, reg.ConfirmToken)
	h.Log.Info().Str("user_id", reg.User.ID).Str("email", reg.User.Email).
		Str("confirm_token", reg.ConfirmToken).Msg("registration pending confirmation")

	c.JSON(http.StatusCreated, gin.H{"user": reg.User, "message": h.notice(c, "auth.confirm_sent")})
}

type confirmInput struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmEmail redeems a single-use confirmation token and unlocks login.
func (h *Handler) ConfirmEmail(c *gin.Context) {
	var input confirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Auth.ConfirmEmail(c.Request.Context(), input.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// Login authenticates with email and password. With remember set, an opaque
// server-side token is issued in place of ever storing credentials locally.
func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), input.Email, input.Password, input.Remember)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": h.notice(c, "auth.invalid_credentials")})
		case errors.Is(err, auth.ErrEmailUnconfirmed):
			c.JSON(http.StatusForbidden, gin.H{"error": h.notice(c, "auth.email_unconfirmed")})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		}
		return
	}

	resp := gin.H{"token": session.Token, "user": session.User}
	if session.RememberToken != "" {
		resp["rememberToken"] = session.RememberToken
	}
	c.JSON(http.StatusOK, resp)
}

type refreshInput struct {
	RememberToken string `json:"rememberToken" binding:"required"`
}

// Refresh exchanges a remember-me token for a fresh access token. Tokens
// rotate on every use.
func (h *Handler) Refresh(c *gin.Context) {
	var input refreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.Auth.Refresh(c.Request.Context(), input.RememberToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.noticef(c, "operation.failed", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":         session.Token,
		"rememberToken": session.RememberToken,
		"user":          session.User,
	})
}
