package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopfront/internal/repository"
	"shopfront/internal/service"
	"shopfront/internal/session"
)

// AuthHandler mantiene dependencias para los flujos de registro, login y
// recuperación de contraseña.
type AuthHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	sessions *session.Manager
}

func NewAuthHandler(logger *zap.Logger, userServ *service.UserService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		userServ: userServ,
		sessions: sessions,
	}
}

// ShowSignup maneja GET /signup.
func (h *AuthHandler) ShowSignup(c *gin.Context) {
	htmlWithFlash(c, h.sessions, http.StatusOK, "signup.html", nil)
}

// Signup maneja POST /signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	in := service.SignupInput{
		Name:            c.PostForm("name"),
		Email:           c.PostForm("email"),
		Phone:           c.PostForm("phone"),
		DOB:             c.PostForm("dob"),
		Gender:          c.PostForm("gender"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	}

	if fieldErrs := service.ValidateSignup(in); len(fieldErrs) > 0 {
		htmlWithFlash(c, h.sessions, http.StatusOK, "signup.html", gin.H{
			"Errors": fieldErrs,
			"Form":   in,
		})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.userServ.Signup(ctx, in); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			h.sessions.SetFlash(ctx, "error", "User already registered with this email or phone!")
			c.Redirect(http.StatusSeeOther, "/signup")
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		h.sessions.SetFlash(ctx, "error", "Could not create your account. Please try again.")
		c.Redirect(http.StatusSeeOther, "/signup")
		return
	}

	h.sessions.SetFlash(ctx, "success", "Account created successfully! Please log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// ShowLogin maneja GET /login.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	htmlWithFlash(c, h.sessions, http.StatusOK, "login.html", nil)
}

// Login maneja POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	identifier := c.PostForm("identifier")
	password := c.PostForm("password")

	user, err := h.userServ.Authenticate(ctx, identifier, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Error("login failed", zap.Error(err))
		}
		// Mensaje genérico: no distingue qué factor falló.
		h.sessions.SetFlash(ctx, "error", "Invalid credentials!")
		htmlWithFlash(c, h.sessions, http.StatusOK, "login.html", nil)
		return
	}

	if err := h.sessions.Login(ctx, user.Email); err != nil {
		h.logger.Error("session login failed", zap.Error(err))
		h.sessions.SetFlash(ctx, "error", "Could not start your session. Please try again.")
		htmlWithFlash(c, h.sessions, http.StatusOK, "login.html", nil)
		return
	}

	h.sessions.SetFlash(ctx, "success", "Login successful!")
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout maneja GET /logout. Deslogueado o no, el resultado es el mismo.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	h.sessions.Logout(ctx)
	h.sessions.SetFlash(ctx, "info", "Logged out successfully!")
	c.Redirect(http.StatusSeeOther, "/")
}

// clearPendingReset reinicia la sub-máquina de recuperación: descarta el
// reset pendiente de la sesión y revoca su OTP en el store.
func (h *AuthHandler) clearPendingReset(c *gin.Context) {
	ctx := c.Request.Context()
	if pending, ok := h.sessions.PendingReset(ctx); ok {
		h.userServ.InvalidatePendingReset(ctx, pending.Email)
	}
	h.sessions.ClearPendingReset(ctx)
}

// ShowForgotPassword maneja GET /forgot-password.
func (h *AuthHandler) ShowForgotPassword(c *gin.Context) {
	h.clearPendingReset(c)
	htmlWithFlash(c, h.sessions, http.StatusOK, "forgot_password.html", nil)
}

// ForgotPassword maneja POST /forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.clearPendingReset(c)

	ctx := c.Request.Context()
	identifier := c.PostForm("identifier")

	resetEmail, err := h.userServ.RequestPasswordReset(ctx, identifier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.sessions.SetFlash(ctx, "error", "No account found with this email or phone!")
		case errors.Is(err, service.ErrRateLimited):
			h.sessions.SetFlash(ctx, "error", "Too many OTP requests. Please try again later.")
		case errors.Is(err, service.ErrEmailSendFailure):
			h.sessions.SetFlash(ctx, "error", "Failed to send OTP. Please try again.")
		default:
			h.logger.Error("request password reset failed", zap.Error(err))
			h.sessions.SetFlash(ctx, "error", "Something went wrong. Please try again.")
		}
		htmlWithFlash(c, h.sessions, http.StatusOK, "forgot_password.html", nil)
		return
	}

	h.sessions.SetPendingReset(ctx, resetEmail)
	h.sessions.SetFlash(ctx, "info", "OTP has been sent to your email.")
	c.Redirect(http.StatusSeeOther, "/reset-password")
}

// ShowResetPassword maneja GET /reset-password. Sin reset pendiente no se
// puede entrar: vuelve a forgot-password.
func (h *AuthHandler) ShowResetPassword(c *gin.Context) {
	ctx := c.Request.Context()
	if _, ok := h.sessions.PendingReset(ctx); !ok {
		h.sessions.SetFlash(ctx, "error", "Session expired. Please request a new OTP.")
		c.Redirect(http.StatusSeeOther, "/forgot-password")
		return
	}
	htmlWithFlash(c, h.sessions, http.StatusOK, "reset_password.html", nil)
}

// ResetPassword maneja POST /reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := c.Request.Context()
	pending, ok := h.sessions.PendingReset(ctx)
	if !ok {
		h.sessions.SetFlash(ctx, "error", "Session expired. Please request a new OTP.")
		c.Redirect(http.StatusSeeOther, "/forgot-password")
		return
	}

	err := h.userServ.ResetPassword(ctx,
		pending.Email,
		c.PostForm("otp"),
		c.PostForm("new_password"),
		c.PostForm("confirm_password"),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPInvalid):
			h.sessions.SetFlash(ctx, "error", "Invalid OTP!")
		case errors.Is(err, service.ErrPasswordMismatch):
			h.sessions.SetFlash(ctx, "error", "Passwords do not match!")
		case errors.Is(err, service.ErrPasswordTooShort):
			h.sessions.SetFlash(ctx, "error", "Password must be at least 8 characters long!")
		case errors.Is(err, service.ErrUserNotFound):
			// La cuenta detrás del reset ya no existe: reiniciar el flujo.
			h.sessions.ClearPendingReset(ctx)
			h.sessions.SetFlash(ctx, "error", "Session expired. Please request a new OTP.")
			c.Redirect(http.StatusSeeOther, "/forgot-password")
			return
		default:
			h.logger.Error("reset password failed", zap.Error(err))
			h.sessions.SetFlash(ctx, "error", "Something went wrong. Please try again.")
		}
		htmlWithFlash(c, h.sessions, http.StatusOK, "reset_password.html", nil)
		return
	}

	h.sessions.ClearPendingReset(ctx)
	h.sessions.SetFlash(ctx, "success", "Password reset successfully! Please log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// Profile maneja GET /profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	userEmail := h.sessions.UserEmail(ctx)
	if userEmail == "" {
		h.sessions.SetFlash(ctx, "warning", "You need to log in to view your profile.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	user, err := h.userServ.GetByEmail(ctx, userEmail)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			h.logger.Error("profile lookup failed", zap.Error(err))
		}
		// La sesión referencia un usuario que ya no existe: logout forzado.
		h.sessions.Logout(ctx)
		h.sessions.SetFlash(ctx, "error", "User not found. Please log in again.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	htmlWithFlash(c, h.sessions, http.StatusOK, "profile.html", gin.H{"User": user})
}
