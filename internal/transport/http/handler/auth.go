package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abenov/coursehub/internal/api"
	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/session"
	"github.com/gin-gonic/gin"
)

// sessionService is the subset of session.Manager the auth views call.
// Defined here (point of use) so tests can inject a fake.
type sessionService interface {
	State() session.State
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, fullName, email, password string, role domain.Role) error
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, input api.UpdateProfileInput) error
	ChangePassword(ctx context.Context, current, updated string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
	VerifyEmail(ctx context.Context, verifyToken string) error
	ResendVerification(ctx context.Context) error
	ToggleWishlist(ctx context.Context, courseID string) error
}

type AuthHandler struct {
	sess   sessionService
	logger *slog.Logger
}

func NewAuthHandler(sess sessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sess:   sess,
		logger: logger.With("component", "auth_handler"),
	}
}

// sessionView is what the shell renders from.
type sessionView struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
	Loading       bool         `json:"loading"`
	Error         string       `json:"error,omitempty"`
}

func viewOf(st session.State) sessionView {
	v := sessionView{
		Authenticated: st.Authenticated(),
		Loading:       st.Loading,
		Error:         st.Err,
	}
	if st.User != nil {
		v.User = st.User.User
	}
	return v
}

// GET /session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(h.sess.State()))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /login
// Email-format and password checks live in the dispatcher, not here: the
// contract is that invalid input already fails before any network call.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sess.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": viewOf(h.sess.State()), "redirect": "/"})
}

type signupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=student instructor"`
}

// POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleStudent
	}

	if err := h.sess.Signup(c.Request.Context(), req.FullName, req.Email, req.Password, role); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": viewOf(h.sess.State()), "redirect": "/"})
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sess.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// PUT /profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.sess.UpdateProfile(c.Request.Context(), api.UpdateProfileInput{
		FullName: req.FullName,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.JSON(http.StatusOK, viewOf(h.sess.State()))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// PUT /profile/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sess.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.Status(http.StatusOK)
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

// POST /password/forgot
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sess.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.Status(http.StatusOK)
}

type otpRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// POST /password/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sess.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.Status(http.StatusOK)
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// POST /password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sess.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// POST /verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sess.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.Status(http.StatusOK)
}

// POST /verify-email/resend
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	if err := h.sess.ResendVerification(c.Request.Context()); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.Status(http.StatusOK)
}

// POST /wishlist/:courseID
func (h *AuthHandler) ToggleWishlist(c *gin.Context) {
	if err := h.sess.ToggleWishlist(c.Request.Context(), c.Param("courseID")); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.sess.State().Err})
		return
	}
	c.JSON(http.StatusOK, viewOf(h.sess.State()))
}

// statusOf picks the HTTP status the shell sees for a dispatcher failure.
// The user-facing message always comes from the session state.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoResponse):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}
