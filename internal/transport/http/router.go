package httptransport

import (
	"log/slog"

	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/session"
	"github.com/abenov/coursehub/internal/transport/http/handler"
	"github.com/abenov/coursehub/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type tokenChecker interface {
	Present() bool
}

type sessionReader interface {
	State() session.State
}

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, pageHandler *handler.PageHandler, sess sessionReader, tokens tokenChecker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public routes
	r.GET("/", pageHandler.Courses)
	r.GET("/courses", pageHandler.Courses)
	r.GET("/courses/search", pageHandler.Search)
	r.GET("/courses/:slug", pageHandler.CourseDetail)
	r.GET("/categories", pageHandler.Categories)

	r.GET("/session", authHandler.Session)
	r.POST("/login", authHandler.Login)
	r.POST("/signup", authHandler.Signup)
	r.POST("/logout", authHandler.Logout)
	r.POST("/password/forgot", authHandler.ForgotPassword)
	r.POST("/password/verify-otp", authHandler.VerifyOTP)
	r.POST("/password/reset", authHandler.ResetPassword)
	r.POST("/verify-email", authHandler.VerifyEmail)

	// Protected routes: any authenticated user
	authed := r.Group("", middleware.Guard(sess, tokens, ""))
	authed.GET("/dashboard", pageHandler.Dashboard)
	authed.GET("/profile", pageHandler.Profile)
	authed.PUT("/profile", authHandler.UpdateProfile)
	authed.PUT("/profile/password", authHandler.ChangePassword)
	authed.POST("/verify-email/resend", authHandler.ResendVerification)
	authed.POST("/wishlist/:courseID", authHandler.ToggleWishlist)

	// Protected routes: instructors only
	instructor := r.Group("/instructor", middleware.Guard(sess, tokens, domain.RoleInstructor))
	instructor.GET("", pageHandler.Instructor)

	return r
}
