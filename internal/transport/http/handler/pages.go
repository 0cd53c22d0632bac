package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abenov/coursehub/internal/courses"
	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/session"
	"github.com/gin-gonic/gin"
)

type catalogService interface {
	List(ctx context.Context, opts courses.ListOptions) (*domain.Page[domain.Course], error)
	Search(ctx context.Context, term string, opts courses.ListOptions) (*domain.Page[domain.Course], error)
	Get(ctx context.Context, slug string) (*domain.Course, error)
	Categories(ctx context.Context) ([]string, error)
}

type sessionReader interface {
	State() session.State
}

// PageHandler serves the view data behind each route. Visual rendering
// happens in the shell; these endpoints only assemble what a view needs.
type PageHandler struct {
	catalog catalogService
	sess    sessionReader
	logger  *slog.Logger
}

func NewPageHandler(catalog catalogService, sess sessionReader, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		catalog: catalog,
		sess:    sess,
		logger:  logger.With("component", "page_handler"),
	}
}

func listOptions(c *gin.Context) courses.ListOptions {
	var opts courses.ListOptions
	opts.Page = intQuery(c, "page")
	opts.PageSize = intQuery(c, "limit")
	opts.Category = c.Query("category")
	opts.Level = c.Query("level")
	opts.Sort = c.Query("sort")
	return opts
}

func intQuery(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// GET / and GET /courses
func (h *PageHandler) Courses(c *gin.Context) {
	page, err := h.catalog.List(c.Request.Context(), listOptions(c))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list courses", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load courses."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": page, "session": viewOf(h.sess.State())})
}

// GET /courses/search?q=
func (h *PageHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query."})
		return
	}

	page, err := h.catalog.Search(c.Request.Context(), term, listOptions(c))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "search courses", "error", err, "q", term)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Search is unavailable right now."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": page})
}

// GET /courses/:slug
func (h *PageHandler) CourseDetail(c *gin.Context) {
	course, err := h.catalog.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "course detail", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load the course."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course, "session": viewOf(h.sess.State())})
}

// GET /categories
func (h *PageHandler) Categories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "categories", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load categories."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// GET /dashboard, behind the guard, any authenticated role.
func (h *PageHandler) Dashboard(c *gin.Context) {
	st := h.sess.State()
	// The guard ran, but a logout can land between it and here.
	if !st.Authenticated() {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  viewOf(st),
		"enrolled": st.User.User.EnrolledCourses,
		"wishlist": st.User.User.Wishlist,
	})
}

// GET /instructor, behind the guard, instructor role required.
func (h *PageHandler) Instructor(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session": viewOf(h.sess.State())})
}

// GET /profile, behind the guard.
func (h *PageHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(h.sess.State()))
}
