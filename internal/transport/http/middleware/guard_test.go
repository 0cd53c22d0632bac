package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/session"
	"github.com/abenov/coursehub/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type fakeSession struct {
	state session.State
}

func (f *fakeSession) State() session.State { return f.state }

type fakeTokens struct {
	present bool
}

func (f *fakeTokens) Present() bool { return f.present }

func serve(t *testing.T, sess *fakeSession, tokens *fakeTokens, role domain.Role) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", middleware.Guard(sess, tokens, role), func(c *gin.Context) {
		c.String(http.StatusOK, "rendered")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	return w
}

func authed(role domain.Role) *fakeSession {
	return &fakeSession{state: session.State{User: &session.AuthPayload{
		User:  &domain.User{ID: "u-1", Role: role},
		Token: "tok-1",
	}}}
}

func TestGuard_NoToken_RedirectsToLogin(t *testing.T) {
	w := serve(t, &fakeSession{}, &fakeTokens{present: false}, "")

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q", loc)
	}
}

func TestGuard_TokenWithoutHydratedUser_RedirectsToLogin(t *testing.T) {
	w := serve(t, &fakeSession{}, &fakeTokens{present: true}, "")

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q", loc)
	}
}

func TestGuard_StudentOnInstructorRoute_RedirectsHome(t *testing.T) {
	w := serve(t, authed(domain.RoleStudent), &fakeTokens{present: true}, domain.RoleInstructor)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestGuard_InstructorOnInstructorRoute_Renders(t *testing.T) {
	w := serve(t, authed(domain.RoleInstructor), &fakeTokens{present: true}, domain.RoleInstructor)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGuard_AuthenticatedUser_UnrestrictedRoute_Renders(t *testing.T) {
	w := serve(t, authed(domain.RoleStudent), &fakeTokens{present: true}, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
