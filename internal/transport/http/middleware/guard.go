package middleware

import (
	"net/http"

	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/guard"
	"github.com/abenov/coursehub/internal/metrics"
	"github.com/abenov/coursehub/internal/session"
	"github.com/gin-gonic/gin"
)

type sessionReader interface {
	State() session.State
}

type tokenChecker interface {
	Present() bool
}

// Guard consults the route guard before a protected view renders. The
// decision is re-evaluated on every navigation; nothing is cached here.
func Guard(sess sessionReader, tokens tokenChecker, requiredRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := guard.Snapshot{TokenPresent: tokens.Present()}
		if st := sess.State(); st.User != nil {
			snap.User = st.User.User
		}

		d := guard.Evaluate(snap, requiredRole)
		if d.Render {
			c.Next()
			return
		}

		metrics.GuardRedirectsTotal.WithLabelValues(d.Reason).Inc()
		c.Redirect(http.StatusSeeOther, d.Target)
		c.Abort()
	}
}
