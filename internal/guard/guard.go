// Package guard decides whether a protected view may render for the
// current session. The decision is a pure, synchronous predicate evaluated
// on every navigation; it holds no state of its own.
package guard

import "github.com/abenov/coursehub/internal/domain"

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Snapshot is the slice of session state the guard looks at.
type Snapshot struct {
	TokenPresent bool
	User         *domain.User
}

// Decision is either "render the view" or "redirect to Target".
type Decision struct {
	Render bool
	Target string
	Reason string
}

func render() Decision {
	return Decision{Render: true}
}

func redirect(target, reason string) Decision {
	return Decision{Target: target, Reason: reason}
}

// Evaluate gates one navigation. requiredRole empty means any
// authenticated user may enter.
//
// A present token without a hydrated user is treated as a stale credential
// and redirected to login, even while hydration may still be pending.
func Evaluate(s Snapshot, requiredRole domain.Role) Decision {
	if !s.TokenPresent {
		return redirect(LoginPath, "no_token")
	}
	if s.User == nil {
		return redirect(LoginPath, "no_user")
	}
	if requiredRole != "" && s.User.Role != requiredRole {
		return redirect(HomePath, "role_mismatch")
	}
	return render()
}
