package guard_test

import (
	"testing"

	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/guard"
)

func TestEvaluate_NoToken_RedirectsToLogin(t *testing.T) {
	d := guard.Evaluate(guard.Snapshot{}, "")

	if d.Render {
		t.Fatal("rendered without a token")
	}
	if d.Target != guard.LoginPath {
		t.Errorf("target = %q, want %q", d.Target, guard.LoginPath)
	}
}

func TestEvaluate_TokenWithoutUser_RedirectsToLogin(t *testing.T) {
	d := guard.Evaluate(guard.Snapshot{TokenPresent: true}, "")

	if d.Render {
		t.Fatal("rendered a stale token with no hydrated user")
	}
	if d.Target != guard.LoginPath {
		t.Errorf("target = %q, want %q", d.Target, guard.LoginPath)
	}
}

func TestEvaluate_RoleMismatch_RedirectsHome(t *testing.T) {
	s := guard.Snapshot{
		TokenPresent: true,
		User:         &domain.User{ID: "u-1", Role: domain.RoleStudent},
	}

	d := guard.Evaluate(s, domain.RoleInstructor)

	if d.Render {
		t.Fatal("student rendered an instructor-only view")
	}
	if d.Target != guard.HomePath {
		t.Errorf("target = %q, want %q", d.Target, guard.HomePath)
	}
}

func TestEvaluate_MatchingRole_Renders(t *testing.T) {
	s := guard.Snapshot{
		TokenPresent: true,
		User:         &domain.User{ID: "u-1", Role: domain.RoleInstructor},
	}

	d := guard.Evaluate(s, domain.RoleInstructor)

	if !d.Render {
		t.Errorf("instructor denied, redirected to %q (%s)", d.Target, d.Reason)
	}
}

func TestEvaluate_AnyRoleAllowed_WhenNoRequirement(t *testing.T) {
	s := guard.Snapshot{
		TokenPresent: true,
		User:         &domain.User{ID: "u-2", Role: domain.RoleStudent},
	}

	if d := guard.Evaluate(s, ""); !d.Render {
		t.Errorf("authenticated user denied an unrestricted view (%s)", d.Reason)
	}
}
