package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/abenov/coursehub/internal/api"
	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/metrics"
	"github.com/go-playground/validator/v10"
)

// tokenStore is the subset of token.Store the manager needs for effects.
type tokenStore interface {
	Set(tok string) error
	Clear() error
	Present() bool
}

// authAPI is the subset of api.Client the dispatchers call. Defined here
// (point of use) so tests can inject a fake.
type authAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	Register(ctx context.Context, input api.RegisterInput) (*api.AuthResult, error)
	Profile(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, input api.UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, current, updated string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
	VerifyEmail(ctx context.Context, verifyToken string) error
	ResendVerification(ctx context.Context) error
	ToggleWishlist(ctx context.Context, courseID string) error
	Logout(ctx context.Context) error
}

// Manager owns the session state. All mutation goes through Dispatch, which
// applies the pure reducer, runs the persistence effect the action implies,
// and notifies subscribers. Dispatchers may run on any goroutine; when two
// race, the last-resolved response wins (documented behavior, see the
// regression test).
type Manager struct {
	tokens   tokenStore
	api      authAPI
	validate *validator.Validate
	logger   *slog.Logger

	mu    sync.Mutex
	state State

	subMu sync.Mutex
	subs  map[int]func(State)
	nextS int
}

func NewManager(tokens tokenStore, apiClient authAPI, logger *slog.Logger) *Manager {
	return &Manager{
		tokens:   tokens,
		api:      apiClient,
		validate: validator.New(),
		logger:   logger.With("component", "session"),
		subs:     make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to run after every dispatch. The returned func
// unsubscribes.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subMu.Lock()
	id := m.nextS
	m.nextS++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// Dispatch applies a to the state, then runs the action's persistence
// effect. Auth persists its token; Logout clears the store. Keeping the
// effect out of Reduce keeps the transition function pure.
func (m *Manager) Dispatch(a Action) {
	m.mu.Lock()
	m.state = Reduce(m.state, a)
	next := m.state

	// The effect runs under the same lock as the reduction. Racing Auth
	// dispatches may still disagree about which login won, but the store
	// always holds the token of whichever state the session ended on.
	switch a := a.(type) {
	case Auth:
		if a.Payload.Token != "" {
			if err := m.tokens.Set(a.Payload.Token); err != nil {
				m.logger.Error("persist token", "error", err)
			}
		}
	case Logout:
		if m.tokens.Present() {
			if err := m.tokens.Clear(); err != nil {
				m.logger.Error("clear token", "error", err)
			}
		}
	}
	m.mu.Unlock()

	m.subMu.Lock()
	for _, fn := range m.subs {
		fn(next)
	}
	m.subMu.Unlock()
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login validates locally, then resolves to exactly one of Auth or
// AuthError. Validation failures never reach the network.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.begin()

	in := loginInput{Email: email, Password: password}
	if err := m.validate.Struct(in); err != nil {
		msg := errPasswordRequired
		if fieldFailed(err, "Email") {
			msg = errEmailInvalid
		}
		return m.fail("login", "validation", msg, err)
	}

	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		return m.fail("login", outcomeOf(err), userMessage(err), err)
	}

	m.Dispatch(Auth{Payload: AuthPayload{User: res.User, Token: res.Token}})
	metrics.AuthOperationsTotal.WithLabelValues("login", "success").Inc()
	m.logger.InfoContext(ctx, "logged in", "user_id", res.User.ID, "role", res.User.Role)
	return nil
}

type signupInput struct {
	FullName string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Signup registers a new account and signs it in. Same resolution contract
// as Login, with the extra local checks on name and password length.
func (m *Manager) Signup(ctx context.Context, fullName, email, password string, role domain.Role) error {
	m.begin()

	in := signupInput{FullName: fullName, Email: email, Password: password}
	if err := m.validate.Struct(in); err != nil {
		msg := errGeneric
		switch {
		case fieldFailed(err, "FullName"):
			msg = errNameTooShort
		case fieldFailed(err, "Email"):
			msg = errEmailInvalid
		case fieldFailed(err, "Password"):
			msg = errPasswordTooShort
		}
		return m.fail("signup", "validation", msg, err)
	}

	res, err := m.api.Register(ctx, api.RegisterInput{
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return m.fail("signup", outcomeOf(err), userMessage(err), err)
	}

	m.Dispatch(Auth{Payload: AuthPayload{User: res.User, Token: res.Token}})
	metrics.AuthOperationsTotal.WithLabelValues("signup", "success").Inc()
	m.logger.InfoContext(ctx, "signed up", "user_id", res.User.ID, "role", res.User.Role)
	return nil
}

// FetchUserData resolves the profile for a stored token. An empty token is
// not an error: loading is cleared and nothing else happens. A transient
// failure never removes the stored token; a rejected credential tears the
// whole session down (see fail).
func (m *Manager) FetchUserData(ctx context.Context, tok string) error {
	if tok == "" {
		m.Dispatch(AuthLoading{Loading: false})
		return nil
	}

	m.begin()

	user, err := m.api.Profile(ctx)
	if err != nil {
		return m.fail("fetch_user", outcomeOf(err), userMessage(err), err)
	}

	m.Dispatch(Auth{Payload: AuthPayload{User: user, Token: tok}})
	metrics.AuthOperationsTotal.WithLabelValues("fetch_user", "success").Inc()
	return nil
}

// Logout clears local state unconditionally and notifies the server on a
// best-effort basis. The notification cannot affect local state: by the
// time it runs, the session and stored token are already gone.
func (m *Manager) Logout(ctx context.Context) {
	m.Dispatch(Logout{})
	metrics.AuthOperationsTotal.WithLabelValues("logout", "success").Inc()
	m.logger.InfoContext(ctx, "logged out")

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := m.api.Logout(ctx); err != nil {
			m.logger.Debug("server logout notification", "error", err)
		}
	}()
}

// UpdateProfile saves profile edits and patches the session with the
// server's copy.
func (m *Manager) UpdateProfile(ctx context.Context, input api.UpdateProfileInput) error {
	m.begin()

	user, err := m.api.UpdateProfile(ctx, input)
	if err != nil {
		return m.fail("update_profile", outcomeOf(err), userMessage(err), err)
	}

	m.Dispatch(UpdateUser{User: user})
	metrics.AuthOperationsTotal.WithLabelValues("update_profile", "success").Inc()
	return nil
}

func (m *Manager) ChangePassword(ctx context.Context, current, updated string) error {
	m.begin()

	if len(updated) < 6 {
		return m.fail("change_password", "validation", errPasswordTooShort, nil)
	}
	if err := m.api.ChangePassword(ctx, current, updated); err != nil {
		return m.fail("change_password", outcomeOf(err), userMessage(err), err)
	}

	m.Dispatch(AuthLoading{Loading: false})
	metrics.AuthOperationsTotal.WithLabelValues("change_password", "success").Inc()
	return nil
}

// ForgotPassword starts the OTP reset flow.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	return m.simple(ctx, "forgot_password", func(ctx context.Context) error {
		if err := m.validate.Var(email, "required,email"); err != nil {
			return validationError{errEmailInvalid}
		}
		return m.api.ForgotPassword(ctx, email)
	})
}

// VerifyOTP checks the emailed one-time code.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string) error {
	return m.simple(ctx, "verify_otp", func(ctx context.Context) error {
		return m.api.VerifyOTP(ctx, email, otp)
	})
}

// ResetPassword completes the OTP reset flow with a new password.
func (m *Manager) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return m.simple(ctx, "reset_password", func(ctx context.Context) error {
		if len(newPassword) < 6 {
			return validationError{errPasswordTooShort}
		}
		return m.api.ResetPassword(ctx, email, otp, newPassword)
	})
}

// VerifyEmail redeems an email verification token.
func (m *Manager) VerifyEmail(ctx context.Context, verifyToken string) error {
	return m.simple(ctx, "verify_email", func(ctx context.Context) error {
		return m.api.VerifyEmail(ctx, verifyToken)
	})
}

func (m *Manager) ResendVerification(ctx context.Context) error {
	return m.simple(ctx, "resend_verification", m.api.ResendVerification)
}

// ToggleWishlist patches the wishlist optimistically, then syncs with the
// server. On failure the patch is rolled back and the error surfaced.
func (m *Manager) ToggleWishlist(ctx context.Context, courseID string) error {
	st := m.State()
	if !st.Authenticated() {
		return domain.ErrUnauthorized
	}

	before := st.User.User
	m.Dispatch(UpdateUser{User: toggleWishlist(before, courseID)})

	if err := m.api.ToggleWishlist(ctx, courseID); err != nil {
		m.Dispatch(UpdateUser{User: before})
		return m.fail("wishlist", outcomeOf(err), userMessage(err), err)
	}
	metrics.AuthOperationsTotal.WithLabelValues("wishlist", "success").Inc()
	return nil
}

// begin is the common prologue of every dispatcher: dismiss the previous
// error and mark the operation in flight.
func (m *Manager) begin() {
	m.Dispatch(ClearError{})
	m.Dispatch(AuthLoading{Loading: true})
}

func (m *Manager) fail(op, outcome, msg string, err error) error {
	if err != nil && errors.Is(err, domain.ErrUnauthorized) {
		// The server rejected the credential and the API client has
		// already dropped the stored token. The in-memory session
		// follows it out.
		m.Dispatch(Logout{})
	}
	m.Dispatch(AuthError{Message: msg})
	metrics.AuthOperationsTotal.WithLabelValues(op, outcome).Inc()
	if err == nil {
		err = &api.APIError{Status: 0, Message: msg}
	}
	m.logger.Warn(op+" failed", "outcome", outcome, "error", err)
	return err
}

type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

// simple runs a dispatcher with no session payload: prologue, one call,
// then either a cleared loading flag or an error.
func (m *Manager) simple(ctx context.Context, op string, call func(context.Context) error) error {
	m.begin()

	if err := call(ctx); err != nil {
		var ve validationError
		if errors.As(err, &ve) {
			return m.fail(op, "validation", ve.msg, err)
		}
		return m.fail(op, outcomeOf(err), userMessage(err), err)
	}

	m.Dispatch(AuthLoading{Loading: false})
	metrics.AuthOperationsTotal.WithLabelValues(op, "success").Inc()
	return nil
}

func fieldFailed(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.StructField() == field {
			return true
		}
	}
	return false
}

func toggleWishlist(u *domain.User, courseID string) *domain.User {
	patched := *u
	if u.HasWishlisted(courseID) {
		patched.Wishlist = make([]string, 0, len(u.Wishlist))
		for _, id := range u.Wishlist {
			if id != courseID {
				patched.Wishlist = append(patched.Wishlist, id)
			}
		}
	} else {
		patched.Wishlist = append(append([]string{}, u.Wishlist...), courseID)
	}
	return &patched
}
