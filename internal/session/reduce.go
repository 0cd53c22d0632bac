package session

// Reduce maps (state, action) to the next state. Pure: no I/O, no clock, no
// mutation of the input. Token persistence belongs to the Manager's effect
// step, not here.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Auth:
		payload := a.Payload
		return State{User: &payload}

	case AuthLoading:
		s.Loading = a.Loading
		return s

	case AuthError:
		// Errors surface to the UI but never tear down an existing
		// session; transient failures must not log the user out.
		s.Err = a.Message
		s.Loading = false
		return s

	case ClearError:
		s.Err = ""
		return s

	case UpdateUser:
		if s.User == nil || a.User == nil {
			return s
		}
		s.User = &AuthPayload{User: a.User, Token: s.User.Token}
		s.Loading = false
		return s

	case Logout:
		return State{}

	default:
		return s
	}
}
