package domain

// Principal is the staff account a session belongs to.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Session is the client-side authentication state. It is the only state
// persisted between runs.
type Session struct {
	Token           string     `json:"token"`
	User            *Principal `json:"user"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

// Validate enforces IsAuthenticated => Token != "".
func (s *Session) Validate() error {
	if s.IsAuthenticated && s.Token == "" {
		return ErrInvalidSession.WithDetails("authenticated session without token")
	}
	return nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return &c
}

// LoginRequest is the body of POST /auth/login/gym-one.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required credentials before sending.
func (r LoginRequest) Validate() error {
	if r.Email == "" {
		return Validationf("email is required")
	}
	if r.Password == "" {
		return Validationf("password is required")
	}
	return nil
}

// LoginResponse is the payload returned by a successful login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  *Principal `json:"user"`
}
