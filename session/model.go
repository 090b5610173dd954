package session

// Session is the locally persisted result of a completed sign-in.
type Session struct {
	SessionID    string
	UserID       string
	AccessToken  string
	RefreshToken string

	CreatedAt int64
	ExpiresAt int64
}
