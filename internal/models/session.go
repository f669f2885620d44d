package models

import "time"

// Session is a persisted active user for whom a bridge runs.
type Session struct {
	User        User      `json:"user"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// UserID returns the id of the session's user.
func (s *Session) UserID() string {
	return s.User.UserID.String()
}
