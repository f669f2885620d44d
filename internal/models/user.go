package models

import "fmt"

// UserID is a numeric-or-string identifier kept as a string.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	s, err := decodeID(data)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = UserID(s)
	return nil
}

func (id UserID) String() string { return string(id) }

// User is the current-session user record returned by the login endpoint.
type User struct {
	UserID      UserID    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CreatedDate Timestamp `json:"createdDate"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
