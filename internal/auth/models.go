// Package auth supplies the identity collaborator the listing pipeline
// depends on: user accounts, bearer-token sessions, and the preserved
// "return to" destination across a login redirect.
package auth

import "time"

// User is an account that can own listings.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicProfile is the subset of a user safe to expose when a listing's owner
// reference is expanded for display.
type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public projects the user onto its display form.
func (u User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username}
}

// Session is one authenticated device. Device and IP are captured at login
// for the user's session list.
type Session struct {
	ID        string
	UserID    string
	Device    string
	ClientIP  string
	CreatedAt time.Time
	ExpiresAt time.Time
}
