package domain

import "time"

// User represents a registered account. The same account can publish rides
// and book seats on other users' rides.
type User struct {
	ID           string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}
