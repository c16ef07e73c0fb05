package models

import "time"

// User is an approver account for the dashboard API.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
