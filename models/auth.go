package models

// SessionPayload is the session document stored in Redis under the session token.
type SessionPayload struct {
	User         `json:"user"`
	RefreshToken string `json:"refresh-token"`
}

type User struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Role string

const (
	Admin    Role = "ADMIN"
	Customer Role = "CUSTOMER"
)
