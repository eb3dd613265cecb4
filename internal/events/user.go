package events

import "time"

type UserCreated struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	At       time.Time `json:"at"`
}

type LoginFailed struct {
	Username string    `json:"username"`
	Error    string    `json:"error"`
	At       time.Time `json:"at"`
}
