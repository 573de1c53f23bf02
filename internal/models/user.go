package models

import "time"

type User struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is an authenticated caller.
type Identity struct {
	UserId string
}

func (i Identity) Valid() bool {
	return len(i.UserId) > 0
}
