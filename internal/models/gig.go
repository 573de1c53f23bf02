package models

import "time"

type GigStatus string

const (
	GigOpen     GigStatus = "open"
	GigAssigned GigStatus = "assigned"
)

func ValidGigStatus(s GigStatus) bool {
	switch s {
	case GigOpen, GigAssigned:
		return true
	default:
		return false
	}
}

type Gig struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      float64   `json:"budget"`
	OwnerId     string    `json:"ownerId"`
	Status      GigStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
