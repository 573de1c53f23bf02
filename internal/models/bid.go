package models

import "time"

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidHired    BidStatus = "hired"
	BidRejected BidStatus = "rejected"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidHired, BidRejected:
		return true
	default:
		return false
	}
}

type Bid struct {
	Id        string    `json:"id"`
	GigId     string    `json:"gigId"`
	BidderId  string    `json:"bidderId"`
	Message   string    `json:"message"`
	Price     float64   `json:"price"`
	Status    BidStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bid as seen by the gig owner
type BidWithBidder struct {
	Bid
	BidderName  string `json:"bidderName"`
	BidderEmail string `json:"bidderEmail"`
}

// Bid as seen by its author. Gig is nil when the referenced gig no longer exists.
type BidWithGig struct {
	Bid
	Gig        *Gig `json:"gig"`
	GigMissing bool `json:"gigMissing,omitempty"`
}
