// Package policy holds authorization predicates over gigs.
// Callers check existence of the gig before consulting any of them.
package policy

import "gigs/internal/models"

func IsOwner(caller models.Identity, gig models.Gig) bool {
	return caller.Valid() && caller.UserId == gig.OwnerId
}

// Only the owner may see the bids submitted to a gig.
func CanViewBidsForGig(caller models.Identity, gig models.Gig) bool {
	return IsOwner(caller, gig)
}

func CanBid(caller models.Identity, gig models.Gig) bool {
	return caller.Valid() && gig.Status == models.GigOpen && !IsOwner(caller, gig)
}

func CanHire(caller models.Identity, gig models.Gig) bool {
	return IsOwner(caller, gig)
}
