package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gigs/internal/models"

	"github.com/google/uuid"
)

var errInjected = errors.New("injected storage failure")

type fakeTxKey struct{}

// fakeRepo keeps state in maps. WithTx runs transactions one at a time and
// restores the previous state when fn fails.
type fakeRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	gigs  map[string]models.Gig
	bids  map[string]models.Bid
	users map[string]models.User
	clock time.Time

	failOn     string
	failCommit bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		gigs:  make(map[string]models.Gig),
		bids:  make(map[string]models.Bid),
		users: make(map[string]models.User),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}

	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	gigs, bids := cloneMap(f.gigs), cloneMap(f.bids)
	f.mu.Unlock()

	err := fn(context.WithValue(ctx, fakeTxKey{}, true))
	if err == nil && f.failCommit {
		err = fmt.Errorf("commit: %w", errInjected)
	}
	if err != nil {
		f.mu.Lock()
		f.gigs, f.bids = gigs, bids
		f.mu.Unlock()
	}
	return err
}

func (f *fakeRepo) Ping(context.Context) error { return nil }

func (f *fakeRepo) inTx(ctx context.Context, op string) error {
	if ctx.Value(fakeTxKey{}) == nil {
		return fmt.Errorf("%s outside of transaction", op)
	}
	if f.failOn == op {
		return errInjected
	}
	return nil
}

func (f *fakeRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeRepo) AddGig(_ context.Context, gig models.Gig) (models.Gig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	gig.Id = uuid.NewString()
	gig.Status = models.GigOpen
	gig.CreatedAt = f.tick()
	f.gigs[gig.Id] = gig
	return gig, nil
}

func (f *fakeRepo) GetGig(_ context.Context, id string) (models.Gig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	gig, ok := f.gigs[id]
	if !ok {
		return gig, models.ErrNoGig
	}
	return gig, nil
}

func (f *fakeRepo) GetGigForUpdate(ctx context.Context, id string) (models.Gig, error) {
	if err := f.inTx(ctx, "GetGigForUpdate"); err != nil {
		return models.Gig{}, err
	}
	return f.GetGig(ctx, id)
}

func (f *fakeRepo) GetGigForShare(ctx context.Context, id string) (models.Gig, error) {
	if err := f.inTx(ctx, "GetGigForShare"); err != nil {
		return models.Gig{}, err
	}
	return f.GetGig(ctx, id)
}

func (f *fakeRepo) ListOpenGigs(_ context.Context, search string, limit, offset int) ([]models.Gig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []models.Gig{}
	for _, gig := range f.gigs {
		if gig.Status != models.GigOpen {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(gig.Title), strings.ToLower(search)) {
			continue
		}
		result = append(result, gig)
	}
	sortNewestFirst(result, func(g models.Gig) time.Time { return g.CreatedAt })

	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeRepo) ListGigsByOwner(_ context.Context, ownerId string) ([]models.Gig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []models.Gig{}
	for _, gig := range f.gigs {
		if gig.OwnerId == ownerId {
			result = append(result, gig)
		}
	}
	sortNewestFirst(result, func(g models.Gig) time.Time { return g.CreatedAt })
	return result, nil
}

func (f *fakeRepo) SetGigStatus(ctx context.Context, id string, status models.GigStatus) error {
	if err := f.inTx(ctx, "SetGigStatus"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	gig, ok := f.gigs[id]
	if !ok {
		return models.ErrNoGig
	}
	gig.Status = status
	f.gigs[id] = gig
	return nil
}

func (f *fakeRepo) AddBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	if f.failOn == "AddBid" {
		return bid, errInjected
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.gigs[bid.GigId]; !ok {
		return bid, models.ErrNoGig
	}
	bid.Id = uuid.NewString()
	bid.Status = models.BidPending
	bid.CreatedAt = f.tick()
	f.bids[bid.Id] = bid
	return bid, nil
}

func (f *fakeRepo) GetBid(_ context.Context, id string) (models.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bid, ok := f.bids[id]
	if !ok {
		return bid, models.ErrNoBid
	}
	return bid, nil
}

func (f *fakeRepo) ListBidsByGig(_ context.Context, gigId string) ([]models.BidWithBidder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []models.BidWithBidder{}
	for _, bid := range f.bids {
		if bid.GigId != gigId {
			continue
		}
		user := f.users[bid.BidderId]
		result = append(result, models.BidWithBidder{Bid: bid, BidderName: user.Name, BidderEmail: user.Email})
	}
	sortNewestFirst(result, func(b models.BidWithBidder) time.Time { return b.CreatedAt })
	return result, nil
}

func (f *fakeRepo) ListBidsByBidder(_ context.Context, bidderId string) ([]models.BidWithGig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []models.BidWithGig{}
	for _, bid := range f.bids {
		if bid.BidderId != bidderId {
			continue
		}
		entry := models.BidWithGig{Bid: bid}
		if gig, ok := f.gigs[bid.GigId]; ok {
			entry.Gig = &gig
		} else {
			entry.GigMissing = true
		}
		result = append(result, entry)
	}
	sortNewestFirst(result, func(b models.BidWithGig) time.Time { return b.CreatedAt })
	return result, nil
}

func (f *fakeRepo) SetBidStatus(ctx context.Context, id string, status models.BidStatus) error {
	if err := f.inTx(ctx, "SetBidStatus"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	bid, ok := f.bids[id]
	if !ok {
		return models.ErrNoBid
	}
	bid.Status = status
	f.bids[id] = bid
	return nil
}

func (f *fakeRepo) SetBidStatusForOthers(ctx context.Context, gigId, excludeId string, status models.BidStatus) error {
	if err := f.inTx(ctx, "SetBidStatusForOthers"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for id, bid := range f.bids {
		if bid.GigId == gigId && id != excludeId && bid.Status == models.BidPending {
			bid.Status = status
			f.bids[id] = bid
		}
	}
	return nil
}

func (f *fakeRepo) AddUser(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return user, models.ErrEmailTaken
		}
	}
	user.Id = uuid.NewString()
	user.CreatedAt = f.tick()
	f.users[user.Id] = user
	return user, nil
}

func (f *fakeRepo) UserByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, models.ErrNoUser
}

func (f *fakeRepo) UserByUUID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return user, models.ErrNoUser
	}
	return user, nil
}

func (f *fakeRepo) deleteGig(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.gigs, id)
}

// setBidStatus changes a bid outside of any transaction.
func (f *fakeRepo) setBidStatus(id string, status models.BidStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bid := f.bids[id]
	bid.Status = status
	f.bids[id] = bid
}

func (f *fakeRepo) bidsOf(gigId string) []models.Bid {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Bid
	for _, bid := range f.bids {
		if bid.GigId == gigId {
			result = append(result, bid)
		}
	}
	return result
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func sortNewestFirst[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).After(at(items[j]))
	})
}
