package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gigs/internal/config"
	"gigs/internal/models"
)

type stubGuard struct{}

func (stubGuard) Authenticate(token string) (models.Identity, error) {
	if id, ok := strings.CutPrefix(token, "valid-"); ok {
		return models.Identity{UserId: id}, nil
	}
	return models.Identity{}, models.ErrUnauthenticated
}

// stubService returns err from every call and records the caller.
type stubService struct {
	err    error
	caller models.Identity
	args   []any
}

func (s *stubService) Ping(context.Context) error { return s.err }

func (s *stubService) Register(_ context.Context, name, email, password string) (models.User, error) {
	s.args = []any{name, email, password}
	return models.User{Id: "u1", Name: name, Email: email, PasswordHash: "hash"}, s.err
}

func (s *stubService) Login(_ context.Context, email, password string) (models.User, string, error) {
	s.args = []any{email, password}
	return models.User{Id: "u1", Email: email, PasswordHash: "hash"}, "jwt-token", s.err
}

func (s *stubService) Me(_ context.Context, caller models.Identity) (models.User, error) {
	s.caller = caller
	return models.User{Id: caller.UserId}, s.err
}

func (s *stubService) CreateGig(_ context.Context, caller models.Identity, title, description string, budget float64) (models.Gig, error) {
	s.caller, s.args = caller, []any{title, description, budget}
	return models.Gig{Id: "g1", Title: title, OwnerId: caller.UserId, Status: models.GigOpen}, s.err
}

func (s *stubService) GetGig(_ context.Context, id string) (models.Gig, error) {
	s.args = []any{id}
	return models.Gig{Id: id}, s.err
}

func (s *stubService) ListOpenGigs(_ context.Context, search string, limit, offset int) ([]models.Gig, error) {
	s.args = []any{search, limit, offset}
	return []models.Gig{}, s.err
}

func (s *stubService) ListMyGigs(_ context.Context, caller models.Identity) ([]models.Gig, error) {
	s.caller = caller
	return []models.Gig{}, s.err
}

func (s *stubService) CreateBid(_ context.Context, caller models.Identity, gigId, message string, price float64) (models.Bid, error) {
	s.caller, s.args = caller, []any{gigId, message, price}
	return models.Bid{Id: "b1", GigId: gigId}, s.err
}

func (s *stubService) ListBidsForGig(_ context.Context, caller models.Identity, gigId string) ([]models.BidWithBidder, error) {
	s.caller, s.args = caller, []any{gigId}
	return []models.BidWithBidder{}, s.err
}

func (s *stubService) ListMyBids(_ context.Context, caller models.Identity) ([]models.BidWithGig, error) {
	s.caller = caller
	return []models.BidWithGig{{Bid: models.Bid{Id: "b1"}, GigMissing: true}}, s.err
}

func (s *stubService) Hire(_ context.Context, caller models.Identity, bidId string) error {
	s.caller, s.args = caller, []any{bidId}
	return s.err
}

func newTestController(svc Service) *Controller {
	return NewController(svc, stubGuard{}, &config.AuthConfig{TokenTTL: time.Hour})
}

func decodeReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Could not decode error response '%s': %s", rec.Body.String(), err)
	}
	return resp.Reason
}

func TestServiceErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("x: %w: title is required", models.ErrInvalidInput), http.StatusBadRequest},
		{models.ErrUnauthenticated, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrNoGig, http.StatusNotFound},
		{models.ErrNoBid, http.StatusNotFound},
		{models.ErrNoUser, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", models.ErrGigAssigned), http.StatusConflict},
		{models.ErrEmailTaken, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", models.ErrBidNotPending), http.StatusConflict},
		{fmt.Errorf("%w: %w", models.ErrHireFailed, errors.New("db gone")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	c := newTestController(&stubService{})
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c.serviceErrorResponse(rec, tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.status, rec.Code)
		}
		if len(decodeReason(t, rec)) == 0 {
			t.Errorf("%v: expected non-empty reason", tt.err)
		}
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestController(&stubService{}).serviceErrorResponse(rec, errors.New("pq: password authentication failed"))

	if reason := decodeReason(t, rec); strings.Contains(reason, "pq") {
		t.Errorf("Internal error detail leaked: '%s'", reason)
	}
}

func TestInvalidInputReason(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("service.Service.CreateGig: %w: budget must be positive", models.ErrInvalidInput)
	newTestController(&stubService{}).serviceErrorResponse(rec, err)

	if reason := decodeReason(t, rec); reason != "budget must be positive" {
		t.Errorf("Expected detail as reason, got '%s'", reason)
	}
}

func TestNewGigValidation(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"title": "", "description": "d", "budget": 10}`,
		`{"title": "t", "description": "", "budget": 10}`,
		`{"title": "t", "description": "d", "budget": 0}`,
		`{"title": "t", "description": "d", "budget": -3}`,
		`{"title": "t", "description": "d", "budget": 1e13}`,
	}

	for _, body := range bodies {
		svc := &stubService{}
		c := newTestController(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/gigs", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer valid-owner")
		rec := httptest.NewRecorder()
		c.RequireAuth(c.NewGig)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %s: expected status %d, got %d", body, http.StatusBadRequest, rec.Code)
		}
		if svc.args != nil {
			t.Errorf("Body %s: service must not be called", body)
		}
	}
}

func TestNewGigPassesIdentity(t *testing.T) {
	svc := &stubService{}
	c := newTestController(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/gigs", strings.NewReader(`{"title": "Build site", "description": "d", "budget": 5000}`))
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "valid-owner"})
	rec := httptest.NewRecorder()
	c.RequireAuth(c.NewGig)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if svc.caller.UserId != "owner" {
		t.Errorf("Expected caller 'owner', got '%s'", svc.caller.UserId)
	}
	if svc.args[2].(float64) != 5000 {
		t.Errorf("Expected budget 5000, got %v", svc.args[2])
	}
}

func TestRequireAuth(t *testing.T) {
	c := newTestController(&stubService{})
	called := false
	handler := c.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, header := range []string{"", "Bearer", "Bearer invalid", "Basic valid-x"} {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/gigs/my", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized || called {
			t.Errorf("Header '%s': expected 401 without calling handler, got %d", header, rec.Code)
		}
	}
}

func TestLoginSetsCookie(t *testing.T) {
	c := newTestController(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email": "a@b.c", "password": "secret1"}`))
	rec := httptest.NewRecorder()
	c.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var token *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == tokenCookie {
			token = cookie
		}
	}
	if token == nil || token.Value != "jwt-token" || !token.HttpOnly {
		t.Fatalf("Expected http-only token cookie, got %+v", token)
	}
	if token.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("Expected cookie max age %d, got %d", int(time.Hour.Seconds()), token.MaxAge)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Errorf("Password hash leaked in response: %s", rec.Body.String())
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	c := newTestController(&stubService{})

	rec := httptest.NewRecorder()
	c.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != tokenCookie || cookies[0].MaxAge >= 0 {
		t.Errorf("Expected expired token cookie, got %+v", cookies)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := &stubService{}
	c := newTestController(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name": "Ann", "email": "nope", "password": "secret1"}`))
	rec := httptest.NewRecorder()
	c.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if reason := decodeReason(t, rec); !strings.Contains(reason, "email") {
		t.Errorf("Expected reason to name the email field, got '%s'", reason)
	}
}

func TestListGigsQuery(t *testing.T) {
	svc := &stubService{}
	c := newTestController(svc)

	rec := httptest.NewRecorder()
	c.ListGigs(rec, httptest.NewRequest(http.MethodGet, "/api/gigs?search=web&limit=5&offset=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if svc.args[0] != "web" || svc.args[1] != 5 || svc.args[2] != 10 {
		t.Errorf("Unexpected service args: %v", svc.args)
	}

	for _, query := range []string{"limit=x", "offset=-1"} {
		rec = httptest.NewRecorder()
		c.ListGigs(rec, httptest.NewRequest(http.MethodGet, "/api/gigs?"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Query '%s': expected status %d, got %d", query, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestMyBidsTombstone(t *testing.T) {
	c := newTestController(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/bids/my", nil)
	req.Header.Set("Authorization", "Bearer valid-bidder")
	rec := httptest.NewRecorder()
	c.RequireAuth(c.MyBids)(rec, req)

	var bids []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &bids); err != nil {
		t.Fatal(err)
	}
	if len(bids) != 1 {
		t.Fatalf("Expected 1 bid, got %d", len(bids))
	}
	if gig, ok := bids[0]["gig"]; !ok || gig != nil {
		t.Errorf("Expected explicit null gig, got %v", bids[0]["gig"])
	}
	if bids[0]["gigMissing"] != true {
		t.Errorf("Expected gigMissing=true, got %v", bids[0]["gigMissing"])
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CORS(next, "http://client")

	req := httptest.NewRequest(http.MethodOptions, "/api/gigs", nil)
	req.Header.Set("Origin", "http://client")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected preflight status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://client" || rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("Missing CORS headers: %v", rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/gigs", nil)
	req.Header.Set("Origin", "http://evil")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("Unexpected response for foreign origin: %d %v", rec.Code, rec.Header())
	}
}
