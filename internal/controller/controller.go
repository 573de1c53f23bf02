package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gigs/internal/config"
	"gigs/internal/models"

	"github.com/go-playground/validator/v10"
)

const tokenCookie = "token"

// Limit on accepted request bodies
const maxBodySize = 1 << 20

type Service interface {
	Ping(ctx context.Context) error

	Register(ctx context.Context, name, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.User, string, error)
	Me(ctx context.Context, caller models.Identity) (models.User, error)

	CreateGig(ctx context.Context, caller models.Identity, title, description string, budget float64) (models.Gig, error)
	GetGig(ctx context.Context, id string) (models.Gig, error)
	ListOpenGigs(ctx context.Context, search string, limit, offset int) ([]models.Gig, error)
	ListMyGigs(ctx context.Context, caller models.Identity) ([]models.Gig, error)

	CreateBid(ctx context.Context, caller models.Identity, gigId, message string, price float64) (models.Bid, error)
	ListBidsForGig(ctx context.Context, caller models.Identity, gigId string) ([]models.BidWithBidder, error)
	ListMyBids(ctx context.Context, caller models.Identity) ([]models.BidWithGig, error)
	Hire(ctx context.Context, caller models.Identity, bidId string) error
}

type Authenticator interface {
	Authenticate(token string) (models.Identity, error)
}

type Controller struct {
	service  Service
	guard    Authenticator
	validate *validator.Validate
	cfg      *config.AuthConfig
}

func NewController(service Service, guard Authenticator, cfg *config.AuthConfig) *Controller {
	return &Controller{
		service:  service,
		guard:    guard,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	err := c.service.Ping(r.Context())
	if err != nil {
		log.Println("controller.Controller.Ping:", err)
		c.errorResponse(w, http.StatusServiceUnavailable, "database is unavailable")
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Auth

// POST /api/auth/register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := readReq[RegisterReq](c, w, r)
	if !ok {
		return
	}

	user, err := c.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalStatusResponse(w, http.StatusCreated, user)
}

// POST /api/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readReq[LoginReq](c, w, r)
	if !ok {
		return
	}

	user, token, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	http.SetCookie(w, c.tokenCookie(token, c.cfg.TokenTTL))
	c.marshalResponse(w, user)
}

// POST /api/auth/logout
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.tokenCookie("", -1))
	c.marshalResponse(w, MessageResponse{Message: "logged out"})
}

// GET /api/auth/me
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.service.Me(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, user)
}

//// Gigs

// GET /api/gigs
func (c *Controller) ListGigs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	gigs, err := c.service.ListOpenGigs(r.Context(), query.Get("search"), limit, offset)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, gigs)
}

// POST /api/gigs
func (c *Controller) NewGig(w http.ResponseWriter, r *http.Request) {
	req, ok := readReq[NewGigReq](c, w, r)
	if !ok {
		return
	}

	gig, err := c.service.CreateGig(r.Context(), IdentityFromContext(r.Context()), req.Title, req.Description, req.Budget)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalStatusResponse(w, http.StatusCreated, gig)
}

// GET /api/gigs/my
func (c *Controller) MyGigs(w http.ResponseWriter, r *http.Request) {
	gigs, err := c.service.ListMyGigs(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, gigs)
}

// GET /api/gigs/{gigId}
func (c *Controller) GetGig(w http.ResponseWriter, r *http.Request) {
	gig, err := c.service.GetGig(r.Context(), r.PathValue("gigId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, gig)
}

//// Bids

// POST /api/bids
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	req, ok := readReq[NewBidReq](c, w, r)
	if !ok {
		return
	}

	bid, err := c.service.CreateBid(r.Context(), IdentityFromContext(r.Context()), req.GigId, req.Message, req.Price)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalStatusResponse(w, http.StatusCreated, bid)
}

// GET /api/bids/my
func (c *Controller) MyBids(w http.ResponseWriter, r *http.Request) {
	bids, err := c.service.ListMyBids(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bids)
}

// GET /api/bids/{gigId}
func (c *Controller) GigBids(w http.ResponseWriter, r *http.Request) {
	bids, err := c.service.ListBidsForGig(r.Context(), IdentityFromContext(r.Context()), r.PathValue("gigId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bids)
}

// PATCH /api/bids/{bidId}/hire
func (c *Controller) Hire(w http.ResponseWriter, r *http.Request) {
	err := c.service.Hire(r.Context(), IdentityFromContext(r.Context()), r.PathValue("bidId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, MessageResponse{Message: "freelancer hired successfully"})
}

//// Service

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	str := query.Get(key)
	if len(str) == 0 {
		return 0, nil
	}

	n, err := strconv.Atoi(str)
	if err == nil && n < 0 {
		err = fmt.Errorf("negative value: %d", n)
	}
	return n, err
}

// Negative maxAge deletes the cookie.
func (c *Controller) tokenCookie(value string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     tokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.cfg.CookieSecure {
		cookie.SameSite = http.SameSiteNoneMode
	}

	if maxAge < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else if maxAge > 0 {
		cookie.MaxAge = int(maxAge.Seconds())
	}
	return cookie
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}

	_, err = w.Write(data)
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		c.errorResponse(w, http.StatusBadRequest, reason(err, models.ErrInvalidInput))
	case errors.Is(err, models.ErrUnauthenticated):
		c.errorResponse(w, http.StatusUnauthorized, "not authorized")
	case errors.Is(err, models.ErrForbidden):
		c.errorResponse(w, http.StatusForbidden, "user have no permission for requested action")
	case errors.Is(err, models.ErrNoGig):
		c.errorResponse(w, http.StatusNotFound, "requested gig does not exist")
	case errors.Is(err, models.ErrNoBid):
		c.errorResponse(w, http.StatusNotFound, "requested bid does not exist")
	case errors.Is(err, models.ErrNotFound):
		c.errorResponse(w, http.StatusNotFound, "requested resource does not exist")
	case errors.Is(err, models.ErrGigAssigned):
		c.errorResponse(w, http.StatusConflict, "gig is already assigned")
	case errors.Is(err, models.ErrBidNotPending):
		c.errorResponse(w, http.StatusConflict, "bid is no longer pending")
	case errors.Is(err, models.ErrEmailTaken):
		c.errorResponse(w, http.StatusConflict, "user already exists")
	case errors.Is(err, models.ErrConflict):
		c.errorResponse(w, http.StatusConflict, "operation conflicts with current state")
	case errors.Is(err, models.ErrHireFailed):
		log.Println("controller:", err)
		c.errorResponse(w, http.StatusServiceUnavailable, "hire could not be completed, try again")
	default:
		log.Println("controller:", err)
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

// reason returns the detail attached after the sentinel in err's message.
func reason(err, sentinel error) string {
	_, detail, ok := strings.Cut(err.Error(), sentinel.Error()+": ")
	if !ok {
		return sentinel.Error()
	}
	return detail
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	c.marshalStatusResponse(w, http.StatusOK, data)
}

func (c *Controller) marshalStatusResponse(w http.ResponseWriter, status int, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(d)
	if err != nil {
		log.Printf("controller.Controller.marshalResponse: %s", err)
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	defer src.Close()
	return io.ReadAll(io.LimitReader(src, maxBodySize))
}

// readReq reads and validates a request body, answering 400 on failure.
func readReq[T any](c *Controller, w http.ResponseWriter, r *http.Request) (*T, bool) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return nil, false
	}

	req, err := parseReq[T](c.validate, data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req, true
}
