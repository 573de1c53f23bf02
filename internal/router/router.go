package router

import (
	"log"
	"net/http"
	"strings"

	"gigs/internal/config"
	"gigs/internal/controller"
)

func NewRouter(c *controller.Controller, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)

	mux.HandleFunc("POST /api/auth/register", c.Register)
	mux.HandleFunc("POST /api/auth/login", c.Login)
	mux.HandleFunc("POST /api/auth/logout", c.Logout)
	mux.HandleFunc("GET /api/auth/me", c.RequireAuth(c.Me))

	mux.HandleFunc("GET /api/gigs", c.ListGigs)
	mux.HandleFunc("POST /api/gigs", c.RequireAuth(c.NewGig))
	mux.HandleFunc("GET /api/gigs/my", c.RequireAuth(c.MyGigs))
	mux.HandleFunc("GET /api/gigs/{gigId}", c.GetGig)

	mux.HandleFunc("POST /api/bids", c.RequireAuth(c.NewBid))
	mux.HandleFunc("GET /api/bids/my", c.RequireAuth(c.MyBids))
	mux.HandleFunc("GET /api/bids/{gigId}", c.RequireAuth(c.GigBids))
	mux.HandleFunc("PATCH /api/bids/{bidId}/hire", c.RequireAuth(c.Hire))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	var handler http.Handler = mux
	if strings.EqualFold(cfg.LogLevel, "DEBUG") {
		handler = controller.RequestLogger(handler, log.Default())
	}

	return controller.CORS(handler, cfg.ClientURL)
}
