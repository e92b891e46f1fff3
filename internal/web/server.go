package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/example/seating-service/internal/auth"
	"github.com/example/seating-service/internal/executor"
	"github.com/example/seating-service/internal/intake"
	"github.com/example/seating-service/internal/refresh"
	"github.com/example/seating-service/internal/store"
)

// Server is the JSON API consumed by the floor-staff SPA.
type Server struct {
	Auth   *auth.Store
	Store  store.Store
	Loader *refresh.Loader
	Exec   *executor.Executor
	Intake *intake.Intake

	BaseURL        string
	AllowedOrigins []string
}

func (s *Server) Routes() http.Handler {
	r := httprouter.New()

	r.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.HandlerFunc(http.MethodPost, "/login", s.handleLogin)
	r.HandlerFunc(http.MethodPost, "/logout", s.handleLogout)

	authed := func(h http.HandlerFunc) http.Handler { return s.Auth.RequireAuth(h) }

	r.Handler(http.MethodGet, "/api/floor", authed(s.handleFloor))
	r.Handler(http.MethodGet, "/api/queues", authed(s.handleQueues))
	r.Handler(http.MethodGet, "/api/bookings/:id", authed(s.handleBooking))
	r.Handler(http.MethodGet, "/api/bookings/:id/options", authed(s.handleOptions))
	r.Handler(http.MethodPost, "/api/bookings/:id/assign", authed(s.handleAssign))
	r.Handler(http.MethodPost, "/api/bookings/:id/checkin", authed(s.handleCheckIn))
	r.Handler(http.MethodPost, "/api/bookings/:id/clear", authed(s.handleClear))
	r.Handler(http.MethodPost, "/api/swaps", authed(s.handleSwap))
	r.Handler(http.MethodPost, "/api/walkins", authed(s.handleWalkIn))
	r.Handler(http.MethodPost, "/api/walkins/confirm", authed(s.handleWalkInConfirm))

	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{s.BaseURL}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	})

	rl := newRateLimiter()
	return requestLogger(rl.limit(c.Handler(r)))
}

func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	fmt.Printf("listening on %s\n", addr)
	return srv.ListenAndServe()
}
