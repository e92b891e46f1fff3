package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/example/seating-service/internal/db"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

// Store handles staff accounts and cookie sessions.
type Store struct {
	sc *securecookie.SecureCookie
	db *db.DB
}

type ctxKey string

const staffIDKey ctxKey = "staffID"

func NewStore(d *db.DB, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	// keep cookie small and secure
	sc.MaxAge(int((14 * 24 * time.Hour).Seconds()))
	return &Store{sc: sc, db: d}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

func (s *Store) CreateStaff(ctx context.Context, restaurantID, username, password, role string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if role == "" {
		role = "staff"
	}
	return s.db.Exec(ctx,
		`INSERT INTO staff_users(restaurant_id, username, password_bcrypt, role) VALUES ($1,$2,$3,$4)`,
		restaurantID, username, hash, role)
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (int64, error) {
	var id int64
	var hash string
	err := s.db.QueryRow(ctx, `SELECT id, password_bcrypt FROM staff_users WHERE username=$1`, username).Scan(&id, &hash)
	if err != nil {
		return 0, db.WrapNotFound(err)
	}
	if !CheckPassword(hash, password) {
		return 0, errors.New("invalid credentials")
	}
	return id, nil
}

type Session struct {
	StaffID int64
}

const cookieName = "seatingd_session"

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, staffID int64) error {
	val := map[string]any{"sid": staffID, "v": 1}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int((14 * 24 * time.Hour).Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]any{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	sidAny, ok := val["sid"]
	if !ok {
		return Session{}, false
	}
	switch sid := sidAny.(type) {
	case int64:
		if sid > 0 {
			return Session{StaffID: sid}, true
		}
	case float64:
		if sid > 0 {
			return Session{StaffID: int64(sid)}, true
		}
	}
	return Session{}, false
}

// RequireAuth guards API routes; unauthenticated callers get a JSON 401
// rather than a redirect, since the consumer is a SPA.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required","code":"unauthorized"}`))
			return
		}
		ctx := context.WithValue(r.Context(), staffIDKey, sess.StaffID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func StaffIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(staffIDKey).(int64)
	return id, ok
}
