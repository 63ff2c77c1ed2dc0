// internal/httpserver/auth.go
//
// Optional player accounts.
// Responsibilities:
//   - Signup/login/logout with bcrypt-hashed passwords and HS256 session tokens.
//   - Token lookup from the Authorization header or the auth cookie.
//   - Optional auth (guests pass through) and required auth (401 otherwise).
//   - Anonymous cookie; guest results are claimed on signup/login.
//   - Profile endpoints: /auth/me, /stats/me, /games/mine.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const anonCookieName = "wordsearch_anon"

var (
	errUsernameTaken = errors.New("username taken")
	errBadToken      = errors.New("invalid token")

	usernameRE = regexp.MustCompile(`^[A-Za-z0-9_]{3,24}$`)
)

// authConfig is read from the environment once per Server.
type authConfig struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool // NODE_ENV=production: Secure + SameSite=None cookies
}

func loadAuthConfig() authConfig {
	days, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "14"))
	if err != nil || days <= 0 {
		days = 14
	}
	return authConfig{
		secret:     []byte(getEnv("JWT_SECRET", "dev_secret_change_me")),
		ttl:        time.Duration(days) * 24 * time.Hour,
		cookieName: getEnv("COOKIE_NAME", "wordsearch_token"),
		secure:     getEnv("NODE_ENV", "") == "production",
	}
}

// cookie builds an HttpOnly cookie with the deployment's security attributes.
// An empty value deletes the cookie.
func (c authConfig) cookie(name, value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if c.secure {
		ck.SameSite = http.SameSiteNoneMode
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}

// sessionClaims is the token payload; Subject is the user id.
type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// authUser is placed into request context by the auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key for *authUser.
type ctxUserKey struct{}

func userFrom(ctx context.Context) *authUser {
	u, _ := ctx.Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers /auth/*, /stats/me and /games/mine.
func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.requireAuth()).Get("/me", s.handleMe)
	})
	s.r.With(s.requireAuth()).Get("/stats/me", s.handleMyStats)
	s.r.With(s.requireAuth()).Get("/games/mine", s.handleMyGames)
}

// credentials is the payload for signup and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.createUser(r.Context(), in.Username, in.Password)
	switch {
	case errors.Is(err, errUsernameTaken):
		http.Error(w, `{"error":"username_taken"}`, http.StatusConflict)
		return
	case err != nil:
		writeJSONError(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.beginSession(w, r, u, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.userByName(r.Context(), strings.TrimSpace(in.Username))
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		http.Error(w, `{"error":"invalid_credentials"}`, http.StatusUnauthorized)
		return
	}
	s.beginSession(w, r, u, http.StatusOK)
}

// beginSession issues a token cookie, moves guest results to the account and
// writes the account summary.
func (s *Server) beginSession(w http.ResponseWriter, r *http.Request, u *userRow, status int) {
	tok, exp, err := s.issueToken(u)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, s.auth.cookie(s.auth.cookieName, tok, exp))
	s.claimAnonResults(r.Context(), s.ensureAnonID(w, r), u.ID)
	log.Info().Str("user", u.ID).Msg("session started")

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"createdAt": u.CreatedAt,
		"token":     tok,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.auth.cookie(s.auth.cookieName, "", time.Unix(0, 0)))
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(userFrom(r.Context()))
}

// handleMyStats reports the account's lifetime counters.
func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	u, err := s.userByID(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":          u.ID,
		"gamesPlayed": u.GamesPlayed,
		"wins":        u.Wins,
		"hintsUsed":   u.HintsUsed,
	})
}

// resultRow is one completed puzzle in /games/mine.
type resultRow struct {
	GameID     string `json:"gameId"`
	Difficulty string `json:"difficulty"`
	Level      string `json:"level"`
	Found      int    `json:"found"`
	Answers    int    `json:"answers"`
	HintsUsed  int    `json:"hintsUsed"`
	FullReveal bool   `json:"fullReveal"`
	ElapsedMs  int64  `json:"elapsedMs"`
	FinishedAt string `json:"finishedAt"`
}

// handleMyGames lists the 50 most recent completed puzzles.
func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT game_id, difficulty, level_id, found, answers, hints_used, full_reveal, elapsed_ms, finished_at
		 FROM results WHERE user_id=? ORDER BY finished_at DESC LIMIT 50`, userFrom(r.Context()).ID)
	if err != nil {
		log.Error().Err(err).Msg("list results")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	out := []resultRow{}
	for rows.Next() {
		var rr resultRow
		if err := rows.Scan(&rr.GameID, &rr.Difficulty, &rr.Level, &rr.Found, &rr.Answers,
			&rr.HintsUsed, &rr.FullReveal, &rr.ElapsedMs, &rr.FinishedAt); err != nil {
			log.Warn().Err(err).Msg("scan result")
			continue
		}
		out = append(out, rr)
	}
	_ = json.NewEncoder(w).Encode(out)
}

// ------------------------------- middleware --------------------------------

// authenticate resolves the request's token to a live account.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	raw := tokenFrom(r, s.auth.cookieName)
	if raw == "" || s.db == nil {
		return nil, errBadToken
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.auth.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.Subject == "" {
		return nil, errBadToken
	}
	u, err := s.userByID(r.Context(), claims.Subject)
	if err != nil {
		return nil, errBadToken
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// withOptionalAuth attaches the account to the context when the token is
// valid and lets guests through otherwise.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := s.authenticate(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without a valid token.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := s.authenticate(r)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// tokenFrom prefers "Authorization: Bearer <token>" over the auth cookie.
func tokenFrom(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// issueToken signs a session token for u.
func (s *Server) issueToken(u *userRow) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.auth.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(s.auth.secret)
	return signed, exp, err
}

// ------------------------------ guests -------------------------------------

// ensureAnonID returns the guest id cookie, setting a fresh one if missing.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, s.auth.cookie(anonCookieName, id, time.Now().Add(180*24*time.Hour)))
	return id
}

// claimAnonResults moves guest results onto the account.
func (s *Server) claimAnonResults(ctx context.Context, anonID, userID string) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE results SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		log.Warn().Err(err).Msg("claim anon results")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Str("user", userID).Int64("results", n).Msg("claimed guest results")
	}
}

// ------------------------------ users --------------------------------------

// userRow mirrors the users table.
type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	GamesPlayed  int
	Wins         int
	HintsUsed    int
}

const userColumns = `id, username, password_hash, created_at, games_played, wins, hints_used`

// createUser validates the credentials and inserts a new account.
// Usernames are unique case-insensitively.
func (s *Server) createUser(ctx context.Context, username, password string) (*userRow, error) {
	username = strings.TrimSpace(username)
	if !usernameRE.MatchString(username) {
		return nil, errors.New("username must be 3-24 letters, digits or underscores")
	}
	if len(password) < 8 || len(password) > 72 {
		return nil, errors.New("password must be 8-72 chars")
	}
	if _, err := s.userByName(ctx, username); err == nil {
		return nil, errUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &userRow{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Server) userByName(ctx context.Context, username string) (*userRow, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username)=lower(?)`, username))
}

func (s *Server) userByID(ctx context.Context, id string) (*userRow, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*userRow, error) {
	var (
		u       userRow
		created string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.Wins, &u.HintsUsed); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// bumpStats counts a completed puzzle. won is false when hints revealed the
// answers before they were all found.
func (s *Server) bumpStats(tx *sql.Tx, userID string, won bool, hints int) error {
	var win int
	if won {
		win = 1
	}
	_, err := tx.Exec(
		`UPDATE users SET games_played = games_played + 1, wins = wins + ?, hints_used = hints_used + ? WHERE id=?`,
		win, hints, userID)
	return err
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
