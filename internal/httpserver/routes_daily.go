// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Puzzle" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's puzzle for a difficulty (creates or reuses a session)
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date) and difficulty
//
// Play itself goes through the regular /game/{id}/* endpoints; the session
// returned here is an ordinary game session pinned to the day's level.
// Each player can finish a difficulty once per day (enforced by DB + in-memory map).
// Deterministic level selection is based on date + difficulty + salt.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/puzzles"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	now      func() time.Time
	sessions map[string]*dailySession // keyed by userID|date|difficulty
	byGame   map[string]*dailySession // keyed by game session ID
	mu       sync.Mutex               // guards sessions, byGame
}

// errStaleDaily marks a daily session whose game has moved to another level.
var errStaleDaily = errors.New("daily session moved on")

// dailySession ties a game session to the player and day it was issued for.
type dailySession struct {
	GameID     string
	UserID     string
	Date       string
	Difficulty string
	LevelID    string
	Finished   bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*dailySession),
		byGame:   make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// levelFor returns today's date key and the level ID picked for difficulty.
func (d *dailyServer) levelFor(difficulty string) (date, levelID string, err error) {
	now := d.now()
	date = daily.DateKey(now)
	ids := d.srv.catalog.LevelIDs(difficulty)
	if len(ids) == 0 {
		return date, "", puzzles.ErrNoLevelsForDifficulty
	}
	return date, ids[daily.LevelIndex(now, difficulty, d.salt, len(ids))], nil
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) string {
	if me := userFrom(r.Context()); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewReq is the payload for /daily/new.
type dailyNewReq struct {
	Difficulty string `json:"difficulty"` // defaults to "easy"
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID     string     `json:"gameId"`
	Date       string     `json:"date"`
	Difficulty string     `json:"difficulty"`
	Played     bool       `json:"played"`
	Game       *game.View `json:"game,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If the player already has a DB row for today and difficulty → Played=true.
// - Otherwise create/reuse an in-memory session and return its view.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Difficulty == "" {
		req.Difficulty = puzzles.DefaultDifficulty
	}

	uid := d.userIDWithAnon(w, r)
	date, levelID, err := d.levelFor(req.Difficulty)
	if err != nil {
		writeGameError(w, err)
		return
	}

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date, req.Difficulty)
	if err != nil {
		log.Warn().Err(err).Str("user", uid).Str("date", date).Msg("daily already-played check")
	}
	if played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Difficulty: req.Difficulty, Played: true})
		return
	}

	key := uid + "|" + date + "|" + req.Difficulty
	d.mu.Lock()
	defer d.mu.Unlock()

	// Reuse the session if it still exists and still shows the day's level.
	if ds, ok := d.sessions[key]; ok && !ds.Finished {
		var view game.View
		err := d.srv.store.Update(r.Context(), ds.GameID, func(g *game.Session) error {
			if g.Difficulty != ds.Difficulty || g.LevelID != ds.LevelID {
				return errStaleDaily
			}
			view = g.View()
			return nil
		})
		if err == nil {
			_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: ds.GameID, Date: date, Difficulty: req.Difficulty, Game: &view})
			return
		}
		delete(d.byGame, ds.GameID)
		delete(d.sessions, key)
	}

	g := game.NewSession(d.srv.catalog, d.srv.newRand())
	if err := g.Start(req.Difficulty, levelID); err != nil {
		writeGameError(w, err)
		return
	}
	if err := d.srv.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save daily game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	ds := &dailySession{GameID: g.ID, UserID: uid, Date: date, Difficulty: req.Difficulty, LevelID: levelID}
	d.sessions[key] = ds
	d.byGame[g.ID] = ds
	log.Info().Str("gameId", g.ID).Str("date", date).Str("difficulty", req.Difficulty).Str("level", levelID).Msg("daily started")

	view := g.View()
	_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: g.ID, Date: date, Difficulty: req.Difficulty, Game: &view})
}

// onComplete records a daily result when a completed game is a daily session
// that is still on the level it was issued for.
func (d *dailyServer) onComplete(r *http.Request, c completion) {
	d.mu.Lock()
	ds, ok := d.byGame[c.GameID]
	if !ok || ds.Finished || ds.Difficulty != c.Difficulty || ds.LevelID != c.LevelID {
		d.mu.Unlock()
		return
	}
	ds.Finished = true
	res := daily.Result{
		UserID:     ds.UserID,
		Date:       ds.Date,
		Difficulty: ds.Difficulty,
		LevelID:    ds.LevelID,
		HintsUsed:  c.HintsUsed,
		ElapsedMs:  int(c.Elapsed.Milliseconds()),
	}
	d.mu.Unlock()

	if err := d.store.InsertResult(r.Context(), res); err != nil {
		log.Warn().Err(err).Str("gameId", c.GameID).Msg("insert daily result")
	}
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date       string        `json:"date"`
	Difficulty string        `json:"difficulty"`
	Top        []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today)
// and difficulty (default easy).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	difficulty := r.URL.Query().Get("difficulty")
	if difficulty == "" {
		difficulty = puzzles.DefaultDifficulty
	}
	rows, err := d.store.Leaderboard(r.Context(), date, difficulty, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Difficulty: difficulty, Top: rows})
}
