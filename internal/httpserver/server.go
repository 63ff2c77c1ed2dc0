// internal/httpserver/server.go
//
// HTTP server wiring for the word search backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/catalog".
//   - Game endpoints (optional auth): new game, pointer events, hints,
//     difficulty change, next game, close notice.
//   - Daily puzzle endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: see auth.go.
//   - Completed puzzles are logged to the results table (best effort).
//
// Notes:
//   - Live sessions stay in the in-memory store; every mutation goes through
//     store.Update so one session is never touched by two requests at once.
//   - Responses carry the session View; unrevealed answer letters are never sent.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/puzzles"
	"github.com/robalobadob/wordsearch/internal/store"
)

// Server bundles router, session store, DB handle and puzzle catalog.
type Server struct {
	r       *chi.Mux
	store   store.Store
	db      *sql.DB
	catalog puzzles.Catalog
	newRand func() game.Rand
	auth    authConfig
	daily   *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, catalog puzzles.Catalog) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		db:      db,
		catalog: catalog,
		newRand: func() game.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) },
		auth:    loadAuthConfig(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordsearch-go","endpoints":["/health","/catalog","POST /game/new","/game/{id}/*","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/catalog", s.handleCatalog)

	// Game endpoints: optional auth (guests can play)
	s.r.With(s.withOptionalAuth()).Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Get("/{id}", s.handleGetGame)
		r.Post("/{id}/pointer", s.handlePointer)
		r.Post("/{id}/hint", s.handleHint)
		r.Post("/{id}/hints/reset", s.handleResetHints)
		r.Post("/{id}/difficulty", s.handleDifficulty)
		r.Post("/{id}/next", s.handleNext)
		r.Post("/{id}/close", s.handleClose)
	})

	// Daily puzzle: optional auth (guests can play; results recorded on completion)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ CATALOG ------------------------------------

type catalogEntry struct {
	Name     string `json:"name"`
	GridSize int    `json:"gridSize"`
	Levels   int    `json:"levels"`
}

// handleCatalog lists difficulties with grid size and level count.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	out := []catalogEntry{}
	for _, d := range s.catalog.DifficultyNames() {
		ids := s.catalog.LevelIDs(d)
		if len(ids) == 0 {
			continue
		}
		_, size, err := s.catalog.Level(d, ids[0])
		if err != nil {
			continue
		}
		out = append(out, catalogEntry{Name: d, GridSize: size, Levels: len(ids)})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"difficulties": out, "maxHints": game.MaxHints})
}

// ------------------------------ GAME ---------------------------------------

// gameRes is the response for every game endpoint: the session view plus the
// outcome of the action, when there is one.
type gameRes struct {
	game.View
	Found string     `json:"found,omitempty"` // word newly found by a release
	Hint  *game.Hint `json:"hint,omitempty"`  // outcome of a hint request
}

// newGameReq is the payload for POST /game/new.
type newGameReq struct {
	Difficulty string `json:"difficulty"` // defaults to "easy"
	Level      string `json:"level"`      // optional fixed level (testing)
}

// handleNewGame creates a session and starts a level.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Difficulty == "" {
		req.Difficulty = puzzles.DefaultDifficulty
	}

	g := game.NewSession(s.catalog, s.newRand())
	var err error
	if req.Level != "" {
		err = g.Start(req.Difficulty, req.Level)
	} else {
		err = g.NewGame(req.Difficulty)
	}
	if err != nil {
		writeGameError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Str("gameId", g.ID).Str("difficulty", g.Difficulty).Str("level", g.LevelID).Msg("game started")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(gameRes{View: g.View()})
}

// handleGetGame returns the current view.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(g *game.Session, res *gameRes) error { return nil })
}

// pointerReq is the payload for POST /game/{id}/pointer.
type pointerReq struct {
	Event string `json:"event"` // down | enter | up | leave
	Index int    `json:"index"`
}

// handlePointer feeds one pointer event into the selection engine.
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(g *game.Session, res *gameRes) error {
		word, err := g.Pointer(game.PointerEvent(req.Event), req.Index)
		res.Found = word
		return err
	})
}

// handleHint spends one hint credit. Requests past the budget or after
// completion return the unchanged view without a hint.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(g *game.Session, res *gameRes) error {
		if h, ok := g.RequestHint(); ok {
			res.Hint = &h
		}
		return nil
	})
}

// handleResetHints restores the hint budget and hides revealed letters.
func (s *Server) handleResetHints(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(g *game.Session, res *gameRes) error {
		g.ResetHints()
		return nil
	})
}

// difficultyReq is the payload for POST /game/{id}/difficulty.
type difficultyReq struct {
	Difficulty string `json:"difficulty"`
}

// handleDifficulty switches difficulty and loads a random level of it.
func (s *Server) handleDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Difficulty == "" {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(g *game.Session, res *gameRes) error {
		return g.ChangeDifficulty(req.Difficulty)
	})
}

// handleNext loads another random level of the current difficulty.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(g *game.Session, res *gameRes) error {
		return g.NewGame(g.Difficulty)
	})
}

// handleClose acknowledges the completion notice. Game state is unchanged.
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(g *game.Session, res *gameRes) error { return nil })
}

// completion captures what is logged when a puzzle is completed.
type completion struct {
	GameID     string
	Difficulty string
	LevelID    string
	Found      int
	Answers    int
	HintsUsed  int
	FullReveal bool
	Elapsed    time.Duration
}

// mutate runs fn on the session named in the URL under the store lock, then
// writes the resulting view. A transition into completed is logged afterwards.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(g *game.Session, res *gameRes) error) {
	id := chi.URLParam(r, "id")
	var (
		res  gameRes
		done *completion
	)
	err := s.store.Update(r.Context(), id, func(g *game.Session) error {
		wasCompleted := g.Completed()
		if err := fn(g, &res); err != nil {
			return err
		}
		if !wasCompleted && g.Completed() {
			found := len(g.FoundWords())
			done = &completion{
				GameID:     g.ID,
				Difficulty: g.Difficulty,
				LevelID:    g.LevelID,
				Found:      found,
				Answers:    len(g.Answers),
				HintsUsed:  g.HintsSpent(),
				FullReveal: found < len(g.Answers),
				Elapsed:    g.CompletedAt.Sub(g.StartedAt),
			}
		}
		res.View = g.View()
		return nil
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	if done != nil {
		log.Info().Str("gameId", done.GameID).Str("difficulty", done.Difficulty).
			Int("hints", done.HintsUsed).Bool("fullReveal", done.FullReveal).Msg("game completed")
		s.recordCompletion(w, r, *done)
	}
	_ = json.NewEncoder(w).Encode(res)
}

// recordCompletion persists a results row and bumps user stats (best effort).
// The daily result is recorded even when the results log fails.
func (s *Server) recordCompletion(w http.ResponseWriter, r *http.Request, c completion) {
	if s.db == nil {
		return
	}
	if s.daily != nil {
		defer s.daily.onComplete(r, c)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	me := userFrom(r.Context())

	tx, err := s.db.Begin()
	if err != nil {
		log.Warn().Err(err).Msg("begin result tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	var userID, anonID any
	if me != nil {
		userID = me.ID
	} else {
		anonID = s.ensureAnonID(w, r)
	}
	if _, err := tx.Exec(`INSERT INTO results
		(id, game_id, user_id, anonymous_id, difficulty, level_id, found, answers, hints_used, full_reveal, elapsed_ms, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), c.GameID, userID, anonID, c.Difficulty, c.LevelID,
		c.Found, c.Answers, c.HintsUsed, c.FullReveal, c.Elapsed.Milliseconds(), now,
	); err != nil {
		log.Warn().Err(err).Str("gameId", c.GameID).Msg("insert result")
		return
	}
	if me != nil {
		if err := s.bumpStats(tx, me.ID, !c.FullReveal, c.HintsUsed); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit result")
	}
}

// writeJSONError writes body as a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, body map[string]string) {
	b, err := json.Marshal(body)
	if err != nil {
		b = []byte(`{"error":"internal"}`)
	}
	http.Error(w, string(b), status)
}

// writeGameError maps engine and store errors to JSON HTTP errors.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	case errors.Is(err, puzzles.ErrNoLevelsForDifficulty):
		http.Error(w, `{"error":"no_levels_for_difficulty"}`, http.StatusNotFound)
	case errors.Is(err, puzzles.ErrUnknownLevel):
		http.Error(w, `{"error":"unknown_level"}`, http.StatusNotFound)
	case errors.Is(err, puzzles.ErrInvalidLevelData):
		log.Error().Err(err).Msg("invalid level data")
		http.Error(w, `{"error":"invalid_level_data"}`, http.StatusUnprocessableEntity)
	case errors.Is(err, game.ErrCellOutOfRange):
		http.Error(w, `{"error":"cell_out_of_range"}`, http.StatusBadRequest)
	case errors.Is(err, game.ErrUnknownPointerEvent):
		http.Error(w, `{"error":"unknown_pointer_event"}`, http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("game request")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}
