package network

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"star_math_server/storage"
)

const leaderboardLimit = 50

// LeaderboardRow is the public shape of one leaderboard entry.
type LeaderboardRow struct {
	Username   string `json:"username"`
	Score      int    `json:"score"`
	Streak     int    `json:"streak"`
	Multiplier int    `json:"multiplier"`
}

// API serves the leaderboard HTTP surface backed by the score store.
type API struct {
	Store *storage.ScoreStore

	// now is swappable for tests of the daily window.
	now func() time.Time
}

func NewAPI(store *storage.ScoreStore) *API {
	return &API{Store: store, now: time.Now}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("POST /api/save-score", a.handleSaveScore)
	mux.HandleFunc("GET /api/leaderboard/daily", a.handleDaily)
	mux.HandleFunc("GET /api/leaderboard/weekly", a.handleWeekly)
	mux.HandleFunc("GET /api/user-position/{userId}", a.handleUserPosition)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := a.Store.Count()
	if err != nil {
		log.Printf("Health: counting scores failed: %v", err)
		count = 0
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"scoresCount": count,
		"timestamp":   a.now().UTC().Format(time.RFC3339),
	})
}

type saveScoreRequest struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Score        *int   `json:"score"`
	Streak       int    `json:"streak"`
	Multiplier   int    `json:"multiplier"`
	SessionScore int    `json:"sessionScore"`
}

func (a *API) handleSaveScore(w http.ResponseWriter, r *http.Request) {
	var req saveScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid JSON body"})
		return
	}
	if req.UserID == "" || req.Score == nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}

	username := req.Username
	if username == "" {
		username = "Anonymous"
	}

	total, err := a.Store.SaveScore(storage.ScoreEntry{
		UserID:     req.UserID,
		Username:   username,
		Score:      *req.Score,
		Streak:     req.Streak,
		Multiplier: req.Multiplier,
		Timestamp:  a.now().UTC(),
	})
	if err != nil {
		log.Printf("Saving score for %q failed: %v", req.UserID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Score saved",
		"totalScores": total,
	})
}

func (a *API) handleDaily(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Store.Daily(a.now(), leaderboardLimit)
	if err != nil {
		log.Printf("Daily leaderboard query failed: %v", err)
		entries = nil
	}
	writeJSON(w, http.StatusOK, toRows(entries))
}

func (a *API) handleWeekly(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Store.Weekly(leaderboardLimit)
	if err != nil {
		log.Printf("Weekly leaderboard query failed: %v", err)
		entries = nil
	}
	writeJSON(w, http.StatusOK, toRows(entries))
}

func (a *API) handleUserPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := a.Store.UserPosition(r.PathValue("userId"), a.now())
	if err != nil {
		log.Printf("User position query failed: %v", err)
		pos = storage.Position{}
	}
	writeJSON(w, http.StatusOK, pos)
}

func toRows(entries []storage.ScoreEntry) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LeaderboardRow{
			Username:   e.Username,
			Score:      e.Score,
			Streak:     e.Streak,
			Multiplier: e.Multiplier,
		})
	}
	return rows
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
